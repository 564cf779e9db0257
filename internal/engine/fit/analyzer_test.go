// internal/engine/fit/analyzer_test.go
package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"match-engine/internal/models"
)

func TestAnalyze_FullAlignment(t *testing.T) {
	a := NewAnalyzer(nil)

	c := &models.Candidate{
		Sectors:     []string{"AI/ML"},
		Stage:       "seed",
		RaiseAmount: 2000000,
		Team:        models.TeamProfile{TechnicalCofounders: 2, TeamSize: 6},
		Traction:    models.TractionProfile{MRR: 100000},
	}
	cp := &models.Counterparty{
		Sectors:      []string{"ai/ml"},
		Stages:       []string{"seed"},
		CheckSizeMin: 250000,
		CheckSizeMax: 500000,
		Portfolio: models.PortfolioHistory{
			StageCounts:          map[string]int{"seed": 30, "series-a": 10},
			TotalInvestments:     40,
			ExitCount:            5,
			TechnicalFounderRate: 0.9,
			RevenueRate:          0.8,
			AvgTeamSize:          6,
			SampleSize:           25,
		},
	}

	result := a.Analyze(c, cp)

	assert.Equal(t, 1.0, result.Components.Sector)
	assert.Equal(t, 1.0, result.Components.Stage)
	assert.Equal(t, 1.0, result.Components.CheckSize)
	assert.InDelta(t, 0.9, result.Components.Pattern, 0.001)
	assert.Equal(t, 1.0, result.Components.TrackRecord)
	assert.InDelta(t, 0.98, result.Score, 0.001)
	// 0.5 * (30/40 seed history) + 0.5 * track record
	assert.InDelta(t, 0.875, result.HistoricalBonus, 0.001)
	assert.NotEmpty(t, result.Reasoning)
}

func TestSectorFit_DirectVsAdjacent(t *testing.T) {
	a := NewAnalyzer(nil)

	direct := a.Analyze(
		&models.Candidate{Sectors: []string{"fintech"}},
		&models.Counterparty{Sectors: []string{"fintech"}},
	)
	adjacent := a.Analyze(
		&models.Candidate{Sectors: []string{"saas"}},
		&models.Counterparty{Sectors: []string{"fintech"}},
	)
	unrelated := a.Analyze(
		&models.Candidate{Sectors: []string{"agtech"}},
		&models.Counterparty{Sectors: []string{"gaming"}},
	)

	assert.Equal(t, 1.0, direct.Components.Sector)
	assert.InDelta(t, 0.3, adjacent.Components.Sector, 0.001)
	assert.Equal(t, 0.0, unrelated.Components.Sector)
	assert.Greater(t, direct.Components.Sector, adjacent.Components.Sector)
}

func TestSectorFit_SynonymsNormalize(t *testing.T) {
	a := NewAnalyzer(nil)

	result := a.Analyze(
		&models.Candidate{Sectors: []string{"Artificial Intelligence"}},
		&models.Counterparty{Sectors: []string{"AI"}},
	)
	assert.Equal(t, 1.0, result.Components.Sector)
}

func TestStageFit_Ladder(t *testing.T) {
	a := NewAnalyzer(nil)

	tests := []struct {
		name      string
		candidate string
		focus     []string
		history   map[string]int
		want      float64
	}{
		{"exact match", "seed", []string{"seed"}, nil, 1.0},
		{"adjacent stage", "seed", []string{"series-a"}, nil, 0.5},
		{"two stages apart", "pre-seed", []string{"series-a"}, nil, 0.0},
		{"history only", "seed", []string{"series-b"}, map[string]int{"seed": 4, "series-b": 6}, 0.8 * 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := a.Analyze(
				&models.Candidate{Stage: tt.candidate},
				&models.Counterparty{
					Stages:    tt.focus,
					Portfolio: models.PortfolioHistory{StageCounts: tt.history},
				},
			)
			assert.InDelta(t, tt.want, result.Components.Stage, 0.001)
		})
	}
}

func TestCheckSizeFit_Bands(t *testing.T) {
	a := NewAnalyzer(nil)
	c := &models.Candidate{RaiseAmount: 1000000}

	// Ideal band is 100k-300k, wide band is 50k-500k.
	ideal := a.Analyze(c, &models.Counterparty{CheckSizeMin: 150000, CheckSizeMax: 250000})
	wide := a.Analyze(c, &models.Counterparty{CheckSizeMin: 400000, CheckSizeMax: 450000})
	outside := a.Analyze(c, &models.Counterparty{CheckSizeMin: 2000000, CheckSizeMax: 5000000})

	assert.Equal(t, 1.0, ideal.Components.CheckSize)
	assert.Equal(t, 0.5, wide.Components.CheckSize)
	assert.Equal(t, 0.0, outside.Components.CheckSize)
}

func TestAnalyze_MissingDataIsNeutral(t *testing.T) {
	a := NewAnalyzer(nil)

	result := a.Analyze(&models.Candidate{}, &models.Counterparty{})

	assert.Equal(t, 0.5, result.Components.Sector)
	assert.Equal(t, 0.5, result.Components.Stage)
	assert.Equal(t, 0.5, result.Components.CheckSize)
	assert.Equal(t, 0.5, result.Components.Pattern)
	assert.Equal(t, 0.0, result.Components.TrackRecord)
}

func TestPatternFit_SimilarityFallsWithDistance(t *testing.T) {
	a := NewAnalyzer(nil)

	cp := &models.Counterparty{
		Portfolio: models.PortfolioHistory{
			TechnicalFounderRate: 1.0,
			RevenueRate:          1.0,
			AvgTeamSize:          5,
			SampleSize:           10,
		},
	}

	near := a.Analyze(&models.Candidate{
		Team:     models.TeamProfile{TechnicalCofounders: 1, TeamSize: 5},
		Traction: models.TractionProfile{Revenue: 100000},
	}, cp)
	far := a.Analyze(&models.Candidate{
		Team: models.TeamProfile{TeamSize: 15},
	}, cp)

	assert.Greater(t, near.Components.Pattern, far.Components.Pattern)
	assert.InDelta(t, 1.0, near.Components.Pattern, 0.001)
}

func TestTrackRecordFit_Saturates(t *testing.T) {
	veteran := trackRecordFit(&models.Counterparty{
		Portfolio: models.PortfolioHistory{TotalInvestments: 100, ExitCount: 10},
	})
	newcomer := trackRecordFit(&models.Counterparty{
		Portfolio: models.PortfolioHistory{TotalInvestments: 10, ExitCount: 0},
	})

	assert.Equal(t, 1.0, veteran)
	assert.InDelta(t, 0.25, newcomer, 0.001)
}

func TestHistoricalBonus_NoHistory(t *testing.T) {
	bonus := historicalBonus(&models.Candidate{Stage: "seed"}, &models.Counterparty{})
	assert.Equal(t, 0.0, bonus)
}
