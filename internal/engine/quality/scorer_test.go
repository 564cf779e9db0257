// internal/engine/quality/scorer_test.go
package quality

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"match-engine/internal/models"
)

func intPtr(v int) *int { return &v }

func TestScore_EmptyCandidate(t *testing.T) {
	s := NewScorer(nil)

	result := s.Score(&models.Candidate{})

	// No grit data and no validation data fall back to neutral values,
	// everything else is zero.
	assert.Equal(t, 0.5, result.Breakdown.Grit)
	assert.Equal(t, 0.6, result.Breakdown.Validation)
	assert.Equal(t, 0.0, result.Breakdown.Team)
	assert.Equal(t, 0.0, result.Breakdown.Traction)
	assert.InDelta(t, 10*1.1/17, result.Total, 0.001)
	assert.Equal(t, "cold", result.Tier)
	assert.Equal(t, 5, result.MatchCount)
}

func TestScore_FullyLoadedCandidate(t *testing.T) {
	s := NewScorer(nil)
	founded := time.Now().AddDate(-2, 0, 0)

	c := &models.Candidate{
		Sectors: []string{"AI", "Fintech"},
		Team: models.TeamProfile{
			FoundersCount:       2,
			TechnicalCofounders: 2,
			TopTierBackground:   true,
			DomainExpertise:     true,
		},
		Traction: models.TractionProfile{
			MRR:                200000,
			GrowthRate:         40,
			RetentionRate:      95,
			ActiveUsers:        50000,
			PrepayingCustomers: 25,
			BackedBy:           []string{"Y Combinator"},
		},
		Market: models.MarketProfile{
			MarketSizeBillions: 50,
			Problem:            "A long and detailed description of the problem this candidate solves today",
			Solution:           "A long and detailed description of the solution this candidate sells today",
		},
		Product: models.ProductProfile{
			Launched:      true,
			DemoAvailable: true,
			UniqueIP:      true,
			Defensibility: "high",
		},
		Vision: models.VisionProfile{
			ContrarianInsight:   strings.Repeat("insight ", 20),
			CreativeStrategy:    strings.Repeat("strategy ", 15),
			VisionStatement:     strings.Repeat("vision ", 10),
			UseOfFunds:          strings.Repeat("plan ", 15),
			PassionateCustomers: 10,
			RunwayMonths:        15,
			BurnRate:            50000,
		},
		Ecosystem: models.EcosystemProfile{
			Partners: []models.Partner{
				{Name: "P1", Type: "distribution", Stage: "revenue_generating"},
				{Name: "P2", Type: "technology", Stage: "revenue_generating"},
			},
			Advisors: []models.Advisor{
				{Name: "A1", Background: "Former CEO", Role: "advisor"},
				{Name: "A2", Background: "Professor", Role: "advisor"},
				{Name: "A3", Background: "VP Engineering", Role: "advisor"},
			},
		},
		Grit: models.GritProfile{
			PivotsMade:                intPtr(1),
			CustomerFeedbackFrequency: "daily",
			TimeToIterateDays:         intPtr(5),
			FoundedAt:                 &founded,
		},
		Validation: models.ValidationProfile{
			CustomerInterviews:        60,
			PainCost:                  500000,
			PainFrequency:             "daily",
			WillingnessToPayValidated: true,
			ICPClarity:                "crystal_clear",
			ProblemDiscoveryDepth:     "deep",
		},
	}

	result := s.Score(c)

	assert.Equal(t, 2.5, result.Breakdown.Team)
	assert.Equal(t, 3.0, result.Breakdown.Traction)
	assert.Equal(t, 2.0, result.Breakdown.Market)
	assert.Equal(t, 2.0, result.Breakdown.Product)
	assert.Equal(t, 2.0, result.Breakdown.Vision)
	assert.Equal(t, 1.5, result.Breakdown.Ecosystem)
	assert.Equal(t, 1.5, result.Breakdown.Grit)
	assert.Equal(t, 2.0, result.Breakdown.Validation)
	assert.InDelta(t, 10*16.5/17, result.Total, 0.001)
	assert.Equal(t, "hot", result.Tier)
	assert.Equal(t, 20, result.MatchCount)
}

func TestScore_TractionTiers(t *testing.T) {
	s := NewScorer(nil)

	tests := []struct {
		name     string
		traction models.TractionProfile
		want     float64
	}{
		{"mrr annualizes past 1M", models.TractionProfile{MRR: 100000}, 1.5},
		{"revenue 100k tier", models.TractionProfile{Revenue: 150000}, 1.0},
		{"gmv counts as revenue", models.TractionProfile{GMV: 2000000}, 1.5},
		{"any revenue at all", models.TractionProfile{Revenue: 5000}, 0.5},
		{"no revenue", models.TractionProfile{}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.Score(&models.Candidate{Traction: tt.traction})
			assert.Equal(t, tt.want, result.Breakdown.Traction)
		})
	}
}

func TestScore_TeamRequiresTechnicalMajority(t *testing.T) {
	s := NewScorer(nil)

	// 1 technical of 3 founders is below the 50% bar.
	minority := s.Score(&models.Candidate{
		Team: models.TeamProfile{FoundersCount: 3, TechnicalCofounders: 1},
	})
	assert.Equal(t, 0.0, minority.Breakdown.Team)

	// founders_count defaults to the technical cofounder count when unset.
	defaulted := s.Score(&models.Candidate{
		Team: models.TeamProfile{TechnicalCofounders: 2},
	})
	assert.Equal(t, 1.0, defaulted.Breakdown.Team)
}

func TestScore_EcosystemPenaltyFloorsAtZero(t *testing.T) {
	s := NewScorer(nil)

	result := s.Score(&models.Candidate{
		Ecosystem: models.EcosystemProfile{
			PlatformDependencies: []string{"OpenAI", "AWS", "Google Cloud"},
		},
	})
	assert.Equal(t, 0.0, result.Breakdown.Ecosystem)
}

func TestScore_SubScoresNeverExceedCaps(t *testing.T) {
	s := NewScorer(nil)
	rng := rand.New(rand.NewSource(42))

	freq := []string{"", "daily", "weekly", "monthly"}
	depth := []string{"", "surface", "moderate", "deep"}

	for i := 0; i < 200; i++ {
		pivots := rng.Intn(5)
		iterate := rng.Intn(40)
		c := &models.Candidate{
			Sectors: []string{fmt.Sprintf("sector-%d", rng.Intn(3)), "ai"},
			Team: models.TeamProfile{
				FoundersCount:       rng.Intn(4),
				TechnicalCofounders: rng.Intn(4),
				TopTierBackground:   rng.Intn(2) == 0,
				DomainExpertise:     rng.Intn(2) == 0,
			},
			Traction: models.TractionProfile{
				Revenue:            rng.Float64() * 3000000,
				MRR:                rng.Float64() * 300000,
				GrowthRate:         rng.Float64() * 60,
				RetentionRate:      rng.Float64() * 100,
				ChurnRate:          rng.Float64() * 10,
				ActiveUsers:        rng.Intn(50000),
				Customers:          rng.Intn(100),
				PrepayingCustomers: rng.Intn(30),
				BackedBy:           []string{"Sequoia"},
			},
			Market: models.MarketProfile{MarketSizeBillions: rng.Float64() * 100},
			Grit: models.GritProfile{
				PivotsMade:                &pivots,
				CustomerFeedbackFrequency: freq[rng.Intn(len(freq))],
				TimeToIterateDays:         &iterate,
			},
			Validation: models.ValidationProfile{
				CustomerInterviews:        rng.Intn(100),
				PainCost:                  rng.Float64() * 500000,
				WillingnessToPayValidated: rng.Intn(2) == 0,
				ProblemDiscoveryDepth:     depth[rng.Intn(len(depth))],
			},
		}

		result := s.Score(c)
		b := result.Breakdown

		assert.LessOrEqual(t, b.Team, 3.0)
		assert.LessOrEqual(t, b.Traction, 3.0)
		assert.LessOrEqual(t, b.Market, 2.0)
		assert.LessOrEqual(t, b.Product, 2.0)
		assert.LessOrEqual(t, b.Vision, 2.0)
		assert.LessOrEqual(t, b.Ecosystem, 1.5)
		assert.LessOrEqual(t, b.Grit, 1.5)
		assert.LessOrEqual(t, b.Validation, 2.0)
		assert.GreaterOrEqual(t, result.Total, 0.0)
		assert.LessOrEqual(t, result.Total, 10.0)
	}
}

func TestScore_TypicalSeedCandidate(t *testing.T) {
	s := NewScorer(nil)

	c := &models.Candidate{
		Sectors: []string{"AI/ML"},
		Stage:   "seed",
		Team:    models.TeamProfile{TechnicalCofounders: 2},
		Traction: models.TractionProfile{
			MRR: 100000,
		},
	}

	result := s.Score(c)

	// 1.5 traction + 1 team + 1 market + 0.5 grit + 0.6 validation = 4.6
	assert.InDelta(t, 4.6, result.Breakdown.Sum(), 0.001)
	assert.InDelta(t, 10*4.6/17, result.Total, 0.001)
	assert.Equal(t, "cold", result.Tier)
}
