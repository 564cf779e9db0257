// internal/engine/fit/analyzer.go
package fit

import (
	"fmt"
	"math"

	"match-engine/internal/models"
	"match-engine/pkg/rules"
)

// Components are the raw [0,1] signals before weighting.
type Components struct {
	Sector      float64 `json:"sector"`
	Stage       float64 `json:"stage"`
	CheckSize   float64 `json:"checkSize"`
	Pattern     float64 `json:"pattern"`
	TrackRecord float64 `json:"trackRecord"`
}

// Result is the structural compatibility between one candidate and one
// counterparty.
type Result struct {
	Score float64 `json:"score"` // [0,1], weighted sum of components
	Components Components `json:"components"`
	// HistoricalBonus is the observed-history signal (stage history plus
	// track record) consumed as the fourth base-score component.
	HistoricalBonus float64  `json:"historicalBonus"`
	Reasoning       []string `json:"reasoning"`
}

// Analyzer computes portfolio fit. Pure over the provided records; the
// counterparty's interaction history arrives pre-aggregated in
// PortfolioHistory.
type Analyzer struct {
	rules *rules.Ruleset
}

func NewAnalyzer(rs *rules.Ruleset) *Analyzer {
	if rs == nil {
		rs = rules.Default()
	}
	return &Analyzer{rules: rs}
}

func (a *Analyzer) Analyze(c *models.Candidate, cp *models.Counterparty) Result {
	w := a.rules.FitWeights
	var reasons []string

	comp := Components{
		Sector:      a.sectorFit(c, cp, &reasons),
		Stage:       a.stageFit(c, cp, &reasons),
		CheckSize:   a.checkSizeFit(c, cp, &reasons),
		Pattern:     a.patternFit(c, cp),
		TrackRecord: trackRecordFit(cp),
	}

	score := w.Sector*comp.Sector +
		w.Stage*comp.Stage +
		w.CheckSize*comp.CheckSize +
		w.Pattern*comp.Pattern +
		w.TrackRecord*comp.TrackRecord

	return Result{
		Score:           clamp01(score),
		Components:      comp,
		HistoricalBonus: historicalBonus(c, cp),
		Reasoning:       reasons,
	}
}

// sectorFit rewards direct tag overlap higher than adjacent-sector overlap
// at a 0.7:0.3 weighting. A direct match also counts as adjacent, so a
// perfect direct overlap scores 1.0.
func (a *Analyzer) sectorFit(c *models.Candidate, cp *models.Counterparty, reasons *[]string) float64 {
	cand := normalizeSectors(c.Sectors)
	focus := normalizeSectors(cp.Sectors)
	if len(cand) == 0 || len(focus) == 0 {
		return 0.5
	}

	focusSet := make(map[string]bool, len(focus))
	for _, s := range focus {
		focusSet[s] = true
	}

	direct, nearby := 0, 0
	for _, s := range cand {
		if focusSet[s] {
			direct++
			nearby++
			continue
		}
		for _, f := range focus {
			if isAdjacentSector(s, f) || isAdjacentSector(f, s) {
				nearby++
				break
			}
		}
	}

	directRatio := float64(direct) / float64(len(cand))
	nearbyRatio := float64(nearby) / float64(len(cand))

	if direct > 0 {
		*reasons = append(*reasons, fmt.Sprintf("Direct sector overlap (%d of %d tags)", direct, len(cand)))
	} else if nearby > 0 {
		*reasons = append(*reasons, "Adjacent sector overlap")
	}

	return 0.7*directRatio + 0.3*nearbyRatio
}

// stageFit gives full credit for an exact declared-stage match, partial
// credit for a historically observed investment at the stage, half credit
// for an adjacent stage, zero otherwise.
func (a *Analyzer) stageFit(c *models.Candidate, cp *models.Counterparty, reasons *[]string) float64 {
	stage := normalizeStage(c.Stage)
	if stage == "" {
		return 0.5
	}

	focus := make([]string, 0, len(cp.Stages))
	for _, s := range cp.Stages {
		if n := normalizeStage(s); n != "" {
			focus = append(focus, n)
		}
	}
	if len(focus) == 0 && len(cp.Portfolio.StageCounts) == 0 {
		return 0.5
	}

	for _, f := range focus {
		if f == stage {
			*reasons = append(*reasons, fmt.Sprintf("Stage focus matches (%s)", stage))
			return 1.0
		}
	}

	if total := portfolioTotal(cp.Portfolio.StageCounts); total > 0 {
		if count := stageHistoryCount(cp.Portfolio.StageCounts, stage); count > 0 {
			proportion := float64(count) / float64(total)
			*reasons = append(*reasons, fmt.Sprintf("Has invested at %s before", stage))
			return 0.8 * proportion
		}
	}

	for _, f := range focus {
		if isAdjacentStage(f, stage) {
			return 0.5
		}
	}

	return 0
}

// checkSizeFit scores the counterparty's check range against an ideal check
// of 10-30% of the candidate's raise.
func (a *Analyzer) checkSizeFit(c *models.Candidate, cp *models.Counterparty, reasons *[]string) float64 {
	if c.RaiseAmount <= 0 || cp.CheckSizeMax <= 0 {
		return 0.5
	}

	idealLo, idealHi := 0.10*c.RaiseAmount, 0.30*c.RaiseAmount
	if rangesOverlap(cp.CheckSizeMin, cp.CheckSizeMax, idealLo, idealHi) {
		*reasons = append(*reasons, "Check size fits the round")
		return 1.0
	}

	wideLo, wideHi := 0.05*c.RaiseAmount, 0.50*c.RaiseAmount
	if rangesOverlap(cp.CheckSizeMin, cp.CheckSizeMax, wideLo, wideHi) {
		return 0.5
	}

	return 0
}

// patternFit compares the candidate's structural attributes against the
// aggregate statistics of the counterparty's positively-labeled history.
// Per-attribute similarity is 1 - normalized absolute difference, averaged.
func (a *Analyzer) patternFit(c *models.Candidate, cp *models.Counterparty) float64 {
	p := cp.Portfolio
	if p.SampleSize == 0 {
		return 0.5
	}

	var sims []float64

	techVal := 0.0
	if c.HasTechnicalCofounder() {
		techVal = 1.0
	}
	sims = append(sims, 1-math.Abs(techVal-p.TechnicalFounderRate))

	revVal := 0.0
	if c.HasRevenue() {
		revVal = 1.0
	}
	sims = append(sims, 1-math.Abs(revVal-p.RevenueRate))

	if c.Team.TeamSize > 0 && p.AvgTeamSize > 0 {
		diff := math.Abs(float64(c.Team.TeamSize)-p.AvgTeamSize) / 10
		if diff > 1 {
			diff = 1
		}
		sims = append(sims, 1-diff)
	}

	sum := 0.0
	for _, s := range sims {
		sum += s
	}
	return sum / float64(len(sims))
}

// trackRecordFit rewards experience: investment volume and realized exits.
func trackRecordFit(cp *models.Counterparty) float64 {
	p := cp.Portfolio
	volume := float64(p.TotalInvestments) / 20
	if volume > 1 {
		volume = 1
	}
	exits := float64(p.ExitCount) / 3
	if exits > 1 {
		exits = 1
	}
	return 0.5*volume + 0.5*exits
}

// historicalBonus blends observed stage history with track record; it is the
// fourth component of the combined base score.
func historicalBonus(c *models.Candidate, cp *models.Counterparty) float64 {
	history := 0.0
	if stage := normalizeStage(c.Stage); stage != "" {
		if total := portfolioTotal(cp.Portfolio.StageCounts); total > 0 {
			history = float64(stageHistoryCount(cp.Portfolio.StageCounts, stage)) / float64(total)
		}
	}
	return clamp01(0.5*history + 0.5*trackRecordFit(cp))
}

func portfolioTotal(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

func stageHistoryCount(counts map[string]int, stage string) int {
	total := 0
	for raw, n := range counts {
		if normalizeStage(raw) == stage {
			total += n
		}
	}
	return total
}

func rangesOverlap(aLo, aHi, bLo, bHi float64) bool {
	return aLo <= bHi && bLo <= aHi
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
