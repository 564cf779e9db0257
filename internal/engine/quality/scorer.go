// internal/engine/quality/scorer.go
package quality

import (
	"fmt"
	"strings"
	"time"

	"match-engine/internal/models"
	"match-engine/pkg/rules"
)

// Scorer computes a counterparty-independent quality score from a
// candidate's declared attributes. Pure function, no I/O.
//
// Each sub-score is a sum of independently-capped contribution rules, so no
// single strong signal can saturate a whole dimension.
type Scorer struct {
	rules *rules.Ruleset
}

func NewScorer(rs *rules.Ruleset) *Scorer {
	if rs == nil {
		rs = rules.Default()
	}
	return &Scorer{rules: rs}
}

// Score evaluates the candidate. Output total is in [0,10]; a candidate
// maxing every dimension scores exactly 10.
func (s *Scorer) Score(c *models.Candidate) Result {
	caps := s.rules.QualityCaps

	var reasons []string

	b := Breakdown{
		Team:       s.scoreTeam(c, &reasons),
		Traction:   s.scoreTraction(c, &reasons),
		Market:     s.scoreMarket(c, &reasons),
		Product:    s.scoreProduct(c, &reasons),
		Vision:     s.scoreVision(c, &reasons),
		Ecosystem:  s.scoreEcosystem(c, &reasons),
		Grit:       s.scoreGrit(c, &reasons),
		Validation: s.scoreValidation(c, &reasons),
	}

	total := 10 * b.Sum() / caps.CapTotal
	if total > 10 {
		total = 10
	}

	tier := "cold"
	switch {
	case total >= 7:
		tier = "hot"
	case total >= 4:
		tier = "warm"
	}

	matchCount := 5
	switch {
	case total >= 9:
		matchCount = 20
	case total >= 7:
		matchCount = 15
	case total >= 5:
		matchCount = 10
	}

	return Result{
		Total:      total,
		Breakdown:  b,
		Tier:       tier,
		MatchCount: matchCount,
		Reasoning:  reasons,
	}
}

func (s *Scorer) scoreTeam(c *models.Candidate, reasons *[]string) float64 {
	score := 0.0

	if c.Team.TechnicalCofounders > 0 {
		founders := c.Team.FoundersCount
		if founders == 0 {
			founders = c.Team.TechnicalCofounders
		}
		if float64(c.Team.TechnicalCofounders)/float64(founders) >= 0.5 {
			score += 1
			*reasons = append(*reasons, "Strong technical team")
		}
	}

	if c.Team.TopTierBackground {
		score += 1
		*reasons = append(*reasons, "Top-tier founder pedigree")
	}

	if c.Team.DomainExpertise {
		score += 0.5
		*reasons = append(*reasons, "Domain expertise")
	}

	return min(score, s.rules.QualityCaps.Team)
}

func (s *Scorer) scoreTraction(c *models.Candidate, reasons *[]string) float64 {
	score := 0.0
	t := c.Traction

	// Revenue traction: best of annualized revenue and GMV
	annual := t.Revenue
	if t.MRR*12 > annual {
		annual = t.MRR * 12
	}
	best := annual
	if t.GMV > best {
		best = t.GMV
	}
	switch {
	case best >= 1000000:
		score += 1.5
		*reasons = append(*reasons, "Significant revenue traction ($1M+)")
	case best >= 100000:
		score += 1
		*reasons = append(*reasons, "Meaningful revenue traction ($100K+)")
	case best > 0:
		score += 0.5
	}

	// Monthly growth rate
	switch {
	case t.GrowthRate >= 30:
		score += 1
		*reasons = append(*reasons, fmt.Sprintf("Exceptional growth (%.0f%% MoM)", t.GrowthRate))
	case t.GrowthRate >= 20:
		score += 0.75
	case t.GrowthRate >= 15:
		score += 0.5
	case t.GrowthRate >= 10:
		score += 0.25
	}

	// Retention or low churn, not both
	if t.RetentionRate >= 80 {
		score += 0.5
	} else if t.ChurnRate > 0 && t.ChurnRate <= 5 {
		score += 0.5
	}

	switch {
	case t.ActiveUsers >= 10000:
		score += 0.5
	case t.ActiveUsers >= 1000:
		score += 0.25
	}

	if t.PrepayingCustomers >= 10 {
		score += 0.5
	} else if t.PrepayingCustomers >= 3 {
		score += 0.25
	} else if t.Customers >= 10 || t.SignedContracts >= 5 {
		score += 0.5
	}

	if hasTopInvestor(t.BackedBy) {
		score += 0.5
		*reasons = append(*reasons, "Backed by top-tier investors")
	}

	return min(score, s.rules.QualityCaps.Traction)
}

var hotSectors = []string{"ai", "artificial intelligence", "fintech", "biotech", "climate", "deep tech", "crypto", "web3"}

func (s *Scorer) scoreMarket(c *models.Candidate, reasons *[]string) float64 {
	score := 0.0

	for _, sector := range c.Sectors {
		lower := strings.ToLower(sector)
		matched := false
		for _, hot := range hotSectors {
			if strings.Contains(lower, hot) {
				matched = true
				break
			}
		}
		if matched {
			score += 1
			*reasons = append(*reasons, "Operating in a high-momentum sector")
			break
		}
	}

	switch {
	case c.Market.MarketSizeBillions >= 10:
		score += 1
		*reasons = append(*reasons, "Massive market ($10B+ TAM)")
	case c.Market.MarketSizeBillions >= 1:
		score += 0.5
	case c.Market.MarketSizeBillions >= 0.1:
		score += 0.25
	}

	if len(c.Market.Problem) > 50 && len(c.Market.Solution) > 50 {
		score += 0.5
	}

	return min(score, s.rules.QualityCaps.Market)
}

func (s *Scorer) scoreProduct(c *models.Candidate, reasons *[]string) float64 {
	score := 0.0
	p := c.Product

	if p.MVPStage || p.Launched {
		score += 0.5
	}
	if p.DemoAvailable {
		score += 0.5
	}
	if p.UniqueIP {
		score += 0.5
		*reasons = append(*reasons, "Defensible IP")
	}
	switch p.Defensibility {
	case "high":
		score += 0.5
	case "medium":
		score += 0.25
	}

	return min(score, s.rules.QualityCaps.Product)
}

func (s *Scorer) scoreVision(c *models.Candidate, reasons *[]string) float64 {
	score := 0.0
	v := c.Vision

	if len(v.ContrarianInsight) > 100 {
		score += 0.5
		*reasons = append(*reasons, "Contrarian market insight")
	}
	if len(v.CreativeStrategy) > 100 {
		score += 0.5
	}
	if v.PassionateCustomers >= 3 {
		score += 0.25
	}

	hasPlan := len(v.UseOfFunds) > 50
	hasRunway := v.RunwayMonths >= 12 && v.RunwayMonths <= 18
	knowsBurn := v.BurnRate > 0
	if hasPlan && (hasRunway || knowsBurn) {
		score += 0.5
	} else if hasPlan || hasRunway {
		score += 0.25
	}

	if len(v.VisionStatement) > 50 {
		score += 0.25
	}

	return min(score, s.rules.QualityCaps.Vision)
}

func (s *Scorer) scoreEcosystem(c *models.Candidate, reasons *[]string) float64 {
	score := 0.0
	e := c.Ecosystem

	var active, revenue []models.Partner
	for _, p := range e.Partners {
		if p.Stage == "signed" || p.Stage == "revenue_generating" {
			active = append(active, p)
			if p.Stage == "revenue_generating" {
				revenue = append(revenue, p)
			}
		}
	}

	switch {
	case len(revenue) >= 2:
		score += 0.75
		*reasons = append(*reasons, "Multiple revenue-generating partnerships")
	case len(revenue) == 1:
		score += 0.5
	case len(active) >= 3:
		score += 0.4
	case len(active) >= 1:
		score += 0.25
	}

	for _, p := range revenue {
		if p.Type == "distribution" {
			score += 0.25
			break
		}
	}

	if len(e.Advisors) > 0 {
		notable := false
		keywords := []string{"ceo", "cto", "founder", "vp", "director", "professor", "phd"}
		for _, a := range e.Advisors {
			text := strings.ToLower(a.Background + " " + a.Role)
			for _, kw := range keywords {
				if strings.Contains(text, kw) {
					notable = true
					break
				}
			}
		}
		switch {
		case len(e.Advisors) >= 3 && notable:
			score += 0.5
		case notable:
			score += 0.3
		case len(e.Advisors) >= 2:
			score += 0.2
		}
	}

	// Heavy dependency on external platforms is risky
	riskPlatforms := []string{"openai", "chatgpt", "aws", "google cloud"}
	risky := 0
	for _, dep := range e.PlatformDependencies {
		lower := strings.ToLower(dep)
		for _, risk := range riskPlatforms {
			if strings.Contains(lower, risk) {
				risky++
				break
			}
		}
	}
	if risky >= 3 {
		score -= 0.25
	} else if risky >= 2 {
		score -= 0.15
	}

	if score < 0 {
		score = 0
	}
	return min(score, s.rules.QualityCaps.Ecosystem)
}

// scoreGrit measures adaptation and iteration speed. Unknown is not bad:
// candidates without any grit data get a middle-of-the-road 0.5.
func (s *Scorer) scoreGrit(c *models.Candidate, reasons *[]string) float64 {
	score := 0.0
	hasData := false
	g := c.Grit

	if g.PivotsMade != nil {
		hasData = true
		pivots := *g.PivotsMade
		switch {
		case pivots == 1 || pivots == 2:
			score += 0.5
			*reasons = append(*reasons, "Intelligent pivots show adaptability")
		case pivots == 0 && g.FoundedAt != nil:
			monthsOld := time.Since(*g.FoundedAt).Hours() / (24 * 30)
			if monthsOld > 12 && c.Traction.Customers > 10 {
				score += 0.4
			}
		case pivots >= 3:
			score += 0.2
		}
	}

	if g.CustomerFeedbackFrequency != "" {
		hasData = true
		switch g.CustomerFeedbackFrequency {
		case "daily":
			score += 0.5
		case "weekly":
			score += 0.35
		case "monthly":
			score += 0.2
		}
	}

	if g.TimeToIterateDays != nil {
		hasData = true
		days := *g.TimeToIterateDays
		switch {
		case days <= 7:
			score += 0.5
		case days <= 14:
			score += 0.35
		case days <= 30:
			score += 0.2
		}
	}

	if !hasData {
		return 0.5
	}

	return min(score, s.rules.QualityCaps.Grit)
}

// scoreValidation measures how deeply the customer problem is understood.
// Without any validation data a neutral 0.6 is assumed.
func (s *Scorer) scoreValidation(c *models.Candidate, reasons *[]string) float64 {
	v := c.Validation

	hasData := v.CustomerInterviews > 0 || v.PainCost > 0 || v.PainFrequency != "" ||
		v.WillingnessToPayValidated || v.ICPClarity != "" || v.ProblemDiscoveryDepth != ""
	if !hasData {
		return 0.6
	}

	score := 0.0

	switch {
	case v.CustomerInterviews >= 50:
		score += 0.75
		*reasons = append(*reasons, "Exceptional customer discovery (50+ interviews)")
	case v.CustomerInterviews >= 20:
		score += 0.6
	case v.CustomerInterviews >= 10:
		score += 0.4
	case v.CustomerInterviews >= 5:
		score += 0.2
	}

	if v.PainCost > 100000 {
		score += 0.3
	} else if v.PainCost > 10000 {
		score += 0.2
	}
	if v.PainFrequency == "daily" {
		score += 0.1
	}
	if v.WillingnessToPayValidated {
		score += 0.1
		*reasons = append(*reasons, "Willingness to pay validated")
	}

	switch v.ICPClarity {
	case "crystal_clear":
		score += 0.4
	case "moderate":
		score += 0.2
	}

	switch v.ProblemDiscoveryDepth {
	case "deep":
		score += 0.35
	case "moderate":
		score += 0.2
	case "surface":
		score += 0.05
	}

	return min(score, s.rules.QualityCaps.Validation)
}

var topInvestors = []string{"yc", "y combinator", "sequoia", "a16z", "andreessen", "founders fund"}

func hasTopInvestor(backedBy []string) bool {
	for _, inv := range backedBy {
		lower := strings.ToLower(inv)
		for _, top := range topInvestors {
			if strings.Contains(lower, top) {
				return true
			}
		}
	}
	return false
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
