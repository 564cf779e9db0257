// internal/models/candidate.go
package models

import "time"

// Candidate is the entity being evaluated for fitness (a startup).
// Identity is immutable; attributes are mutated by enrichment.
type Candidate struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Sectors     []string   `json:"sectors"`
	Stage       string     `json:"stage"`
	RaiseAmount float64    `json:"raiseAmount"`
	Embedding   []float64  `json:"embedding,omitempty"`
	CachedScore *float64   `json:"cachedQualityScore,omitempty"`
	Team        TeamProfile        `json:"team"`
	Traction    TractionProfile    `json:"traction"`
	Market      MarketProfile      `json:"market"`
	Product     ProductProfile     `json:"product"`
	Vision      VisionProfile      `json:"vision"`
	Ecosystem   EcosystemProfile   `json:"ecosystem"`
	Grit        GritProfile        `json:"grit"`
	Validation  ValidationProfile  `json:"validation"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type TeamProfile struct {
	FoundersCount       int  `json:"foundersCount"`
	TechnicalCofounders int  `json:"technicalCofounders"`
	TopTierBackground   bool `json:"topTierBackground"`
	DomainExpertise     bool `json:"domainExpertise"`
	TeamSize            int  `json:"teamSize"`
}

type TractionProfile struct {
	Revenue            float64  `json:"revenue"` // annualized
	MRR                float64  `json:"mrr"`
	GMV                float64  `json:"gmv"`
	GrowthRate         float64  `json:"growthRate"` // monthly %
	RetentionRate      float64  `json:"retentionRate"`
	ChurnRate          float64  `json:"churnRate"`
	ActiveUsers        int      `json:"activeUsers"`
	Customers          int      `json:"customers"`
	SignedContracts    int      `json:"signedContracts"`
	PrepayingCustomers int      `json:"prepayingCustomers"`
	BackedBy           []string `json:"backedBy,omitempty"`
}

type MarketProfile struct {
	MarketSizeBillions float64 `json:"marketSizeBillions"`
	Problem            string  `json:"problem,omitempty"`
	Solution           string  `json:"solution,omitempty"`
}

type ProductProfile struct {
	MVPStage      bool   `json:"mvpStage"`
	Launched      bool   `json:"launched"`
	DemoAvailable bool   `json:"demoAvailable"`
	UniqueIP      bool   `json:"uniqueIp"`
	Defensibility string `json:"defensibility,omitempty"` // high | medium | low
}

type VisionProfile struct {
	ContrarianInsight   string  `json:"contrarianInsight,omitempty"`
	CreativeStrategy    string  `json:"creativeStrategy,omitempty"`
	VisionStatement     string  `json:"visionStatement,omitempty"`
	UseOfFunds          string  `json:"useOfFunds,omitempty"`
	PassionateCustomers int     `json:"passionateCustomers"`
	RunwayMonths        int     `json:"runwayMonths"`
	BurnRate            float64 `json:"burnRate"`
}

type Partner struct {
	Name  string `json:"name"`
	Type  string `json:"type"`  // distribution | technology | referral | integration | supplier
	Stage string `json:"stage"` // prospect | pilot | signed | revenue_generating
}

type Advisor struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Role       string `json:"role"`
}

type EcosystemProfile struct {
	Partners             []Partner `json:"partners,omitempty"`
	Advisors             []Advisor `json:"advisors,omitempty"`
	PlatformDependencies []string  `json:"platformDependencies,omitempty"`
}

type GritProfile struct {
	PivotsMade                *int       `json:"pivotsMade,omitempty"`
	CustomerFeedbackFrequency string     `json:"customerFeedbackFrequency,omitempty"` // daily | weekly | monthly | rarely
	TimeToIterateDays         *int       `json:"timeToIterateDays,omitempty"`
	FoundedAt                 *time.Time `json:"foundedAt,omitempty"`
}

type ValidationProfile struct {
	CustomerInterviews          int     `json:"customerInterviews"`
	PainCost                    float64 `json:"painCost"`
	PainFrequency               string  `json:"painFrequency,omitempty"` // daily | weekly | monthly
	WillingnessToPayValidated   bool    `json:"willingnessToPayValidated"`
	ICPClarity                  string  `json:"icpClarity,omitempty"`            // vague | moderate | crystal_clear
	ProblemDiscoveryDepth       string  `json:"problemDiscoveryDepth,omitempty"` // surface | moderate | deep
}

// HasTechnicalCofounder reports whether at least one technical cofounder is declared.
func (c *Candidate) HasTechnicalCofounder() bool {
	return c.Team.TechnicalCofounders > 0
}

// HasRevenue reports whether any revenue signal is present.
func (c *Candidate) HasRevenue() bool {
	return c.Traction.Revenue > 0 || c.Traction.MRR > 0 || c.Traction.GMV > 0
}

// Completeness returns the fraction of key attribute groups present, in [0,1].
// Used as one input to the confidence label.
func (c *Candidate) Completeness() float64 {
	total := 5.0
	present := 0.0
	if len(c.Sectors) > 0 {
		present++
	}
	if c.Stage != "" {
		present++
	}
	if c.Team.FoundersCount > 0 || c.Team.TechnicalCofounders > 0 {
		present++
	}
	if c.HasRevenue() || c.Traction.ActiveUsers > 0 || c.Traction.Customers > 0 {
		present++
	}
	if c.RaiseAmount > 0 {
		present++
	}
	return present / total
}
