// internal/models/counterparty.go
package models

import "time"

// Counterparty is the entity whose preferences define fit (an investor).
type Counterparty struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Sectors      []string              `json:"sectors"` // sector focus
	Stages       []string              `json:"stages"`  // stage focus
	CheckSizeMin float64               `json:"checkSizeMin"`
	CheckSizeMax float64               `json:"checkSizeMax"`
	Embedding    []float64             `json:"embedding,omitempty"`
	Portfolio    PortfolioHistory      `json:"portfolio"`
	Preferences  *LearnedPreferenceSet `json:"preferences,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// PortfolioHistory aggregates the counterparty's historical investments and
// the structural statistics of its positively-labeled candidates.
type PortfolioHistory struct {
	StageCounts          map[string]int `json:"stageCounts,omitempty"`
	TotalInvestments     int            `json:"totalInvestments"`
	ExitCount            int            `json:"exitCount"`
	TechnicalFounderRate float64        `json:"technicalFounderRate"` // share of backed candidates with a technical cofounder
	RevenueRate          float64        `json:"revenueRate"`          // share of backed candidates with revenue at entry
	AvgTeamSize          float64        `json:"avgTeamSize"`
	SampleSize           int            `json:"sampleSize"`
}

// AffinityStat accumulates decayed positive and negative feedback for one
// dimension value (a sector tag or a stage).
type AffinityStat struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Count    int     `json:"count"`
}

// LearnedPreferenceSet is recomputed from the full decayed event history on
// each refresh, never incrementally patched.
type LearnedPreferenceSet struct {
	Sectors     map[string]AffinityStat `json:"sectors"`
	Stages      map[string]AffinityStat `json:"stages"`
	EventCount  int                     `json:"eventCount"`
	Confidence  float64                 `json:"confidence"` // min(1, eventCount/20)
	RefreshedAt time.Time               `json:"refreshedAt"`
}

// Completeness returns the fraction of key preference groups present, in [0,1].
func (c *Counterparty) Completeness() float64 {
	total := 4.0
	present := 0.0
	if len(c.Sectors) > 0 {
		present++
	}
	if len(c.Stages) > 0 {
		present++
	}
	if c.CheckSizeMax > 0 {
		present++
	}
	if c.Portfolio.TotalInvestments > 0 || c.Portfolio.SampleSize > 0 {
		present++
	}
	return present / total
}
