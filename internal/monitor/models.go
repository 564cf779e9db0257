// internal/monitor/models.go
package monitor

import "time"

// Anomaly flags one match whose similarity and quality signals disagree.
type Anomaly struct {
	MatchID        string  `json:"matchId"`
	CandidateID    string  `json:"candidateId"`
	CounterpartyID string  `json:"counterpartyId"`
	Type           string  `json:"type"`
	Similarity     float64 `json:"similarity"`
	Quality        float64 `json:"quality"` // 0-10 scale
}

const (
	AnomalyLowSimHighQuality = "low_similarity_high_quality"
	AnomalyHighSimLowQuality = "high_similarity_low_quality"
)

// WeekBucket summarizes one ISO week of match production.
type WeekBucket struct {
	Week           string  `json:"week"` // e.g. "2026-W35"
	Matches        int     `json:"matches"`
	MeanScore      float64 `json:"meanScore"`
	MeanSimilarity float64 `json:"meanSimilarity"`
}

// Report is one scan over the analysis window.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	WindowDays  int       `json:"windowDays"`
	Population  int       `json:"population"`

	SimilarityMean   float64 `json:"similarityMean"`
	SimilarityMedian float64 `json:"similarityMedian"`
	SimilarityStdDev float64 `json:"similarityStdDev"`

	TierDistribution map[string]int `json:"tierDistribution"`

	Anomalies []Anomaly `json:"anomalies,omitempty"`

	// SuggestedThreshold is a recommendation only; the admission threshold
	// changes through the ruleset, never automatically.
	SuggestedThreshold float64      `json:"suggestedThreshold"`
	WeeklyTrend        []WeekBucket `json:"weeklyTrend,omitempty"`
}
