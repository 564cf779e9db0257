// internal/models/match.go
package models

import "time"

// MatchStatus tracks downstream interaction with a suggested match.
type MatchStatus string

const (
	MatchStatusSuggested MatchStatus = "suggested"
	MatchStatusViewed    MatchStatus = "viewed"
	MatchStatusInQueue   MatchStatus = "in_queue"
	MatchStatusContacted MatchStatus = "contacted"
	MatchStatusPassed    MatchStatus = "passed"
)

// ConfidenceLevel is a coarse reliability label on a score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ScoreBreakdown carries the named components behind a final score.
// Component values are the raw [0,1] signals before weighting.
type ScoreBreakdown struct {
	Similarity      float64 `json:"similarity"`
	Quality         float64 `json:"quality"`
	Fit             float64 `json:"fit"`
	HistoricalFit   float64 `json:"historicalFit"`
	PreferenceDelta float64 `json:"preferenceDelta"` // additive, in [-15, 15]
}

// Match is a scored, stateful pairing of one Candidate and one Counterparty,
// unique per (candidate_id, counterparty_id). Re-scoring updates score and
// breakdown in place and preserves CreatedAt.
type Match struct {
	ID             string          `json:"id"`
	CandidateID    string          `json:"candidateId"`
	CounterpartyID string          `json:"counterpartyId"`
	Score          int             `json:"score"` // [0,100]
	Confidence     ConfidenceLevel `json:"confidence"`
	Status         MatchStatus     `json:"status"`
	Breakdown      ScoreBreakdown  `json:"breakdown"`
	Reasoning      []string        `json:"reasoning,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// QualityTier buckets a score relative to the 100-point maximum.
func QualityTier(score int) string {
	switch {
	case score >= 90:
		return "super"
	case score >= 70:
		return "strong"
	case score >= 50:
		return "moderate"
	default:
		return "weak"
	}
}
