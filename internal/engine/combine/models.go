// internal/engine/combine/models.go
package combine

import (
	"match-engine/internal/engine/fit"
	"match-engine/internal/engine/quality"
	"match-engine/internal/models"
)

// PairScore is the full scoring outcome for one candidate/counterparty pair.
type PairScore struct {
	CandidateID    string                 `json:"candidateId"`
	CounterpartyID string                 `json:"counterpartyId"`
	Score          int                    `json:"score"` // [0,100]
	Confidence     models.ConfidenceLevel `json:"confidence"`
	Breakdown      models.ScoreBreakdown  `json:"breakdown"`
	Quality        quality.Result         `json:"quality"`
	Fit            fit.Result             `json:"fit"`
	Reasoning      []string               `json:"reasoning"`
	Persisted      bool                   `json:"persisted"`
	Degraded       bool                   `json:"degraded"`
}

// CandidateResult aggregates one scoring pass over a candidate.
type CandidateResult struct {
	CandidateID string       `json:"candidateId"`
	Considered  int          `json:"considered"`
	Persisted   int          `json:"persisted"`
	Pairs       []*PairScore `json:"pairs"`
}
