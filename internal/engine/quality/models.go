// internal/engine/quality/models.go
package quality

// Breakdown holds the eight capped sub-scores.
type Breakdown struct {
	Team       float64 `json:"team"`       // 0-3
	Traction   float64 `json:"traction"`   // 0-3
	Market     float64 `json:"market"`     // 0-2
	Product    float64 `json:"product"`    // 0-2
	Vision     float64 `json:"vision"`     // 0-2
	Ecosystem  float64 `json:"ecosystem"`  // 0-1.5
	Grit       float64 `json:"grit"`       // 0-1.5
	Validation float64 `json:"validation"` // 0-2
}

// Sum returns the raw sub-score total before normalization.
func (b Breakdown) Sum() float64 {
	return b.Team + b.Traction + b.Market + b.Product + b.Vision +
		b.Ecosystem + b.Grit + b.Validation
}

// Result is the intrinsic quality assessment of a candidate.
type Result struct {
	Total      float64   `json:"total"` // [0,10]
	Breakdown  Breakdown `json:"breakdown"`
	Tier       string    `json:"tier"`       // hot | warm | cold
	MatchCount int       `json:"matchCount"` // how many counterparties to consider
	Reasoning  []string  `json:"reasoning"`
}
