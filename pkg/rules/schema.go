// pkg/rules/schema.go
package rules

// Ruleset centralizes every tunable scoring constant so threshold
// recommendations can be applied as configuration updates, not code edits.
type Ruleset struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`

	CombineWeights CombineWeights `json:"combineWeights"`
	QualityCaps    QualityCaps    `json:"qualityCaps"`
	FitWeights     FitWeights     `json:"fitWeights"`
	Preference     PreferenceRules `json:"preference"`
	Thresholds     Thresholds     `json:"thresholds"`
}

// CombineWeights are the fixed base-score weights. They sum to 1.0.
type CombineWeights struct {
	Similarity    float64 `json:"similarity"`
	Quality       float64 `json:"quality"`
	Fit           float64 `json:"fit"`
	HistoricalFit float64 `json:"historicalFit"`
}

// QualityCaps bound each quality sub-score. CapTotal is the normalization
// divisor: a candidate maxing every dimension scores exactly 10.
type QualityCaps struct {
	Team       float64 `json:"team"`
	Traction   float64 `json:"traction"`
	Market     float64 `json:"market"`
	Product    float64 `json:"product"`
	Vision     float64 `json:"vision"`
	Ecosystem  float64 `json:"ecosystem"`
	Grit       float64 `json:"grit"`
	Validation float64 `json:"validation"`
	CapTotal   float64 `json:"capTotal"`
}

// FitWeights distribute the [0,1] fit score across its components.
type FitWeights struct {
	Sector      float64 `json:"sector"`
	Stage       float64 `json:"stage"`
	CheckSize   float64 `json:"checkSize"`
	Pattern     float64 `json:"pattern"`
	TrackRecord float64 `json:"trackRecord"`
}

// PreferenceRules govern feedback learning.
type PreferenceRules struct {
	HalfLifeDays         float64            `json:"halfLifeDays"`
	LookbackDays         int                `json:"lookbackDays"`
	MaxAdjustment        float64            `json:"maxAdjustment"`        // clamp, in score points
	ConfidenceSaturation int                `json:"confidenceSaturation"` // events to reach confidence 1.0
	EventWeights         map[string]float64 `json:"eventWeights"`
}

// Thresholds gate persistence, confidence labels and monitor tuning.
type Thresholds struct {
	MinMatchScore          int     `json:"minMatchScore"`
	SimilarityAdmission    float64 `json:"similarityAdmission"`
	HighConfidenceEvidence float64 `json:"highConfidenceEvidence"`
	HighConfidenceScore    float64 `json:"highConfidenceScore"`
	MediumEvidence         float64 `json:"mediumEvidence"`
	MediumScore            float64 `json:"mediumScore"`
}

// Default returns the built-in ruleset. The constants mirror observed
// outcomes, not a derivation; they are deliberately overridable from JSON.
func Default() *Ruleset {
	return &Ruleset{
		Version:     "1.0.0",
		LastUpdated: "2026-08-01",
		CombineWeights: CombineWeights{
			Similarity:    0.30,
			Quality:       0.25,
			Fit:           0.25,
			HistoricalFit: 0.20,
		},
		QualityCaps: QualityCaps{
			Team:       3,
			Traction:   3,
			Market:     2,
			Product:    2,
			Vision:     2,
			Ecosystem:  1.5,
			Grit:       1.5,
			Validation: 2,
			CapTotal:   17,
		},
		FitWeights: FitWeights{
			Sector:      0.25,
			Stage:       0.20,
			CheckSize:   0.20,
			Pattern:     0.20,
			TrackRecord: 0.15,
		},
		Preference: PreferenceRules{
			HalfLifeDays:         90,
			LookbackDays:         365,
			MaxAdjustment:        15,
			ConfidenceSaturation: 20,
			EventWeights: map[string]float64{
				"viewed":            0.1,
				"saved":             0.3,
				"contacted":         0.5,
				"meeting_scheduled": 0.7,
				"converted":         1.0,
				"passed":            -0.3,
				"reported":          -0.5,
			},
		},
		Thresholds: Thresholds{
			MinMatchScore:          35,
			SimilarityAdmission:    0.30,
			HighConfidenceEvidence: 0.7,
			HighConfidenceScore:    70,
			MediumEvidence:         0.5,
			MediumScore:            50,
		},
	}
}
