// internal/engine/fit/sectors.go
package fit

import "strings"

// sectorSynonyms folds free-form sector tags onto canonical names before
// comparison. Lookup is lowercase.
var sectorSynonyms = map[string]string{
	"ai":                      "ai/ml",
	"ai/ml":                   "ai/ml",
	"artificial intelligence": "ai/ml",
	"machine learning":        "ai/ml",
	"ml":                      "ai/ml",
	"genai":                   "ai/ml",

	"saas":      "saas",
	"b2b saas":  "saas",
	"software":  "saas",
	"b2b":       "saas",

	"fintech":            "fintech",
	"financial services": "fintech",
	"payments":           "fintech",
	"banking":            "fintech",

	"healthcare": "healthcare",
	"healthtech": "healthcare",
	"health":     "healthcare",
	"medtech":    "healthcare",

	"biotech": "biotech",
	"biotech/pharma": "biotech",

	"edtech":    "edtech",
	"education": "edtech",

	"ecommerce":  "ecommerce",
	"e-commerce": "ecommerce",
	"retail":     "ecommerce",

	"marketplace":  "marketplace",
	"marketplaces": "marketplace",

	"climate":     "climatetech",
	"climatetech": "climatetech",
	"cleantech":   "climatetech",
	"energy":      "climatetech",

	"crypto":     "web3",
	"web3":       "web3",
	"blockchain": "web3",

	"security":      "security",
	"cybersecurity": "security",

	"devtools":        "devtools",
	"developer tools": "devtools",
	"infrastructure":  "devtools",

	"logistics":    "logistics",
	"supply chain": "logistics",

	"proptech":    "proptech",
	"real estate": "proptech",

	"insurtech": "insurtech",
	"insurance": "insurtech",
}

// sectorAdjacency maps a canonical sector to sectors close enough that a
// counterparty focused there plausibly invests across the boundary.
var sectorAdjacency = map[string][]string{
	"ai/ml":       {"saas", "devtools", "fintech", "healthcare", "security"},
	"saas":        {"ai/ml", "devtools", "fintech", "edtech"},
	"fintech":     {"saas", "web3", "insurtech", "ai/ml"},
	"healthcare":  {"biotech", "ai/ml"},
	"biotech":     {"healthcare"},
	"edtech":      {"saas"},
	"ecommerce":   {"marketplace", "logistics"},
	"marketplace": {"ecommerce", "logistics"},
	"climatetech": {"logistics"},
	"web3":        {"fintech", "security"},
	"security":    {"devtools", "ai/ml"},
	"devtools":    {"saas", "security", "ai/ml"},
	"logistics":   {"ecommerce", "marketplace"},
	"proptech":    {"fintech"},
	"insurtech":   {"fintech"},
}

// normalizeSector folds a raw tag onto its canonical sector. Unknown tags
// pass through lowercased so exact matches still work.
func normalizeSector(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := sectorSynonyms[key]; ok {
		return canonical
	}
	return key
}

func normalizeSectors(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		s := normalizeSector(r)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func isAdjacentSector(a, b string) bool {
	for _, adj := range sectorAdjacency[a] {
		if adj == b {
			return true
		}
	}
	return false
}

// stageOrder defines the funding ladder used for adjacency.
var stageOrder = []string{"pre-seed", "seed", "series-a", "series-b", "growth"}

var stageAliases = map[string]string{
	"pre-seed":  "pre-seed",
	"preseed":   "pre-seed",
	"pre seed":  "pre-seed",
	"angel":     "pre-seed",
	"seed":      "seed",
	"series a":  "series-a",
	"series-a":  "series-a",
	"a":         "series-a",
	"series b":  "series-b",
	"series-b":  "series-b",
	"b":         "series-b",
	"series c":  "growth",
	"series-c":  "growth",
	"series c+": "growth",
	"c":         "growth",
	"growth":    "growth",
	"late":      "growth",
	"late stage": "growth",
}

// normalizeStage folds a raw stage label onto the canonical ladder.
// Unknown labels return "" and are treated as missing data.
func normalizeStage(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := stageAliases[key]; ok {
		return canonical
	}
	return ""
}

func stageIndex(stage string) int {
	for i, s := range stageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// isAdjacentStage reports whether two canonical stages are one step apart.
func isAdjacentStage(a, b string) bool {
	ia, ib := stageIndex(a), stageIndex(b)
	if ia < 0 || ib < 0 {
		return false
	}
	diff := ia - ib
	return diff == 1 || diff == -1
}
