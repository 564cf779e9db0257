// pkg/rules/registry.go
package rules

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// rulesetSchema validates ruleset documents before they are trusted.
const rulesetSchema = `{
  "type": "object",
  "required": ["version", "combineWeights", "qualityCaps", "fitWeights", "preference", "thresholds"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "combineWeights": {
      "type": "object",
      "required": ["similarity", "quality", "fit", "historicalFit"],
      "properties": {
        "similarity": {"type": "number", "minimum": 0, "maximum": 1},
        "quality": {"type": "number", "minimum": 0, "maximum": 1},
        "fit": {"type": "number", "minimum": 0, "maximum": 1},
        "historicalFit": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "qualityCaps": {
      "type": "object",
      "required": ["team", "traction", "market", "product", "vision", "ecosystem", "grit", "validation", "capTotal"],
      "properties": {
        "capTotal": {"type": "number", "exclusiveMinimum": 0}
      }
    },
    "fitWeights": {"type": "object"},
    "preference": {
      "type": "object",
      "required": ["halfLifeDays", "lookbackDays", "maxAdjustment", "confidenceSaturation", "eventWeights"],
      "properties": {
        "halfLifeDays": {"type": "number", "exclusiveMinimum": 0},
        "lookbackDays": {"type": "integer", "exclusiveMinimum": 0},
        "maxAdjustment": {"type": "number", "minimum": 0},
        "confidenceSaturation": {"type": "integer", "exclusiveMinimum": 0},
        "eventWeights": {"type": "object", "additionalProperties": {"type": "number"}}
      }
    },
    "thresholds": {
      "type": "object",
      "properties": {
        "minMatchScore": {"type": "integer", "minimum": 0, "maximum": 100},
        "similarityAdmission": {"type": "number", "minimum": 0, "maximum": 1}
      }
    }
  }
}`

// Load reads a ruleset override from path. An empty path returns the
// built-in defaults.
func Load(path string) (*Ruleset, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset %s: %w", path, err)
	}

	if err := Validate(data); err != nil {
		return nil, err
	}

	var rs Ruleset
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse ruleset %s: %w", path, err)
	}

	return &rs, nil
}

// Validate checks a ruleset document against the schema.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(rulesetSchema)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("ruleset schema validation error: %w", err)
	}

	if !result.Valid() {
		details := ""
		for _, e := range result.Errors() {
			if details != "" {
				details += "; "
			}
			details += e.String()
		}
		return fmt.Errorf("invalid ruleset: %s", details)
	}

	return nil
}
