// internal/engine/combine/config.go
package combine

import "match-engine/pkg/rules"

// Config tunes the combinator independently of the global ruleset weights.
type Config struct {
	// MaxMatches bounds how many counterparties one candidate is scored
	// against when no quality-derived count applies.
	MaxMatches int

	// MinScore is the persistence floor. Pairs scoring below it are
	// reported but not written to the match table.
	MinScore int

	// NotifyMinScore gates event publication on top of the high-confidence
	// label.
	NotifyMinScore int

	Rules *rules.Ruleset
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.MaxMatches <= 0 {
		out.MaxMatches = 20
	}
	if out.MinScore <= 0 {
		out.MinScore = out.Rules.Thresholds.MinMatchScore
	}
	if out.NotifyMinScore <= 0 {
		out.NotifyMinScore = int(out.Rules.Thresholds.HighConfidenceScore)
	}
	return &out
}
