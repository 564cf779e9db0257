// internal/engine/preference/learner.go
package preference

import (
	"math"
	"strings"
	"time"

	"match-engine/internal/models"
	"match-engine/pkg/rules"
)

// Learner recomputes a counterparty's learned affinities from its full
// time-decayed interaction history. The set is always rebuilt from scratch;
// it is never incrementally patched.
type Learner struct {
	rules *rules.Ruleset
}

func NewLearner(rs *rules.Ruleset) *Learner {
	if rs == nil {
		rs = rules.Default()
	}
	return &Learner{rules: rs}
}

// Learn folds the event history into per-sector and per-stage affinity
// accumulators. Each event contributes weight(type) * decay(age), where
// decay(age) = 0.5^(age/halfLife). Events older than the lookback window
// are ignored.
func (l *Learner) Learn(events []models.InteractionEvent, now time.Time) *models.LearnedPreferenceSet {
	p := l.rules.Preference
	cutoff := now.AddDate(0, 0, -p.LookbackDays)

	set := &models.LearnedPreferenceSet{
		Sectors:     make(map[string]models.AffinityStat),
		Stages:      make(map[string]models.AffinityStat),
		RefreshedAt: now,
	}

	for _, evt := range events {
		if evt.OccurredAt.Before(cutoff) || evt.OccurredAt.After(now) {
			continue
		}

		weight, ok := p.EventWeights[string(evt.EventType)]
		if !ok {
			continue
		}

		ageDays := now.Sub(evt.OccurredAt).Hours() / 24
		decay := math.Pow(0.5, ageDays/p.HalfLifeDays)
		contribution := math.Abs(weight) * decay
		positive := weight > 0

		for _, sector := range evt.CandidateSectors {
			key := strings.ToLower(strings.TrimSpace(sector))
			if key == "" {
				continue
			}
			accumulate(set.Sectors, key, contribution, positive)
		}
		if stage := strings.ToLower(strings.TrimSpace(evt.CandidateStage)); stage != "" {
			accumulate(set.Stages, stage, contribution, positive)
		}

		set.EventCount++
	}

	set.Confidence = float64(set.EventCount) / float64(p.ConfidenceSaturation)
	if set.Confidence > 1 {
		set.Confidence = 1
	}

	return set
}

// Adjustment returns the additive score delta for a candidate with the
// given sectors and stage, clamped to the configured maximum so learned
// preference can never dominate the intrinsic and fit signals.
// An empty history contributes exactly zero.
func (l *Learner) Adjustment(set *models.LearnedPreferenceSet, sectors []string, stage string) float64 {
	if set == nil || set.EventCount == 0 || set.Confidence == 0 {
		return 0
	}

	boost := 0.0
	matched := 0

	for _, sector := range sectors {
		key := strings.ToLower(strings.TrimSpace(sector))
		if stat, ok := set.Sectors[key]; ok && stat.Count > 0 {
			boost += (stat.Positive - stat.Negative) / float64(stat.Count)
			matched++
		}
	}
	if key := strings.ToLower(strings.TrimSpace(stage)); key != "" {
		if stat, ok := set.Stages[key]; ok && stat.Count > 0 {
			boost += (stat.Positive - stat.Negative) / float64(stat.Count)
			matched++
		}
	}

	if matched == 0 {
		return 0
	}

	adjustment := 10 * (boost / float64(matched)) * set.Confidence

	maxAdj := l.rules.Preference.MaxAdjustment
	if adjustment > maxAdj {
		return maxAdj
	}
	if adjustment < -maxAdj {
		return -maxAdj
	}
	return adjustment
}

func accumulate(stats map[string]models.AffinityStat, key string, contribution float64, positive bool) {
	stat := stats[key]
	if positive {
		stat.Positive += contribution
	} else {
		stat.Negative += contribution
	}
	stat.Count++
	stats[key] = stat
}
