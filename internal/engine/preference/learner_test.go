// internal/engine/preference/learner_test.go
package preference

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"match-engine/internal/models"
)

func event(t models.EventType, sectors []string, stage string, age time.Duration, now time.Time) models.InteractionEvent {
	return models.InteractionEvent{
		EventType:        t,
		CandidateSectors: sectors,
		CandidateStage:   stage,
		OccurredAt:       now.Add(-age),
	}
}

func TestLearn_EmptyHistory(t *testing.T) {
	l := NewLearner(nil)
	now := time.Now().UTC()

	set := l.Learn(nil, now)

	assert.Equal(t, 0, set.EventCount)
	assert.Equal(t, 0.0, set.Confidence)
	assert.Empty(t, set.Sectors)

	// And an empty set never moves a score.
	assert.Equal(t, 0.0, l.Adjustment(set, []string{"fintech"}, "seed"))
	assert.Equal(t, 0.0, l.Adjustment(nil, []string{"fintech"}, "seed"))
}

func TestLearn_DecayIsMonotonic(t *testing.T) {
	l := NewLearner(nil)
	now := time.Now().UTC()

	fresh := l.Learn([]models.InteractionEvent{
		event(models.EventConverted, []string{"fintech"}, "seed", 24*time.Hour, now),
	}, now)
	stale := l.Learn([]models.InteractionEvent{
		event(models.EventConverted, []string{"fintech"}, "seed", 180*24*time.Hour, now),
	}, now)

	assert.Greater(t, fresh.Sectors["fintech"].Positive, stale.Sectors["fintech"].Positive)

	// 90-day half-life: a 90-day-old converted event carries half weight.
	half := l.Learn([]models.InteractionEvent{
		event(models.EventConverted, []string{"fintech"}, "seed", 90*24*time.Hour, now),
	}, now)
	assert.InDelta(t, 0.5, half.Sectors["fintech"].Positive, 0.01)
}

func TestLearn_LookbackWindow(t *testing.T) {
	l := NewLearner(nil)
	now := time.Now().UTC()

	set := l.Learn([]models.InteractionEvent{
		event(models.EventConverted, []string{"fintech"}, "seed", 400*24*time.Hour, now),
		event(models.EventSaved, []string{"fintech"}, "seed", 10*24*time.Hour, now),
	}, now)

	// The 400-day-old event is outside the lookback window.
	assert.Equal(t, 1, set.EventCount)
	assert.Equal(t, 1, set.Sectors["fintech"].Count)
}

func TestLearn_NegativeEventsAccumulateSeparately(t *testing.T) {
	l := NewLearner(nil)
	now := time.Now().UTC()

	set := l.Learn([]models.InteractionEvent{
		event(models.EventConverted, []string{"fintech"}, "seed", time.Hour, now),
		event(models.EventPassed, []string{"fintech"}, "seed", time.Hour, now),
		event(models.EventReported, []string{"fintech"}, "seed", time.Hour, now),
	}, now)

	stat := set.Sectors["fintech"]
	assert.InDelta(t, 1.0, stat.Positive, 0.001)
	assert.InDelta(t, 0.8, stat.Negative, 0.001)
	assert.Equal(t, 3, stat.Count)
}

func TestLearn_ConfidenceSaturatesAtTwenty(t *testing.T) {
	l := NewLearner(nil)
	now := time.Now().UTC()

	var events []models.InteractionEvent
	for i := 0; i < 10; i++ {
		events = append(events, event(models.EventViewed, []string{"saas"}, "seed", time.Hour, now))
	}
	halfway := l.Learn(events, now)
	assert.InDelta(t, 0.5, halfway.Confidence, 0.001)

	for i := 0; i < 30; i++ {
		events = append(events, event(models.EventViewed, []string{"saas"}, "seed", time.Hour, now))
	}
	saturated := l.Learn(events, now)
	assert.Equal(t, 1.0, saturated.Confidence)
}

func TestAdjustment_ClampedToMaxAdjustment(t *testing.T) {
	l := NewLearner(nil)
	now := time.Now().UTC()

	var positive, negative []models.InteractionEvent
	for i := 0; i < 40; i++ {
		positive = append(positive, event(models.EventConverted, []string{"fintech"}, "seed", time.Hour, now))
		negative = append(negative, event(models.EventReported, []string{"fintech"}, "seed", time.Hour, now))
	}

	up := l.Adjustment(l.Learn(positive, now), []string{"fintech"}, "seed")
	down := l.Adjustment(l.Learn(negative, now), []string{"fintech"}, "seed")

	assert.LessOrEqual(t, up, 15.0)
	assert.GreaterOrEqual(t, down, -15.0)
	assert.Greater(t, up, 0.0)
	assert.Less(t, down, 0.0)
}

func TestAdjustment_UnmatchedDimensionsAreNeutral(t *testing.T) {
	l := NewLearner(nil)
	now := time.Now().UTC()

	set := l.Learn([]models.InteractionEvent{
		event(models.EventConverted, []string{"fintech"}, "seed", time.Hour, now),
	}, now)

	assert.Equal(t, 0.0, l.Adjustment(set, []string{"biotech"}, "growth"))
}

func TestAdjustment_ScalesWithConfidence(t *testing.T) {
	l := NewLearner(nil)
	now := time.Now().UTC()

	one := l.Learn([]models.InteractionEvent{
		event(models.EventConverted, []string{"fintech"}, "seed", time.Hour, now),
	}, now)

	var many []models.InteractionEvent
	for i := 0; i < 20; i++ {
		many = append(many, event(models.EventConverted, []string{"fintech"}, "seed", time.Hour, now))
	}
	full := l.Learn(many, now)

	small := l.Adjustment(one, []string{"fintech"}, "seed")
	large := l.Adjustment(full, []string{"fintech"}, "seed")

	assert.Greater(t, large, small)
	assert.False(t, math.IsNaN(small))
}
