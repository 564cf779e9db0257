// Package monitor watches the produced match population for statistical
// drift: similarity distribution shape, score tier mix, and matches whose
// similarity and quality signals contradict each other.
package monitor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
	"match-engine/internal/store"
	"match-engine/pkg/rules"
)

const maxAnomaliesPerType = 10

// Analyzer computes drift reports over the recent match population.
type Analyzer struct {
	store      store.Store
	rules      *rules.Ruleset
	windowDays int
	logger     logger.Logger
}

func NewAnalyzer(st store.Store, rs *rules.Ruleset, windowDays int, log logger.Logger) *Analyzer {
	if rs == nil {
		rs = rules.Default()
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	return &Analyzer{store: st, rules: rs, windowDays: windowDays, logger: log}
}

// Analyze scans the window and produces a report. An empty population is not
// an error: the report is neutral and keeps the current admission threshold.
func (a *Analyzer) Analyze(ctx context.Context) (*Report, error) {
	since := time.Now().UTC().AddDate(0, 0, -a.windowDays)
	matches, err := a.store.ListMatches(ctx, since)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:        time.Now().UTC(),
		WindowDays:         a.windowDays,
		Population:         len(matches),
		TierDistribution:   make(map[string]int),
		SuggestedThreshold: a.rules.Thresholds.SimilarityAdmission,
	}
	if len(matches) == 0 {
		return report, nil
	}

	sims := make([]float64, 0, len(matches))
	for _, m := range matches {
		sims = append(sims, m.Breakdown.Similarity)
		report.TierDistribution[models.QualityTier(m.Score)]++
	}

	report.SimilarityMean = mean(sims)
	report.SimilarityMedian = median(sims)
	report.SimilarityStdDev = stdDev(sims, report.SimilarityMean)

	report.Anomalies = a.findAnomalies(matches, report.SimilarityMean, report.SimilarityStdDev)
	for _, anomaly := range report.Anomalies {
		metrics.AnomaliesDetected.WithLabelValues(anomaly.Type).Inc()
	}

	report.SuggestedThreshold = a.suggestThreshold(report.SimilarityMean, report.SimilarityStdDev)
	metrics.SuggestedThreshold.Set(report.SuggestedThreshold)

	report.WeeklyTrend = weeklyTrend(matches)

	a.logger.Info("match quality scan complete", map[string]interface{}{
		"population":         report.Population,
		"similarityMean":     report.SimilarityMean,
		"similarityStdDev":   report.SimilarityStdDev,
		"anomalies":          len(report.Anomalies),
		"suggestedThreshold": report.SuggestedThreshold,
	})
	return report, nil
}

// findAnomalies flags matches more than one standard deviation from the
// population mean whose quality signal points the other way. Each type is
// capped so one bad batch cannot flood the report.
func (a *Analyzer) findAnomalies(matches []*models.Match, simMean, simStdDev float64) []Anomaly {
	var lowSim, highSim []Anomaly

	for _, m := range matches {
		sim := m.Breakdown.Similarity
		qualityScore := m.Breakdown.Quality * 10

		if qualityScore >= 7 && sim < simMean-simStdDev && len(lowSim) < maxAnomaliesPerType {
			lowSim = append(lowSim, Anomaly{
				MatchID:        m.ID,
				CandidateID:    m.CandidateID,
				CounterpartyID: m.CounterpartyID,
				Type:           AnomalyLowSimHighQuality,
				Similarity:     sim,
				Quality:        qualityScore,
			})
		}
		if qualityScore < 5 && sim > simMean+simStdDev && len(highSim) < maxAnomaliesPerType {
			highSim = append(highSim, Anomaly{
				MatchID:        m.ID,
				CandidateID:    m.CandidateID,
				CounterpartyID: m.CounterpartyID,
				Type:           AnomalyHighSimLowQuality,
				Similarity:     sim,
				Quality:        qualityScore,
			})
		}
	}
	return append(lowSim, highSim...)
}

// suggestThreshold nudges the similarity admission threshold toward the
// observed distribution, bounded to [0.2, 0.6].
func (a *Analyzer) suggestThreshold(simMean, simStdDev float64) float64 {
	suggested := a.rules.Thresholds.SimilarityAdmission
	if simMean > 0.5 {
		suggested = 0.40
	} else if simMean < 0.35 {
		suggested = 0.25
	}
	if simStdDev > 0.2 {
		suggested += 0.05
	}
	if suggested < 0.2 {
		suggested = 0.2
	}
	if suggested > 0.6 {
		suggested = 0.6
	}
	return suggested
}

// RunPeriodic re-scans on the given interval until the context is done.
func (a *Analyzer) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Analyze(ctx); err != nil {
				a.logger.Error("match quality scan failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

func weeklyTrend(matches []*models.Match) []WeekBucket {
	type acc struct {
		count    int
		score    float64
		sim      float64
	}
	buckets := make(map[string]*acc)
	for _, m := range matches {
		year, week := m.UpdatedAt.ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		b := buckets[key]
		if b == nil {
			b = &acc{}
			buckets[key] = b
		}
		b.count++
		b.score += float64(m.Score)
		b.sim += m.Breakdown.Similarity
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]WeekBucket, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		out = append(out, WeekBucket{
			Week:           k,
			Matches:        b.count,
			MeanScore:      b.score / float64(b.count),
			MeanSimilarity: b.sim / float64(b.count),
		})
	}
	return out
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stdDev is the population standard deviation.
func stdDev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
