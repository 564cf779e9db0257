// internal/engine/combine/handler.go
package combine

import (
	"context"
	"math"
	"time"

	apperrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/engine/fit"
	"match-engine/internal/engine/preference"
	"match-engine/internal/engine/quality"
	"match-engine/internal/models"
	"match-engine/internal/notify"
	"match-engine/internal/similarity"
	"match-engine/internal/store"
)

// Handler runs the full scoring pipeline: intrinsic quality, structural fit,
// semantic similarity and learned preference, combined into one [0,100]
// score per pair.
type Handler struct {
	config   *Config
	store    store.Store
	provider similarity.Provider
	scorer   *quality.Scorer
	analyzer *fit.Analyzer
	learner  *preference.Learner
	notifier notify.Publisher
	logger   logger.Logger
}

func NewHandler(cfg *Config, st store.Store, provider similarity.Provider, notifier notify.Publisher, log logger.Logger) *Handler {
	cfg = cfg.withDefaults()
	if notifier == nil {
		notifier = notify.NoopPublisher{}
	}
	return &Handler{
		config:   cfg,
		store:    st,
		provider: provider,
		scorer:   quality.NewScorer(cfg.Rules),
		analyzer: fit.NewAnalyzer(cfg.Rules),
		learner:  preference.NewLearner(cfg.Rules),
		notifier: notifier,
		logger:   log,
	}
}

// ScoreCandidate scores one candidate against its counterparty pool. The
// intrinsic quality tier bounds how many counterparties are considered.
func (h *Handler) ScoreCandidate(ctx context.Context, candidateID string) (*CandidateResult, error) {
	candidate, err := h.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	q := h.scorer.Score(candidate)

	limit := q.MatchCount
	if limit > h.config.MaxMatches {
		limit = h.config.MaxMatches
	}

	counterparties, err := h.store.ListCounterparties(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := &CandidateResult{CandidateID: candidateID}
	for _, cp := range counterparties {
		pair := h.scorePair(ctx, candidate, q, cp)
		result.Considered++
		if pair.Persisted {
			result.Persisted++
		}
		result.Pairs = append(result.Pairs, pair)
	}

	h.logger.Info("candidate scoring pass complete", map[string]interface{}{
		"candidateId": candidateID,
		"qualityTier": q.Tier,
		"considered":  result.Considered,
		"persisted":   result.Persisted,
	})
	return result, nil
}

// ScorePair scores exactly one candidate/counterparty pair.
func (h *Handler) ScorePair(ctx context.Context, candidateID, counterpartyID string) (*PairScore, error) {
	candidate, err := h.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	cp, err := h.store.GetCounterparty(ctx, counterpartyID)
	if err != nil {
		return nil, err
	}
	return h.scorePair(ctx, candidate, h.scorer.Score(candidate), cp), nil
}

func (h *Handler) scorePair(ctx context.Context, candidate *models.Candidate, q quality.Result, cp *models.Counterparty) *PairScore {
	pair := &PairScore{
		CandidateID:    candidate.ID,
		CounterpartyID: cp.ID,
		Quality:        q,
	}

	fitResult := h.analyzer.Analyze(candidate, cp)
	pair.Fit = fitResult

	sim, simAvailable, degraded := h.similarityFor(ctx, candidate, cp, pair)

	// Learned preference is rebuilt from the decayed event history each pass.
	prefs := h.refreshPreferences(ctx, cp)
	delta := h.learner.Adjustment(prefs, candidate.Sectors, candidate.Stage)

	thresholds := h.config.Rules.Thresholds
	if simAvailable && sim < thresholds.SimilarityAdmission {
		pair.Reasoning = append(pair.Reasoning, "Below similarity admission threshold")
		pair.Breakdown = breakdown(sim, q, fitResult, delta)
		return pair
	}

	w := h.config.Rules.CombineWeights
	base := w.Similarity*sim +
		w.Quality*(q.Total/10) +
		w.Fit*fitResult.Score +
		w.HistoricalFit*fitResult.HistoricalBonus

	raw := base*100 + delta
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}
	pair.Score = int(math.Round(raw))
	pair.Breakdown = breakdown(sim, q, fitResult, delta)
	pair.Degraded = degraded

	learnerConfidence := 0.0
	if prefs != nil {
		learnerConfidence = prefs.Confidence
	}
	pair.Confidence = h.confidence(raw, candidate, cp, simAvailable, learnerConfidence)

	pair.Reasoning = append(pair.Reasoning, q.Reasoning...)
	pair.Reasoning = append(pair.Reasoning, fitResult.Reasoning...)

	metrics.MatchScores.Observe(float64(pair.Score))

	if pair.Score >= h.config.MinScore {
		h.persistAndNotify(ctx, pair)
	}
	return pair
}

// similarityFor resolves the semantic similarity component. A missing
// embedding degrades to zero similarity with a note instead of failing the
// pair; so does a similarity service failure.
func (h *Handler) similarityFor(ctx context.Context, candidate *models.Candidate, cp *models.Counterparty, pair *PairScore) (sim float64, available bool, degraded bool) {
	s, err := h.provider.Similarity(ctx, candidate.Embedding, cp.Embedding)
	if err == nil {
		return s, true, false
	}

	stdErr := apperrors.Normalize(err)
	switch stdErr.Code {
	case apperrors.ErrCodeMissingEmbedding:
		pair.Reasoning = append(pair.Reasoning, "Semantic similarity unavailable (no embedding)")
	default:
		pair.Reasoning = append(pair.Reasoning, "Semantic similarity unavailable (service error)")
		h.logger.Warn("similarity lookup failed", map[string]interface{}{
			"candidateId":    candidate.ID,
			"counterpartyId": cp.ID,
			"errorCode":      string(stdErr.Code),
		})
	}
	return 0, false, true
}

func (h *Handler) refreshPreferences(ctx context.Context, cp *models.Counterparty) *models.LearnedPreferenceSet {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -h.config.Rules.Preference.LookbackDays)

	events, err := h.store.ListEvents(ctx, cp.ID, since)
	if err != nil {
		h.logger.Warn("event history unavailable, using stored preferences", map[string]interface{}{
			"counterpartyId": cp.ID,
			"error":          err.Error(),
		})
		return cp.Preferences
	}

	set := h.learner.Learn(events, now)
	if err := h.store.SaveLearnedPreferences(ctx, cp.ID, set); err != nil {
		h.logger.Warn("failed to persist learned preferences", map[string]interface{}{
			"counterpartyId": cp.ID,
			"error":          err.Error(),
		})
	}
	return set
}

// confidence grades the score by the evidence behind it, not its magnitude
// alone. Profile completeness dominates; similarity availability and the
// learned-preference sample add the rest.
func (h *Handler) confidence(raw float64, candidate *models.Candidate, cp *models.Counterparty, simAvailable bool, learnerConfidence float64) models.ConfidenceLevel {
	simEvidence := 0.0
	if simAvailable {
		simEvidence = 1.0
	}
	evidence := 0.35*candidate.Completeness() +
		0.35*cp.Completeness() +
		0.15*simEvidence +
		0.15*learnerConfidence

	t := h.config.Rules.Thresholds
	switch {
	case evidence >= t.HighConfidenceEvidence && raw >= t.HighConfidenceScore:
		return models.ConfidenceHigh
	case evidence >= t.MediumEvidence || raw >= t.MediumScore:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func (h *Handler) persistAndNotify(ctx context.Context, pair *PairScore) {
	match := &models.Match{
		CandidateID:    pair.CandidateID,
		CounterpartyID: pair.CounterpartyID,
		Score:          pair.Score,
		Confidence:     pair.Confidence,
		Breakdown:      pair.Breakdown,
		Reasoning:      pair.Reasoning,
	}
	if err := h.store.UpsertMatch(ctx, match); err != nil {
		h.logger.Error("match upsert failed", map[string]interface{}{
			"candidateId":    pair.CandidateID,
			"counterpartyId": pair.CounterpartyID,
			"error":          err.Error(),
		})
		return
	}
	pair.Persisted = true
	metrics.MatchesPersisted.WithLabelValues(string(pair.Confidence)).Inc()

	if pair.Confidence == models.ConfidenceHigh && pair.Score >= h.config.NotifyMinScore {
		evt := notify.MatchEvent{
			MatchID:        match.ID,
			CandidateID:    pair.CandidateID,
			CounterpartyID: pair.CounterpartyID,
			Score:          pair.Score,
			Confidence:     string(pair.Confidence),
			OccurredAt:     time.Now().UTC(),
		}
		if err := h.notifier.PublishHighConfidence(ctx, evt); err != nil {
			h.logger.Warn("match event publish failed", map[string]interface{}{
				"matchId": match.ID,
				"error":   err.Error(),
			})
		}
	}
}

func breakdown(sim float64, q quality.Result, f fit.Result, delta float64) models.ScoreBreakdown {
	return models.ScoreBreakdown{
		Similarity:      sim,
		Quality:         q.Total / 10,
		Fit:             f.Score,
		HistoricalFit:   f.HistoricalBonus,
		PreferenceDelta: delta,
	}
}
