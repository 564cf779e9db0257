// Package store persists candidates, counterparties, matches, feedback
// events and the scoring queue in PostgreSQL. Entity documents live in
// JSONB; match and queue state live in real columns so they can be
// filtered and ordered in SQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

const queryTimeout = 10 * time.Second

// Store is the persistence boundary of the engine.
type Store interface {
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	GetCounterparty(ctx context.Context, id string) (*models.Counterparty, error)
	ListCounterparties(ctx context.Context, limit int) ([]*models.Counterparty, error)
	SaveLearnedPreferences(ctx context.Context, counterpartyID string, set *models.LearnedPreferenceSet) error

	UpsertMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, candidateID, counterpartyID string) (*models.Match, error)
	ListMatches(ctx context.Context, since time.Time) ([]*models.Match, error)

	AppendEvent(ctx context.Context, evt *models.InteractionEvent) error
	ListEvents(ctx context.Context, counterpartyID string, since time.Time) ([]models.InteractionEvent, error)

	EnqueueScoring(ctx context.Context, candidateID string) (*models.QueueJob, error)
	FetchPendingJobs(ctx context.Context, limit int) ([]*models.QueueJob, error)
	MarkJobProcessing(ctx context.Context, jobID string) (*models.QueueJob, error)
	CompleteJob(ctx context.Context, jobID string) error
	FailJob(ctx context.Context, jobID, errorMessage string, terminal bool) error
	QueueStats(ctx context.Context) (map[string]int, error)
}

// PostgresStore implements Store over database/sql.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: log}
}

// --- Entities ---

func (s *PostgresStore) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, name, data, created_at, updated_at FROM candidates WHERE id = $1`

	var (
		c    models.Candidate
		data []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &data, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewCandidateNotFoundError(id)
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewQueryTimeoutError("get_candidate")
		}
		return nil, apperrors.NewQueryExecutionFailedError("get_candidate", err)
	}

	if err := unmarshalEntity(data, &c, c.ID, c.Name, c.CreatedAt, c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) GetCounterparty(ctx context.Context, id string) (*models.Counterparty, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, name, data, preferences, created_at, updated_at FROM counterparties WHERE id = $1`

	cp, err := scanCounterparty(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewCounterpartyNotFoundError(id)
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewQueryTimeoutError("get_counterparty")
		}
		return nil, apperrors.NewQueryExecutionFailedError("get_counterparty", err)
	}
	return cp, nil
}

func (s *PostgresStore) ListCounterparties(ctx context.Context, limit int) ([]*models.Counterparty, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, name, data, preferences, created_at, updated_at
		FROM counterparties ORDER BY created_at ASC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_counterparties", err)
	}
	defer rows.Close()

	var out []*models.Counterparty
	for rows.Next() {
		cp, err := scanCounterparty(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_counterparties", err)
		}
		out = append(out, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_counterparties", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveLearnedPreferences(ctx context.Context, counterpartyID string, set *models.LearnedPreferenceSet) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	payload, err := json.Marshal(set)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	query := `UPDATE counterparties SET preferences = $2, updated_at = NOW() WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, counterpartyID, payload)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("save_preferences", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewCounterpartyNotFoundError(counterpartyID)
	}
	return nil
}

// --- Matches ---

// UpsertMatch inserts or refreshes the unique (candidate_id, counterparty_id)
// row. Re-scoring replaces score, confidence, breakdown and reasoning but
// preserves created_at and any downstream status.
func (s *PostgresStore) UpsertMatch(ctx context.Context, m *models.Match) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	breakdown, err := json.Marshal(m.Breakdown)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	reasoning, err := json.Marshal(m.Reasoning)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = models.MatchStatusSuggested
	}

	query := `INSERT INTO matches
			(id, candidate_id, counterparty_id, score, confidence, status, breakdown, reasoning, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (candidate_id, counterparty_id) DO UPDATE SET
			score = EXCLUDED.score,
			confidence = EXCLUDED.confidence,
			breakdown = EXCLUDED.breakdown,
			reasoning = EXCLUDED.reasoning,
			updated_at = NOW()
		RETURNING id, status, created_at, updated_at`

	err = s.db.QueryRowContext(ctx, query,
		m.ID, m.CandidateID, m.CounterpartyID, m.Score, m.Confidence, m.Status, breakdown, reasoning,
	).Scan(&m.ID, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return apperrors.NewMatchUpsertFailedError(err)
	}
	return nil
}

func (s *PostgresStore) GetMatch(ctx context.Context, candidateID, counterpartyID string) (*models.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, candidate_id, counterparty_id, score, confidence, status, breakdown, reasoning, created_at, updated_at
		FROM matches WHERE candidate_id = $1 AND counterparty_id = $2`

	m, err := scanMatch(s.db.QueryRowContext(ctx, query, candidateID, counterpartyID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get_match", err)
	}
	return m, nil
}

func (s *PostgresStore) ListMatches(ctx context.Context, since time.Time) ([]*models.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, candidate_id, counterparty_id, score, confidence, status, breakdown, reasoning, created_at, updated_at
		FROM matches WHERE updated_at >= $1 ORDER BY updated_at ASC`

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_matches", err)
	}
	defer rows.Close()

	var out []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_matches", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_matches", err)
	}
	return out, nil
}

// --- Feedback events ---

// AppendEvent records one immutable feedback event and, when the event type
// implies a status transition, moves the parent match in the same transaction.
func (s *PostgresStore) AppendEvent(ctx context.Context, evt *models.InteractionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if !models.ValidEventType(evt.EventType) {
		return apperrors.NewInvalidJobPayloadError("unknown event type: " + string(evt.EventType))
	}
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	sectors, err := json.Marshal(evt.CandidateSectors)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("append_event", err)
	}
	defer tx.Rollback()

	insert := `INSERT INTO interaction_events
			(id, match_id, candidate_id, counterparty_id, event_type, candidate_sectors, candidate_stage, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, insert,
		evt.ID, evt.MatchID, evt.CandidateID, evt.CounterpartyID,
		evt.EventType, sectors, evt.CandidateStage, evt.OccurredAt,
	); err != nil {
		return apperrors.NewQueryExecutionFailedError("append_event", err)
	}

	if status, ok := models.StatusForEvent(evt.EventType); ok {
		update := `UPDATE matches SET status = $2, updated_at = NOW() WHERE id = $1`
		if _, err := tx.ExecContext(ctx, update, evt.MatchID, status); err != nil {
			return apperrors.NewQueryExecutionFailedError("append_event", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewQueryExecutionFailedError("append_event", err)
	}
	return nil
}

func (s *PostgresStore) ListEvents(ctx context.Context, counterpartyID string, since time.Time) ([]models.InteractionEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, match_id, candidate_id, counterparty_id, event_type, candidate_sectors, candidate_stage, occurred_at
		FROM interaction_events WHERE counterparty_id = $1 AND occurred_at >= $2 ORDER BY occurred_at ASC`

	rows, err := s.db.QueryContext(ctx, query, counterpartyID, since)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_events", err)
	}
	defer rows.Close()

	var out []models.InteractionEvent
	for rows.Next() {
		var (
			evt     models.InteractionEvent
			sectors []byte
		)
		if err := rows.Scan(&evt.ID, &evt.MatchID, &evt.CandidateID, &evt.CounterpartyID,
			&evt.EventType, &sectors, &evt.CandidateStage, &evt.OccurredAt); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_events", err)
		}
		if len(sectors) > 0 {
			if err := json.Unmarshal(sectors, &evt.CandidateSectors); err != nil {
				return nil, apperrors.NewInternalError(err)
			}
		}
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_events", err)
	}
	return out, nil
}

// --- Scoring queue ---

func (s *PostgresStore) EnqueueScoring(ctx context.Context, candidateID string) (*models.QueueJob, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	job := &models.QueueJob{
		ID:          uuid.New().String(),
		CandidateID: candidateID,
		Status:      models.JobStatusPending,
	}

	query := `INSERT INTO match_queue (id, candidate_id, status, attempts, created_at)
		VALUES ($1, $2, $3, 0, NOW()) RETURNING created_at`
	if err := s.db.QueryRowContext(ctx, query, job.ID, job.CandidateID, job.Status).Scan(&job.CreatedAt); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("enqueue_scoring", err)
	}
	return job, nil
}

// FetchPendingJobs returns up to limit pending jobs, oldest first.
func (s *PostgresStore) FetchPendingJobs(ctx context.Context, limit int) ([]*models.QueueJob, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT id, candidate_id, status, attempts, COALESCE(error_message, ''), created_at, processed_at
		FROM match_queue WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("fetch_pending_jobs", err)
	}
	defer rows.Close()

	var out []*models.QueueJob
	for rows.Next() {
		var job models.QueueJob
		if err := rows.Scan(&job.ID, &job.CandidateID, &job.Status, &job.Attempts,
			&job.ErrorMessage, &job.CreatedAt, &job.ProcessedAt); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("fetch_pending_jobs", err)
		}
		out = append(out, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("fetch_pending_jobs", err)
	}
	return out, nil
}

// MarkJobProcessing claims a pending job and increments its attempt counter.
// The status predicate keeps a job from being claimed twice.
func (s *PostgresStore) MarkJobProcessing(ctx context.Context, jobID string) (*models.QueueJob, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `UPDATE match_queue SET status = 'processing', attempts = attempts + 1
		WHERE id = $1 AND status = 'pending'
		RETURNING id, candidate_id, status, attempts, COALESCE(error_message, ''), created_at, processed_at`

	var job models.QueueJob
	err := s.db.QueryRowContext(ctx, query, jobID).Scan(&job.ID, &job.CandidateID, &job.Status,
		&job.Attempts, &job.ErrorMessage, &job.CreatedAt, &job.ProcessedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("mark_job_processing", err)
	}
	return &job, nil
}

func (s *PostgresStore) CompleteJob(ctx context.Context, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `UPDATE match_queue SET status = 'completed', error_message = NULL, processed_at = NOW()
		WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, jobID); err != nil {
		return apperrors.NewQueryExecutionFailedError("complete_job", err)
	}
	return nil
}

// FailJob records the failure reason. Terminal failures land in 'failed';
// retryable ones return to 'pending' for the next poll.
func (s *PostgresStore) FailJob(ctx context.Context, jobID, errorMessage string, terminal bool) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	status := models.JobStatusPending
	if terminal {
		status = models.JobStatusFailed
	}

	query := `UPDATE match_queue SET status = $2, error_message = $3, processed_at = NOW()
		WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, query, jobID, status, errorMessage); err != nil {
		return apperrors.NewQueryExecutionFailedError("fail_job", err)
	}
	return nil
}

func (s *PostgresStore) QueueStats(ctx context.Context) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT status, COUNT(*) FROM match_queue GROUP BY status`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("queue_stats", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("queue_stats", err)
		}
		stats[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("queue_stats", err)
	}
	return stats, nil
}

// --- Row scanning helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCounterparty(row rowScanner) (*models.Counterparty, error) {
	var (
		cp          models.Counterparty
		data        []byte
		preferences []byte
	)
	if err := row.Scan(&cp.ID, &cp.Name, &data, &preferences, &cp.CreatedAt, &cp.UpdatedAt); err != nil {
		return nil, err
	}

	id, name, createdAt, updatedAt := cp.ID, cp.Name, cp.CreatedAt, cp.UpdatedAt
	if len(data) > 0 {
		if err := json.Unmarshal(data, &cp); err != nil {
			return nil, err
		}
	}
	cp.ID, cp.Name, cp.CreatedAt, cp.UpdatedAt = id, name, createdAt, updatedAt

	if len(preferences) > 0 {
		var set models.LearnedPreferenceSet
		if err := json.Unmarshal(preferences, &set); err != nil {
			return nil, err
		}
		cp.Preferences = &set
	}
	return &cp, nil
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		m         models.Match
		breakdown []byte
		reasoning []byte
	)
	if err := row.Scan(&m.ID, &m.CandidateID, &m.CounterpartyID, &m.Score, &m.Confidence,
		&m.Status, &breakdown, &reasoning, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &m.Breakdown); err != nil {
			return nil, err
		}
	}
	if len(reasoning) > 0 {
		if err := json.Unmarshal(reasoning, &m.Reasoning); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// unmarshalEntity decodes a JSONB document into the entity while keeping the
// authoritative column values for identity and timestamps.
func unmarshalEntity(data []byte, c *models.Candidate, id, name string, createdAt, updatedAt time.Time) error {
	if len(data) > 0 {
		if err := json.Unmarshal(data, c); err != nil {
			return apperrors.NewInternalError(err)
		}
	}
	c.ID, c.Name = id, name
	c.CreatedAt, c.UpdatedAt = createdAt, updatedAt
	return nil
}
