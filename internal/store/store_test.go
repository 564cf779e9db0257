// internal/store/store_test.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func TestGetCandidate_DecodesDocument(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	doc, _ := json.Marshal(models.Candidate{
		Sectors: []string{"fintech"},
		Stage:   "seed",
		Team:    models.TeamProfile{TechnicalCofounders: 2},
	})
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, name, data, created_at, updated_at FROM candidates`).
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "data", "created_at", "updated_at"}).
			AddRow("cand-1", "Acme", doc, now, now))

	c, err := s.GetCandidate(context.Background(), "cand-1")
	require.NoError(t, err)

	assert.Equal(t, "cand-1", c.ID)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, []string{"fintech"}, c.Sectors)
	assert.Equal(t, 2, c.Team.TechnicalCofounders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCandidate_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectQuery(`SELECT id, name, data, created_at, updated_at FROM candidates`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetCandidate(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCandidateNotFound, apperrors.Normalize(err).Code)
}

func TestGetCounterparty_DecodesPreferences(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	doc, _ := json.Marshal(models.Counterparty{Sectors: []string{"saas"}})
	prefs, _ := json.Marshal(models.LearnedPreferenceSet{
		Sectors:    map[string]models.AffinityStat{"saas": {Positive: 2, Count: 3}},
		EventCount: 3,
		Confidence: 0.15,
	})
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, name, data, preferences, created_at, updated_at FROM counterparties`).
		WithArgs("cp-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "data", "preferences", "created_at", "updated_at"}).
			AddRow("cp-1", "Fund", doc, prefs, now, now))

	cp, err := s.GetCounterparty(context.Background(), "cp-1")
	require.NoError(t, err)

	assert.Equal(t, "cp-1", cp.ID)
	require.NotNil(t, cp.Preferences)
	assert.Equal(t, 3, cp.Preferences.EventCount)
	assert.Equal(t, 3, cp.Preferences.Sectors["saas"].Count)
}

func TestUpsertMatch_ReturnsPersistedState(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	created := time.Now().UTC().Add(-24 * time.Hour)
	updated := time.Now().UTC()

	// The row existed: created_at and status come back unchanged.
	mock.ExpectQuery(`INSERT INTO matches`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "created_at", "updated_at"}).
			AddRow("match-1", "contacted", created, updated))

	m := &models.Match{
		CandidateID:    "cand-1",
		CounterpartyID: "cp-1",
		Score:          73,
		Confidence:     models.ConfidenceHigh,
	}
	require.NoError(t, s.UpsertMatch(context.Background(), m))

	assert.Equal(t, "match-1", m.ID)
	assert.Equal(t, models.MatchStatusContacted, m.Status)
	assert.Equal(t, created, m.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertMatch_WrapsFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectQuery(`INSERT INTO matches`).WillReturnError(assert.AnError)

	err := s.UpsertMatch(context.Background(), &models.Match{CandidateID: "a", CounterpartyID: "b"})
	require.Error(t, err)

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeMatchUpsertFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestAppendEvent_MovesMatchStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO interaction_events`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE matches SET status`).
		WithArgs("match-1", models.MatchStatusContacted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	evt := &models.InteractionEvent{
		MatchID:          "match-1",
		CandidateID:      "cand-1",
		CounterpartyID:   "cp-1",
		EventType:        models.EventContacted,
		CandidateSectors: []string{"fintech"},
		CandidateStage:   "seed",
	}
	require.NoError(t, s.AppendEvent(context.Background(), evt))
	assert.NotEmpty(t, evt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendEvent_RejectsUnknownType(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	err := s.AppendEvent(context.Background(), &models.InteractionEvent{EventType: "liked"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidJobPayload, apperrors.Normalize(err).Code)
}

func TestFetchPendingJobs_OldestFirst(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, candidate_id, status, attempts, COALESCE\(error_message, ''\), created_at, processed_at\s+FROM match_queue WHERE status = 'pending' ORDER BY created_at ASC`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "candidate_id", "status", "attempts", "error_message", "created_at", "processed_at"}).
			AddRow("job-1", "cand-1", "pending", 0, "", now.Add(-time.Hour), nil).
			AddRow("job-2", "cand-2", "pending", 1, "timeout", now, nil))

	jobs, err := s.FetchPendingJobs(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, jobs, 2)
	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, 1, jobs[1].Attempts)
	assert.Nil(t, jobs[0].ProcessedAt)
}

func TestMarkJobProcessing_AlreadyClaimed(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectQuery(`UPDATE match_queue SET status = 'processing'`).
		WithArgs("job-1").
		WillReturnError(sql.ErrNoRows)

	job, err := s.MarkJobProcessing(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestFailJob_TerminalVsRetry(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectExec(`UPDATE match_queue SET status`).
		WithArgs("job-1", models.JobStatusFailed, "boom").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.FailJob(context.Background(), "job-1", "boom", true))

	mock.ExpectExec(`UPDATE match_queue SET status`).
		WithArgs("job-2", models.JobStatusPending, "transient").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.FailJob(context.Background(), "job-2", "transient", false))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLearnedPreferences_MissingCounterparty(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectExec(`UPDATE counterparties SET preferences`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SaveLearnedPreferences(context.Background(), "ghost", &models.LearnedPreferenceSet{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCounterpartyNotFound, apperrors.Normalize(err).Code)
}

func TestQueueStats(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	s := NewPostgresStore(db, logger.NewNoOpLogger())

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM match_queue GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 4).
			AddRow("completed", 10).
			AddRow("failed", 1))

	stats, err := s.QueueStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats["pending"])
	assert.Equal(t, 10, stats["completed"])
	assert.Equal(t, 1, stats["failed"])
}
