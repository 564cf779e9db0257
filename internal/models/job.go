// internal/models/job.go
package models

import "time"

// JobStatus is the queue state machine:
// pending -> processing -> completed
// processing -> pending (retry, attempts < max)
// processing -> failed  (attempts >= max); terminal except manual re-enqueue.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// QueueJob drives one scoring pass for a candidate.
type QueueJob struct {
	ID           string     `json:"id"`
	CandidateID  string     `json:"candidateId"`
	Status       JobStatus  `json:"status"`
	Attempts     int        `json:"attempts"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ProcessedAt  *time.Time `json:"processedAt,omitempty"`
}
