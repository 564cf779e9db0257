// internal/models/event.go
package models

import "time"

// EventType classifies behavioral feedback, ordered by commitment strength.
type EventType string

const (
	EventViewed           EventType = "viewed"
	EventSaved            EventType = "saved"
	EventContacted        EventType = "contacted"
	EventMeetingScheduled EventType = "meeting_scheduled"
	EventConverted        EventType = "converted"
	EventPassed           EventType = "passed"
	EventReported         EventType = "reported"
)

// InteractionEvent is an append-only behavioral signal tied to a Match.
// Sectors and stage are snapshotted from the candidate at event time so
// preference learning is not skewed by later enrichment.
type InteractionEvent struct {
	ID               string    `json:"id"`
	MatchID          string    `json:"matchId"`
	CandidateID      string    `json:"candidateId"`
	CounterpartyID   string    `json:"counterpartyId"`
	EventType        EventType `json:"eventType"`
	CandidateSectors []string  `json:"candidateSectors,omitempty"`
	CandidateStage   string    `json:"candidateStage,omitempty"`
	OccurredAt       time.Time `json:"occurredAt"`
}

// StatusForEvent maps a feedback event to the match status it implies.
// The second return is false for event types that do not move status.
func StatusForEvent(t EventType) (MatchStatus, bool) {
	switch t {
	case EventViewed:
		return MatchStatusViewed, true
	case EventSaved:
		return MatchStatusInQueue, true
	case EventContacted, EventMeetingScheduled, EventConverted:
		return MatchStatusContacted, true
	case EventPassed, EventReported:
		return MatchStatusPassed, true
	default:
		return "", false
	}
}

// ValidEventType reports whether t is a known feedback event type.
func ValidEventType(t EventType) bool {
	switch t {
	case EventViewed, EventSaved, EventContacted, EventMeetingScheduled,
		EventConverted, EventPassed, EventReported:
		return true
	default:
		return false
	}
}
