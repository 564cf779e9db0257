// internal/notify/publisher.go
package notify

import (
	"context"
	"time"

	awsclient "match-engine/internal/common/aws"
	apperrors "match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
)

// MatchEvent is emitted when a match crosses the high-confidence threshold.
// Formatting and delivery of any user-facing notification happen downstream.
type MatchEvent struct {
	EventType      string    `json:"eventType"`
	MatchID        string    `json:"matchId"`
	CandidateID    string    `json:"candidateId"`
	CounterpartyID string    `json:"counterpartyId"`
	Score          int       `json:"score"`
	Confidence     string    `json:"confidence"`
	OccurredAt     time.Time `json:"occurredAt"`
}

const EventHighConfidenceMatch = "match.high_confidence"

// Publisher emits match events to downstream consumers.
type Publisher interface {
	PublishHighConfidence(ctx context.Context, evt MatchEvent) error
}

// SNSPublisher publishes match events to an SNS topic.
type SNSPublisher struct {
	client   *awsclient.SNSClient
	topicARN string
	logger   logger.Logger
}

func NewSNSPublisher(client *awsclient.SNSClient, topicARN string, log logger.Logger) *SNSPublisher {
	return &SNSPublisher{
		client:   client,
		topicARN: topicARN,
		logger:   log,
	}
}

func (p *SNSPublisher) PublishHighConfidence(ctx context.Context, evt MatchEvent) error {
	evt.EventType = EventHighConfidenceMatch

	if err := p.client.PublishJSON(ctx, p.topicARN, evt.EventType, evt); err != nil {
		p.logger.Error("failed to publish match event", map[string]interface{}{
			"matchId": evt.MatchID,
			"error":   err.Error(),
		})
		return apperrors.NewNotificationPublishError(err)
	}

	p.logger.Info("published high-confidence match event", map[string]interface{}{
		"matchId": evt.MatchID,
		"score":   evt.Score,
	})
	return nil
}

// NoopPublisher drops events; used when notifications are disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishHighConfidence(context.Context, MatchEvent) error { return nil }
