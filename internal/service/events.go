package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholartrack-api/internal/observability"
)

// Event subjects published after successful mutations.
const (
	SubjectSubmissionUploaded     = "submission.uploaded"
	SubjectSubmissionReviewed     = "submission.reviewed"
	SubjectRequirementSetAssigned = "requirement_set.assigned"
)

// EventPublisher fans domain events out to other services.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// SubmissionUploadedEvent is emitted after a file is stored and the submission upserted.
type SubmissionUploadedEvent struct {
	SubmissionID     uint      `json:"submission_id"`
	UserID           uint      `json:"user_id"`
	RequirementID    uint      `json:"requirement_id"`
	RequirementSetID uint      `json:"requirement_set_id"`
	FilePath         string    `json:"file_path"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// SubmissionReviewedEvent is emitted after an approval status change.
type SubmissionReviewedEvent struct {
	SubmissionID   uint      `json:"submission_id"`
	UserID         uint      `json:"user_id"`
	RequirementID  uint      `json:"requirement_id"`
	ApprovalStatus string    `json:"approval_status"`
	ReviewerID     uint      `json:"reviewer_id"`
	ReviewedAt     time.Time `json:"reviewed_at"`
}

// RequirementSetAssignedEvent is emitted after an assignment reconciliation.
type RequirementSetAssignedEvent struct {
	RequirementSetID uint      `json:"requirement_set_id"`
	Added            []uint    `json:"added"`
	Removed          []uint    `json:"removed"`
	AssignedAt       time.Time `json:"assigned_at"`
}

type envelope struct {
	Subject string      `json:"subject"`
	SentAt  time.Time   `json:"sent_at"`
	Data    interface{} `json:"data"`
}

type natsPublisher struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

// NewEventPublisher publishes JSON envelopes on NATS under prefix, carrying the
// request correlation id as a message header. A nil connection yields a
// publisher that only logs at debug level.
func NewEventPublisher(conn *nats.Conn, prefix string, logger zerolog.Logger) EventPublisher {
	return &natsPublisher{
		conn:   conn,
		prefix: strings.Trim(strings.TrimSpace(prefix), "."),
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	fullSubject := subject
	if p.prefix != "" {
		fullSubject = p.prefix + "." + subject
	}

	if p.conn == nil {
		p.logger.Debug().Str("subject", fullSubject).Msg("event publishing disabled")
		return nil
	}

	data, err := json.Marshal(envelope{Subject: subject, SentAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return err
	}

	msg := nats.NewMsg(fullSubject)
	msg.Data = data
	correlationID := observability.CorrelationID(ctx)
	if correlationID != "" {
		msg.Header.Set(observability.CorrelationHeader, correlationID)
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return err
	}

	p.logger.Debug().Str("subject", fullSubject).Str("correlation_id", correlationID).Int("bytes", len(data)).Msg("event published")
	return nil
}

func publishEvent(ctx context.Context, publisher EventPublisher, logger zerolog.Logger, subject string, payload interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, subject, payload); err != nil {
		logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
