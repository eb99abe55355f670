package service

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// EventPublisher publishes domain events to the message bus. *nats.Conn
// satisfies it directly.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// SubmissionEvent is the wire shape of submission lifecycle notifications.
type SubmissionEvent struct {
	SubmissionID uint      `json:"submission_id"`
	AssignmentID uint      `json:"assignment_id"`
	UserID       uint      `json:"user_id"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// publishSubmissionEvent is best effort: a bus failure is logged and never
// fails the operation that triggered it.
func publishSubmissionEvent(publisher EventPublisher, subject string, logger zerolog.Logger, event SubmissionEvent) {
	if publisher == nil || subject == "" {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := publisher.Publish(subject, payload); err != nil {
		logger.Warn().Err(err).Uint("submission_id", event.SubmissionID).Msg("failed to publish submission event")
	}
}
