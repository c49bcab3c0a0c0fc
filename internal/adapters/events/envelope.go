package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

// EventFeedbackCreated names the notification kind in headers and payloads.
const EventFeedbackCreated = "feedback.created"

// envelope is the wire form shared by the webhook and Redis channels.
// DeliveryID is unique per attempt so receivers can drop duplicates.
type envelope struct {
	Event        string              `json:"event"`
	DeliveryID   string              `json:"delivery_id"`
	SentAt       time.Time           `json:"sent_at"`
	Notification domain.Notification `json:"notification"`
}

func newEnvelope(n domain.Notification, now time.Time) envelope {
	return envelope{
		Event:        EventFeedbackCreated,
		DeliveryID:   uuid.NewString(),
		SentAt:       now.UTC(),
		Notification: n,
	}
}

func (e envelope) marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return data, nil
}
