package domain

import "time"

type NotificationState string

const (
	NotificationPending NotificationState = "pending"
	NotificationSent    NotificationState = "sent"
	NotificationFailed  NotificationState = "failed"
)

// Notification is the outbound message describing one ingested feedback row.
type Notification struct {
	FeedbackID  string    `json:"feedback_id"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Message     string    `json:"message"`
	Rating      *int      `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func NotificationFor(fb Feedback, project Project) Notification {
	return Notification{
		FeedbackID:  fb.ID,
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Name:        fb.Name,
		Email:       fb.Email,
		Message:     fb.Message,
		Rating:      fb.Rating,
		CreatedAt:   fb.CreatedAt,
	}
}

// DispatchOutcome reports what the caller saw within the grace period.
// Observed is false when the dispatch was still running at the deadline; it
// then continues in the background and State stays pending.
type DispatchOutcome struct {
	Observed bool
	State    NotificationState
	Err      error
}
