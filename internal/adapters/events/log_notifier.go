package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

// LogNotifier writes notifications to the structured log. It is the channel
// used when nothing else is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (p *LogNotifier) Notify(_ context.Context, n domain.Notification) error {
	ev := p.log.Info().
		Str("event", EventFeedbackCreated).
		Str("feedback_id", n.FeedbackID).
		Str("project_id", n.ProjectID).
		Str("project_name", n.ProjectName)
	if n.Rating != nil {
		ev = ev.Int("rating", *n.Rating)
	}
	ev.Msg("new feedback")
	return nil
}
