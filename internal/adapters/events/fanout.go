package events

import (
	"context"
	"errors"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/ports"
)

// Fanout delivers to every channel in order and joins their errors. One
// failing channel does not stop the others.
type Fanout struct {
	notifiers []ports.Notifier
}

func NewFanout(notifiers ...ports.Notifier) *Fanout {
	return &Fanout{notifiers: notifiers}
}

func (f *Fanout) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, notifier := range f.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
