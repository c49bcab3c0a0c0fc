package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/ports"
)

const (
	DefaultNotifyGrace   = 3 * time.Second
	DefaultNotifyTimeout = 30 * time.Second
)

var ErrDispatcherClosed = errors.New("notification dispatcher closed")

// Dispatcher is the side-effect boundary of ingestion.
type Dispatcher interface {
	Dispatch(ctx context.Context, n domain.Notification) domain.DispatchOutcome
}

// NotificationDispatcher delivers each notification on its own goroutine and
// waits at most the grace period for the result. Deliveries still running at
// the deadline finish in the background; Close waits for them. Failures are
// logged and counted, never retried.
type NotificationDispatcher struct {
	notifier ports.Notifier
	grace    time.Duration
	timeout  time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	sentTotal       atomic.Int64
	failedTotal     atomic.Int64
	backgroundTotal atomic.Int64
}

type NotificationDispatcherMetrics struct {
	SentTotal       int64
	FailedTotal     int64
	BackgroundTotal int64
}

func NewNotificationDispatcher(notifier ports.Notifier, log zerolog.Logger, grace, timeout time.Duration) *NotificationDispatcher {
	if grace <= 0 {
		grace = DefaultNotifyGrace
	}
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &NotificationDispatcher{
		notifier: notifier,
		grace:    grace,
		timeout:  timeout,
		log:      log.With().Str("component", "notification_dispatcher").Logger(),
	}
}

// Dispatch starts delivery detached from ctx's cancellation, so a finished
// request does not abort an in-flight notification.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, n domain.Notification) domain.DispatchOutcome {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.failedTotal.Add(1)
		d.log.Warn().Str("feedback_id", n.FeedbackID).Msg("notification dropped: dispatcher closed")
		return domain.DispatchOutcome{Observed: true, State: domain.NotificationFailed, Err: ErrDispatcherClosed}
	}
	d.wg.Add(1)
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer d.wg.Done()
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		err := d.deliver(dctx, n)
		if err != nil {
			d.failedTotal.Add(1)
			d.log.Error().Err(err).Str("feedback_id", n.FeedbackID).Str("project_id", n.ProjectID).Msg("notification failed")
		} else {
			d.sentTotal.Add(1)
		}
		done <- err
	}()

	timer := time.NewTimer(d.grace)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			return domain.DispatchOutcome{Observed: true, State: domain.NotificationFailed, Err: err}
		}
		return domain.DispatchOutcome{Observed: true, State: domain.NotificationSent}
	case <-timer.C:
		d.backgroundTotal.Add(1)
		d.log.Debug().Str("feedback_id", n.FeedbackID).Dur("grace", d.grace).Msg("notification continues in background")
		return domain.DispatchOutcome{State: domain.NotificationPending}
	}
}

func (d *NotificationDispatcher) deliver(ctx context.Context, n domain.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return d.notifier.Notify(ctx, n)
}

// Close refuses new dispatches and waits for background deliveries.
func (d *NotificationDispatcher) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
	return nil
}

func (d *NotificationDispatcher) Metrics() NotificationDispatcherMetrics {
	return NotificationDispatcherMetrics{
		SentTotal:       d.sentTotal.Load(),
		FailedTotal:     d.failedTotal.Load(),
		BackgroundTotal: d.backgroundTotal.Load(),
	}
}
