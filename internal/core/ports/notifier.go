package ports

import (
	"context"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

// Notifier delivers one notification over an outbound channel.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}
