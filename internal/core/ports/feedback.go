package ports

import (
	"context"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type FeedbackRepository interface {
	Create(ctx context.Context, fb domain.Feedback) (domain.Feedback, error)
	List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error)
	CountByProject(ctx context.Context, projectIDs []string) (map[string]int, error)
}

type InsightsStore interface {
	AggregateFeedback(ctx context.Context, scope domain.InsightsScope, windows domain.RecencyWindows) ([]domain.FeedbackAggregate, error)
}
