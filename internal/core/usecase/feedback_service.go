package usecase

import (
	"context"
	"fmt"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/ports"
)

const (
	DefaultFeedbackLimit = 100
	MaxFeedbackLimit     = 1000
)

// FeedbackService lists stored feedback for project owners.
type FeedbackService struct {
	guard    *OwnershipGuard
	feedback ports.FeedbackRepository
}

func NewFeedbackService(guard *OwnershipGuard, feedback ports.FeedbackRepository) *FeedbackService {
	return &FeedbackService{guard: guard, feedback: feedback}
}

// List returns feedback newest first across the principal's projects, or for
// one owned project when projectID is set. includeOrphaned adds rows orphaned
// by deleting the principal's projects to the unfiltered listing.
func (s *FeedbackService) List(ctx context.Context, principalID, projectID string, limit, offset int, includeOrphaned bool) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = DefaultFeedbackLimit
	}
	if limit > MaxFeedbackLimit {
		limit = MaxFeedbackLimit
	}
	if offset < 0 {
		offset = 0
	}

	filter := domain.FeedbackFilter{Limit: limit, Offset: offset}
	if projectID != "" {
		if err := s.guard.AssertOwnership(ctx, principalID, projectID); err != nil {
			return nil, err
		}
		filter.ProjectIDs = []string{projectID}
	} else {
		ids, err := s.guard.AuthorizedProjectIDs(ctx, principalID)
		if err != nil {
			return nil, err
		}
		filter.ProjectIDs = ids
		if includeOrphaned {
			filter.OrphansOf = principalID
		}
	}

	items, err := s.feedback.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}
