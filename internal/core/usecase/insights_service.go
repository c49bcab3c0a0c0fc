package usecase

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/ports"
)

// InsightsService computes aggregate reports over a principal's feedback.
type InsightsService struct {
	guard    *OwnershipGuard
	projects ports.ProjectRepository
	store    ports.InsightsStore
	now      func() time.Time
}

type InsightsOption func(*InsightsService)

func WithInsightsClock(now func() time.Time) InsightsOption {
	return func(s *InsightsService) {
		s.now = now
	}
}

func NewInsightsService(guard *OwnershipGuard, projects ports.ProjectRepository, store ports.InsightsStore, opts ...InsightsOption) *InsightsService {
	s := &InsightsService{guard: guard, projects: projects, store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report resolves the principal's scope and computes insights over it,
// optionally narrowed to one owned project. Feedback orphaned by deleting one
// of the principal's projects is counted only when includeOrphaned is set and
// no project filter applies.
func (s *InsightsService) Report(ctx context.Context, principalID, projectID string, includeOrphaned bool) (domain.InsightsReport, error) {
	if projectID != "" {
		if err := s.guard.AssertOwnership(ctx, principalID, projectID); err != nil {
			return domain.InsightsReport{}, err
		}
	}
	ids, err := s.guard.AuthorizedProjectIDs(ctx, principalID)
	if err != nil {
		return domain.InsightsReport{}, err
	}
	scope := domain.InsightsScope{ProjectIDs: ids}
	if projectID == "" && includeOrphaned {
		scope.OrphansOf = principalID
	}
	return s.ComputeInsights(ctx, scope, projectID)
}

// ComputeInsights aggregates feedback over scope. A non-empty filterProjectID
// must be one of scope's project ids and narrows the report to that project.
// An empty scope yields a zeroed report without touching storage.
func (s *InsightsService) ComputeInsights(ctx context.Context, scope domain.InsightsScope, filterProjectID string) (domain.InsightsReport, error) {
	now := s.now().UTC()
	if filterProjectID != "" && !slices.Contains(scope.ProjectIDs, filterProjectID) {
		return domain.InsightsReport{}, domain.ErrForbidden
	}
	if scope.IsEmpty() {
		report := AssembleReport(nil, nil)
		report.GeneratedAt = now
		return report, nil
	}

	var filtered *domain.Project
	totalProjects := 0
	if filterProjectID != "" {
		project, err := s.projects.Get(ctx, filterProjectID)
		if err != nil {
			return domain.InsightsReport{}, fmt.Errorf("load project: %w", err)
		}
		scope = domain.InsightsScope{ProjectIDs: []string{filterProjectID}}
		filtered = &project
		totalProjects = 1
	} else if len(scope.ProjectIDs) > 0 {
		n, err := s.projects.CountActive(ctx, scope.ProjectIDs)
		if err != nil {
			return domain.InsightsReport{}, fmt.Errorf("count projects: %w", err)
		}
		totalProjects = n
	}

	rows, err := s.store.AggregateFeedback(ctx, scope, domain.WindowsAt(now))
	if err != nil {
		return domain.InsightsReport{}, fmt.Errorf("aggregate feedback: %w", err)
	}

	report := AssembleReport(rows, filtered)
	report.TotalProjects = totalProjects
	report.GeneratedAt = now
	return report, nil
}

// AssembleReport folds grouped aggregate rows into a report. When filtered is
// set the per-project breakdown is exactly that project, even with no rows.
// Ratings outside the rating domain count toward the total only.
func AssembleReport(rows []domain.FeedbackAggregate, filtered *domain.Project) domain.InsightsReport {
	var (
		report       domain.InsightsReport
		distribution [domain.MaxRating - domain.MinRating + 1]int
		ratingSum    int
		buckets      = map[string]*domain.ProjectBucket{}
		order        []string
	)

	for _, row := range rows {
		report.TotalFeedback += row.Count
		report.Recent7Days += row.Recent7
		report.Recent30Days += row.Recent30

		if row.Rating != nil && *row.Rating >= domain.MinRating && *row.Rating <= domain.MaxRating {
			distribution[*row.Rating-domain.MinRating] += row.Count
			report.RatedFeedbackCount += row.Count
			ratingSum += *row.Rating * row.Count
		}

		key, _ := row.Project.ProjectID()
		b, ok := buckets[key]
		if !ok {
			name := row.ProjectName
			if row.Project.IsOrphaned() {
				name = domain.NoProjectName
			}
			b = &domain.ProjectBucket{Project: row.Project, ProjectName: name}
			buckets[key] = b
			order = append(order, key)
		}
		b.Count += row.Count
	}

	if report.RatedFeedbackCount > 0 {
		// Scale before dividing so exact half-way means stay exact and round up.
		hundredths := float64(ratingSum*100) / float64(report.RatedFeedbackCount)
		report.AverageRating = math.Round(hundredths) / 100
	}

	report.RatingDistribution = make([]domain.RatingBucket, 0, len(distribution))
	for i, count := range distribution {
		report.RatingDistribution = append(report.RatingDistribution, domain.RatingBucket{Rating: i + domain.MinRating, Count: count})
	}

	if filtered != nil {
		report.FeedbackByProject = []domain.ProjectBucket{{
			Project:     domain.LinkedTo(filtered.ID),
			ProjectName: filtered.Name,
			Count:       report.TotalFeedback,
		}}
		return report
	}

	report.FeedbackByProject = make([]domain.ProjectBucket, 0, len(order))
	for _, key := range order {
		report.FeedbackByProject = append(report.FeedbackByProject, *buckets[key])
	}
	sort.SliceStable(report.FeedbackByProject, func(i, j int) bool {
		a, b := report.FeedbackByProject[i], report.FeedbackByProject[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.ProjectName < b.ProjectName
	})
	return report
}
