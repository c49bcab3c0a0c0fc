package usecase

import (
	"context"
	"time"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type stubProjectRepo struct {
	createFn         func(ctx context.Context, project domain.Project) (domain.Project, error)
	createDefaultFn  func(ctx context.Context, project domain.Project) (domain.Project, error)
	getFn            func(ctx context.Context, id string) (domain.Project, error)
	findByAPIKeyFn   func(ctx context.Context, apiKey string) (domain.Project, error)
	findDefaultFn    func(ctx context.Context) (domain.Project, error)
	listByOwnerFn    func(ctx context.Context, ownerID string) ([]domain.Project, error)
	listIDsByOwnerFn func(ctx context.Context, ownerID string) ([]string, error)
	countActiveFn    func(ctx context.Context, ids []string) (int, error)
	updateFn         func(ctx context.Context, project domain.Project) (domain.Project, error)
	deleteFn         func(ctx context.Context, id string) (bool, error)
}

func (s *stubProjectRepo) Create(ctx context.Context, project domain.Project) (domain.Project, error) {
	if s.createFn != nil {
		return s.createFn(ctx, project)
	}
	return project, nil
}

func (s *stubProjectRepo) CreateDefault(ctx context.Context, project domain.Project) (domain.Project, error) {
	if s.createDefaultFn != nil {
		return s.createDefaultFn(ctx, project)
	}
	return project, nil
}

func (s *stubProjectRepo) Get(ctx context.Context, id string) (domain.Project, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return domain.Project{}, domain.ErrNotFound
}

func (s *stubProjectRepo) FindByAPIKey(ctx context.Context, apiKey string) (domain.Project, error) {
	if s.findByAPIKeyFn != nil {
		return s.findByAPIKeyFn(ctx, apiKey)
	}
	return domain.Project{}, domain.ErrNotFound
}

func (s *stubProjectRepo) FindDefault(ctx context.Context) (domain.Project, error) {
	if s.findDefaultFn != nil {
		return s.findDefaultFn(ctx)
	}
	return domain.Project{}, domain.ErrNotFound
}

func (s *stubProjectRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	if s.listByOwnerFn != nil {
		return s.listByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (s *stubProjectRepo) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	if s.listIDsByOwnerFn != nil {
		return s.listIDsByOwnerFn(ctx, ownerID)
	}
	return nil, nil
}

func (s *stubProjectRepo) CountActive(ctx context.Context, ids []string) (int, error) {
	if s.countActiveFn != nil {
		return s.countActiveFn(ctx, ids)
	}
	return len(ids), nil
}

func (s *stubProjectRepo) Update(ctx context.Context, project domain.Project) (domain.Project, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, project)
	}
	return project, nil
}

func (s *stubProjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return true, nil
}

type stubFeedbackRepo struct {
	createFn         func(ctx context.Context, fb domain.Feedback) (domain.Feedback, error)
	listFn           func(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error)
	countByProjectFn func(ctx context.Context, ids []string) (map[string]int, error)
}

func (s *stubFeedbackRepo) Create(ctx context.Context, fb domain.Feedback) (domain.Feedback, error) {
	if s.createFn != nil {
		return s.createFn(ctx, fb)
	}
	return fb, nil
}

func (s *stubFeedbackRepo) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter)
	}
	return nil, nil
}

func (s *stubFeedbackRepo) CountByProject(ctx context.Context, ids []string) (map[string]int, error) {
	if s.countByProjectFn != nil {
		return s.countByProjectFn(ctx, ids)
	}
	return map[string]int{}, nil
}

type stubPrincipalRepo struct {
	createFn      func(ctx context.Context, p domain.Principal) (domain.Principal, error)
	getFn         func(ctx context.Context, id string) (domain.Principal, error)
	findByEmailFn func(ctx context.Context, email string) (domain.Principal, error)
	firstFn       func(ctx context.Context) (domain.Principal, error)
}

func (s *stubPrincipalRepo) Create(ctx context.Context, p domain.Principal) (domain.Principal, error) {
	if s.createFn != nil {
		return s.createFn(ctx, p)
	}
	return p, nil
}

func (s *stubPrincipalRepo) Get(ctx context.Context, id string) (domain.Principal, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return domain.Principal{}, domain.ErrNotFound
}

func (s *stubPrincipalRepo) FindByEmail(ctx context.Context, email string) (domain.Principal, error) {
	if s.findByEmailFn != nil {
		return s.findByEmailFn(ctx, email)
	}
	return domain.Principal{}, domain.ErrNotFound
}

func (s *stubPrincipalRepo) First(ctx context.Context) (domain.Principal, error) {
	if s.firstFn != nil {
		return s.firstFn(ctx)
	}
	return domain.Principal{}, domain.ErrNotFound
}

type stubInsightsStore struct {
	aggregateFn func(ctx context.Context, scope domain.InsightsScope, windows domain.RecencyWindows) ([]domain.FeedbackAggregate, error)
}

func (s *stubInsightsStore) AggregateFeedback(ctx context.Context, scope domain.InsightsScope, windows domain.RecencyWindows) ([]domain.FeedbackAggregate, error) {
	if s.aggregateFn != nil {
		return s.aggregateFn(ctx, scope, windows)
	}
	return nil, nil
}

type stubNotifier struct {
	notifyFn func(ctx context.Context, n domain.Notification) error
}

func (s *stubNotifier) Notify(ctx context.Context, n domain.Notification) error {
	if s.notifyFn != nil {
		return s.notifyFn(ctx, n)
	}
	return nil
}

type stubDispatcher struct {
	dispatchFn func(ctx context.Context, n domain.Notification) domain.DispatchOutcome
}

func (s *stubDispatcher) Dispatch(ctx context.Context, n domain.Notification) domain.DispatchOutcome {
	if s.dispatchFn != nil {
		return s.dispatchFn(ctx, n)
	}
	return domain.DispatchOutcome{Observed: true, State: domain.NotificationSent}
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(password, encoded string) bool { return encoded == "hashed:"+password }

type stubTokens struct {
	issueFn    func(principalID string, now time.Time) (domain.Session, error)
	validateFn func(token string) (string, error)
}

func (s *stubTokens) Issue(principalID string, now time.Time) (domain.Session, error) {
	if s.issueFn != nil {
		return s.issueFn(principalID, now)
	}
	return domain.Session{Token: "token-" + principalID, ExpiresAt: now.Add(time.Hour)}, nil
}

func (s *stubTokens) Validate(token string) (string, error) {
	if s.validateFn != nil {
		return s.validateFn(token)
	}
	return "", domain.ErrUnauthorized
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
