package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/ports"
)

// IngestionService accepts public feedback submissions.
type IngestionService struct {
	directory  *TenantDirectory
	feedback   ports.FeedbackRepository
	dispatcher Dispatcher
	policy     domain.CredentialPolicy
	now        func() time.Time
	log        zerolog.Logger
}

type IngestionOption func(*IngestionService)

func WithCredentialPolicy(policy domain.CredentialPolicy) IngestionOption {
	return func(s *IngestionService) {
		s.policy = policy
	}
}

func WithIngestionClock(now func() time.Time) IngestionOption {
	return func(s *IngestionService) {
		s.now = now
	}
}

func NewIngestionService(directory *TenantDirectory, feedback ports.FeedbackRepository, dispatcher Dispatcher, log zerolog.Logger, opts ...IngestionOption) *IngestionService {
	s := &IngestionService{
		directory:  directory,
		feedback:   feedback,
		dispatcher: dispatcher,
		policy:     domain.CredentialDegrade,
		now:        time.Now,
		log:        log.With().Str("component", "ingestion").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest validates and stores one submission under the project identified by
// credential, falling back to the default project. The stored row is returned
// with its project summary once the notification has either finished or
// outlived the grace period.
func (s *IngestionService) Ingest(ctx context.Context, sub domain.Submission, credential string) (domain.Feedback, error) {
	if err := validateSubmission(sub); err != nil {
		return domain.Feedback{}, err
	}

	project, err := s.resolveProject(ctx, credential)
	if err != nil {
		return domain.Feedback{}, err
	}

	metadata := sub.Metadata
	if trimmed := bytes.TrimSpace(metadata); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		metadata = nil
	}

	stored, err := s.feedback.Create(ctx, domain.Feedback{
		ID:        uuid.NewString(),
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		Rating:    sub.Rating,
		Metadata:  metadata,
		Project:   domain.LinkedTo(project.ID),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("store feedback: %w", err)
	}
	summary := project.Summary()
	stored.Summary = &summary

	if s.dispatcher != nil {
		outcome := s.dispatcher.Dispatch(ctx, domain.NotificationFor(stored, project))
		s.log.Debug().
			Str("feedback_id", stored.ID).
			Bool("observed", outcome.Observed).
			Str("state", string(outcome.State)).
			Msg("notification dispatched")
	}
	return stored, nil
}

func (s *IngestionService) resolveProject(ctx context.Context, credential string) (domain.Project, error) {
	project, found, err := s.directory.ResolveTenant(ctx, credential)
	if err != nil {
		return domain.Project{}, err
	}
	if found {
		if !project.IsActive {
			return domain.Project{}, domain.ErrTenantInactive
		}
		return project, nil
	}
	if credential != "" {
		if s.policy == domain.CredentialReject {
			return domain.Project{}, domain.ErrUnknownCredential
		}
		s.log.Warn().Msg("unknown api key, using default project")
	}
	return s.directory.DefaultTenant(ctx)
}

func validateSubmission(sub domain.Submission) error {
	var msgs []string
	if strings.TrimSpace(sub.Message) == "" {
		msgs = append(msgs, "message is required")
	}
	if sub.Rating != nil && (*sub.Rating < domain.MinRating || *sub.Rating > domain.MaxRating) {
		msgs = append(msgs, fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	return nil
}
