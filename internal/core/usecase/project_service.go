package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/ports"
)

// ProjectService manages the projects a principal owns.
type ProjectService struct {
	guard    *OwnershipGuard
	projects ports.ProjectRepository
	feedback ports.FeedbackRepository
	now      func() time.Time
	log      zerolog.Logger
}

func NewProjectService(guard *OwnershipGuard, projects ports.ProjectRepository, feedback ports.FeedbackRepository, log zerolog.Logger) *ProjectService {
	return &ProjectService{
		guard:    guard,
		projects: projects,
		feedback: feedback,
		now:      time.Now,
		log:      log.With().Str("component", "projects").Logger(),
	}
}

func (s *ProjectService) List(ctx context.Context, principalID string) ([]domain.ProjectWithStats, error) {
	projects, err := s.guard.OwnedProjects(ctx, principalID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	counts := map[string]int{}
	if len(ids) > 0 {
		counts, err = s.feedback.CountByProject(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("count feedback: %w", err)
		}
	}
	out := make([]domain.ProjectWithStats, 0, len(projects))
	for _, p := range projects {
		out = append(out, domain.ProjectWithStats{Project: p, FeedbackCount: counts[p.ID]})
	}
	return out, nil
}

func (s *ProjectService) Create(ctx context.Context, principalID string, in domain.ProjectInput) (domain.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Domain = strings.TrimSpace(in.Domain)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return domain.Project{}, err
	}
	key, err := GenerateAPIKey()
	if err != nil {
		return domain.Project{}, err
	}
	now := s.now().UTC()
	project, err := s.projects.Create(ctx, domain.Project{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Domain:      in.Domain,
		APIKey:      key,
		Description: in.Description,
		IsActive:    true,
		OwnerID:     principalID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	s.log.Info().Str("project_id", project.ID).Str("owner_id", principalID).Msg("project created")
	return project, nil
}

func (s *ProjectService) Get(ctx context.Context, principalID, projectID string) (domain.Project, error) {
	return s.guard.OwnedProject(ctx, principalID, projectID)
}

func (s *ProjectService) Update(ctx context.Context, principalID, projectID string, patch domain.ProjectPatch) (domain.Project, error) {
	project, err := s.guard.OwnedProject(ctx, principalID, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	trimPtr(patch.Name)
	trimPtr(patch.Domain)
	trimPtr(patch.Description)
	if err := validateStruct(patch); err != nil {
		return domain.Project{}, err
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return domain.Project{}, domain.NewValidationError("name is required")
		}
		project.Name = *patch.Name
	}
	if patch.Domain != nil {
		if *patch.Domain == "" {
			return domain.Project{}, domain.NewValidationError("domain is required")
		}
		project.Domain = *patch.Domain
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.IsActive != nil {
		project.IsActive = *patch.IsActive
	}
	if patch.RegenerateAPIKey {
		key, err := GenerateAPIKey()
		if err != nil {
			return domain.Project{}, err
		}
		project.APIKey = key
	}
	project.UpdatedAt = s.now().UTC()

	updated, err := s.projects.Update(ctx, project)
	if err != nil {
		return domain.Project{}, fmt.Errorf("update project: %w", err)
	}
	if patch.RegenerateAPIKey {
		s.log.Info().Str("project_id", project.ID).Msg("api key regenerated")
	}
	return updated, nil
}

// Delete removes an owned project. Its feedback stays stored as orphaned rows.
func (s *ProjectService) Delete(ctx context.Context, principalID, projectID string) error {
	if err := s.guard.AssertOwnership(ctx, principalID, projectID); err != nil {
		return err
	}
	deleted, err := s.projects.Delete(ctx, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	s.log.Info().Str("project_id", projectID).Msg("project deleted")
	return nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
