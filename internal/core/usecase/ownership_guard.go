package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/ports"
)

// OwnershipGuard scopes every owner-facing read and write to the projects the
// principal owns.
type OwnershipGuard struct {
	projects ports.ProjectRepository
	log      zerolog.Logger
}

func NewOwnershipGuard(projects ports.ProjectRepository, log zerolog.Logger) *OwnershipGuard {
	return &OwnershipGuard{
		projects: projects,
		log:      log.With().Str("component", "ownership_guard").Logger(),
	}
}

// AuthorizedProjectIDs returns the ids of every project owned by principalID.
// The result is never nil.
func (g *OwnershipGuard) AuthorizedProjectIDs(ctx context.Context, principalID string) ([]string, error) {
	ids, err := g.projects.ListIDsByOwner(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("list owned projects: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// OwnedProjects returns every project owned by principalID, never nil.
func (g *OwnershipGuard) OwnedProjects(ctx context.Context, principalID string) ([]domain.Project, error) {
	projects, err := g.projects.ListByOwner(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("list owned projects: %w", err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

// AssertOwnership fails with domain.ErrNotFound for a missing project and
// domain.ErrForbidden for one owned by someone else.
func (g *OwnershipGuard) AssertOwnership(ctx context.Context, principalID, projectID string) error {
	_, err := g.OwnedProject(ctx, principalID, projectID)
	return err
}

// OwnedProject loads a project after checking ownership.
func (g *OwnershipGuard) OwnedProject(ctx context.Context, principalID, projectID string) (domain.Project, error) {
	project, err := g.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Project{}, domain.ErrNotFound
		}
		return domain.Project{}, fmt.Errorf("load project: %w", err)
	}
	if project.OwnerID != principalID {
		g.log.Debug().Str("principal_id", principalID).Str("project_id", projectID).Msg("ownership denied")
		return domain.Project{}, domain.ErrForbidden
	}
	return project, nil
}
