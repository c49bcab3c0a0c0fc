package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/ports"
)

// TenantDirectory maps API keys to projects and owns the default project.
type TenantDirectory struct {
	projects          ports.ProjectRepository
	principals        ports.PrincipalRepository
	defaultOwnerEmail string
	log               zerolog.Logger
}

type TenantDirectoryOption func(*TenantDirectory)

// WithDefaultOwnerEmail pins the owner of the default project. Without it the
// earliest-created principal is used.
func WithDefaultOwnerEmail(email string) TenantDirectoryOption {
	return func(d *TenantDirectory) {
		d.defaultOwnerEmail = normalizeEmail(email)
	}
}

func NewTenantDirectory(projects ports.ProjectRepository, principals ports.PrincipalRepository, log zerolog.Logger, opts ...TenantDirectoryOption) *TenantDirectory {
	d := &TenantDirectory{
		projects:   projects,
		principals: principals,
		log:        log.With().Str("component", "tenant_directory").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ResolveTenant looks up the project whose API key equals credential exactly.
// An empty credential performs no lookup. found is false for both an absent
// and an unknown credential.
func (d *TenantDirectory) ResolveTenant(ctx context.Context, credential string) (project domain.Project, found bool, err error) {
	if credential == "" {
		return domain.Project{}, false, nil
	}
	project, err = d.projects.FindByAPIKey(ctx, credential)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Project{}, false, nil
		}
		return domain.Project{}, false, fmt.Errorf("resolve tenant: %w", err)
	}
	return project, true, nil
}

// DefaultTenant returns the default project, creating it on first use.
// Concurrent callers converge on a single stored row.
func (d *TenantDirectory) DefaultTenant(ctx context.Context) (domain.Project, error) {
	project, err := d.projects.FindDefault(ctx)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Project{}, fmt.Errorf("find default project: %w", err)
	}

	owner, err := d.defaultOwner(ctx)
	if err != nil {
		return domain.Project{}, err
	}

	key, err := GenerateAPIKey()
	if err != nil {
		return domain.Project{}, err
	}
	now := time.Now().UTC()
	project, err = d.projects.CreateDefault(ctx, domain.Project{
		ID:          uuid.NewString(),
		Name:        domain.DefaultProjectName,
		APIKey:      key,
		Description: "Receives feedback submitted without a project API key",
		IsActive:    true,
		IsDefault:   true,
		OwnerID:     owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Project{}, fmt.Errorf("create default project: %w", err)
	}
	d.log.Info().Str("project_id", project.ID).Str("owner_id", project.OwnerID).Msg("default project ready")
	return project, nil
}

func (d *TenantDirectory) defaultOwner(ctx context.Context) (domain.Principal, error) {
	var (
		owner domain.Principal
		err   error
	)
	if d.defaultOwnerEmail != "" {
		owner, err = d.principals.FindByEmail(ctx, d.defaultOwnerEmail)
	} else {
		owner, err = d.principals.First(ctx)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Principal{}, domain.ErrNoPrincipalAvailable
		}
		return domain.Principal{}, fmt.Errorf("find default owner: %w", err)
	}
	return owner, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
