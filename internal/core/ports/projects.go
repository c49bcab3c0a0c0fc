package ports

import (
	"context"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, project domain.Project) (domain.Project, error)
	// CreateDefault inserts the default project unless one already exists and
	// returns whichever row is stored.
	CreateDefault(ctx context.Context, project domain.Project) (domain.Project, error)
	Get(ctx context.Context, id string) (domain.Project, error)
	FindByAPIKey(ctx context.Context, apiKey string) (domain.Project, error)
	FindDefault(ctx context.Context) (domain.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
	ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	CountActive(ctx context.Context, ids []string) (int, error)
	Update(ctx context.Context, project domain.Project) (domain.Project, error)
	// Delete removes the project and orphans its feedback, attributing the
	// orphaned rows to the project's last owner.
	Delete(ctx context.Context, id string) (bool, error)
}
