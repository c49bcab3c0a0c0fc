package ports

import (
	"context"
	"time"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type PrincipalRepository interface {
	Create(ctx context.Context, principal domain.Principal) (domain.Principal, error)
	Get(ctx context.Context, id string) (domain.Principal, error)
	FindByEmail(ctx context.Context, email string) (domain.Principal, error)
	// First returns the earliest-created principal.
	First(ctx context.Context) (domain.Principal, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

type TokenIssuer interface {
	Issue(principalID string, now time.Time) (domain.Session, error)
	Validate(token string) (principalID string, err error)
}
