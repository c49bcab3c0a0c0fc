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

// PrincipalService registers owners and turns credentials into sessions.
type PrincipalService struct {
	repo   ports.PrincipalRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	now    func() time.Time
	log    zerolog.Logger
}

func NewPrincipalService(repo ports.PrincipalRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *PrincipalService {
	return &PrincipalService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
		log:    log.With().Str("component", "principals").Logger(),
	}
}

func (s *PrincipalService) Register(ctx context.Context, reg domain.Registration) (domain.Principal, error) {
	reg.Email = normalizeEmail(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	if err := validateStruct(reg); err != nil {
		return domain.Principal{}, err
	}

	if _, err := s.repo.FindByEmail(ctx, reg.Email); err == nil {
		return domain.Principal{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Principal{}, fmt.Errorf("lookup principal: %w", err)
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	principal, err := s.repo.Create(ctx, domain.Principal{
		ID:           uuid.NewString(),
		Email:        reg.Email,
		Name:         reg.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return domain.Principal{}, err
	}
	s.log.Info().Str("principal_id", principal.ID).Msg("principal registered")
	return principal, nil
}

// Login issues a session. Unknown email and wrong password fail identically.
func (s *PrincipalService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	principal, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Session{}, domain.ErrInvalidCredentials
		}
		return domain.Session{}, fmt.Errorf("lookup principal: %w", err)
	}
	if !s.hasher.Verify(password, principal.PasswordHash) {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	session, err := s.tokens.Issue(principal.ID, s.now().UTC())
	if err != nil {
		return domain.Session{}, fmt.Errorf("issue session: %w", err)
	}
	return session, nil
}

// Authenticate maps a bearer token to a principal id.
func (s *PrincipalService) Authenticate(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrUnauthorized
	}
	principalID, err := s.tokens.Validate(token)
	if err != nil {
		return "", domain.ErrUnauthorized
	}
	return principalID, nil
}

func (s *PrincipalService) Me(ctx context.Context, principalID string) (domain.Principal, error) {
	principal, err := s.repo.Get(ctx, principalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Principal{}, domain.ErrUnauthorized
		}
		return domain.Principal{}, err
	}
	principal.PasswordHash = ""
	return principal, nil
}
