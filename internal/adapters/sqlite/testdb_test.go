package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/feedbackapi/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
	"github.com/atvirokodosprendimai/feedbackapi/migrations"
)

func openTestDB(t *testing.T) *gormsqlite.DB {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "feedback.sqlite")
	db, err := gormsqlite.Open(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	wdb, err := db.WriteSQLDB()
	if err != nil {
		t.Fatalf("writer sql db: %v", err)
	}
	if _, err := migrations.Up(ctx, wdb, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPrincipal(t *testing.T, repo *PrincipalRepository, id, email string, createdAt time.Time) domain.Principal {
	t.Helper()
	p, err := repo.Create(context.Background(), domain.Principal{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	})
	if err != nil {
		t.Fatalf("seed principal %s: %v", id, err)
	}
	return p
}

func seedProject(t *testing.T, repo *ProjectRepository, id, ownerID, apiKey string, active bool) domain.Project {
	t.Helper()
	now := time.Now().UTC()
	p, err := repo.Create(context.Background(), domain.Project{
		ID:        id,
		Name:      "Project " + id,
		Domain:    id + ".example.com",
		APIKey:    apiKey,
		IsActive:  active,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed project %s: %v", id, err)
	}
	return p
}

func seedFeedback(t *testing.T, repo *FeedbackRepository, id string, link domain.ProjectLink, rating *int, createdAt time.Time) {
	t.Helper()
	_, err := repo.Create(context.Background(), domain.Feedback{
		ID:        id,
		Message:   "message " + id,
		Rating:    rating,
		Project:   link,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("seed feedback %s: %v", id, err)
	}
}

func intPtr(v int) *int { return &v }
