package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atvirokodosprendimai/feedbackapi/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type projectModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Domain      string    `gorm:"column:domain;not null"`
	APIKey      string    `gorm:"column:api_key;not null"`
	Description string    `gorm:"column:description;not null"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	IsDefault   bool      `gorm:"column:is_default;not null"`
	OwnerID     string    `gorm:"column:owner_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (projectModel) TableName() string {
	return "projects"
}

type ProjectRepository struct {
	db *gormsqlite.DB
}

func NewProjectRepository(db *gormsqlite.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project domain.Project) (domain.Project, error) {
	model := toProjectModel(project)
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	return projectToDomain(model), nil
}

// CreateDefault relies on the partial unique index over is_default: a losing
// concurrent insert is ignored and the winner's row is returned.
func (r *ProjectRepository) CreateDefault(ctx context.Context, project domain.Project) (domain.Project, error) {
	model := toProjectModel(project)
	model.IsDefault = true

	var stored projectModel
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error; err != nil {
			return err
		}
		return tx.Where("is_default = ?", true).First(&stored).Error
	})
	if err != nil {
		return domain.Project{}, fmt.Errorf("create default project: %w", err)
	}
	return projectToDomain(stored), nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (domain.Project, error) {
	return r.findOne(ctx, "get project", "id = ?", id)
}

func (r *ProjectRepository) FindByAPIKey(ctx context.Context, apiKey string) (domain.Project, error) {
	return r.findOne(ctx, "find project by api key", "api_key = ?", apiKey)
}

func (r *ProjectRepository) FindDefault(ctx context.Context) (domain.Project, error) {
	return r.findOne(ctx, "find default project", "is_default = ?", true)
}

func (r *ProjectRepository) findOne(ctx context.Context, op string, query string, args ...any) (domain.Project, error) {
	var model projectModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where(query, args...).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Project{}, domain.ErrNotFound
		}
		return domain.Project{}, fmt.Errorf("%s: %w", op, err)
	}
	return projectToDomain(model), nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	var models []projectModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("owner_id = ?", ownerID).Order("created_at DESC, id ASC").Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	projects := make([]domain.Project, 0, len(models))
	for _, model := range models {
		projects = append(projects, projectToDomain(model))
	}
	return projects, nil
}

func (r *ProjectRepository) ListIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ids := []string{}
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&projectModel{}).Where("owner_id = ?", ownerID).Order("id ASC").Pluck("id", &ids).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list project ids: %w", err)
	}
	return ids, nil
}

func (r *ProjectRepository) CountActive(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&projectModel{}).Where("id IN ? AND is_active = ?", ids, true).Count(&n).Error
	})
	if err != nil {
		return 0, fmt.Errorf("count active projects: %w", err)
	}
	return int(n), nil
}

// Update writes every mutable column, including api_key, in one statement.
func (r *ProjectRepository) Update(ctx context.Context, project domain.Project) (domain.Project, error) {
	var stored projectModel
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Model(&projectModel{}).Where("id = ?", project.ID).Updates(map[string]any{
			"name":        project.Name,
			"domain":      project.Domain,
			"description": project.Description,
			"is_active":   project.IsActive,
			"api_key":     project.APIKey,
			"updated_at":  project.UpdatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", project.ID).First(&stored).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Project{}, domain.ErrNotFound
		}
		return domain.Project{}, fmt.Errorf("update project: %w", err)
	}
	return projectToDomain(stored), nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var model projectModel
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Model(&feedbackModel{}).Where("project_id = ?", id).Updates(map[string]any{
			"project_id":        nil,
			"orphaned_owner_id": model.OwnerID,
		}).Error; err != nil {
			return fmt.Errorf("orphan feedback: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&projectModel{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return deleted, nil
}

func toProjectModel(p domain.Project) projectModel {
	return projectModel{
		ID:          p.ID,
		Name:        p.Name,
		Domain:      p.Domain,
		APIKey:      p.APIKey,
		Description: p.Description,
		IsActive:    p.IsActive,
		IsDefault:   p.IsDefault,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func projectToDomain(model projectModel) domain.Project {
	return domain.Project{
		ID:          model.ID,
		Name:        model.Name,
		Domain:      model.Domain,
		APIKey:      model.APIKey,
		Description: model.Description,
		IsActive:    model.IsActive,
		IsDefault:   model.IsDefault,
		OwnerID:     model.OwnerID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
