package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/atvirokodosprendimai/feedbackapi/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type feedbackModel struct {
	ID              string         `gorm:"column:id;primaryKey"`
	ProjectID       *string        `gorm:"column:project_id"`
	OrphanedOwnerID *string        `gorm:"column:orphaned_owner_id"`
	Name            string         `gorm:"column:name;not null"`
	Email           string         `gorm:"column:email;not null"`
	Message         string         `gorm:"column:message;not null"`
	Rating          *int           `gorm:"column:rating"`
	Metadata        datatypes.JSON `gorm:"column:metadata"`
	CreatedAt       time.Time      `gorm:"column:created_at;not null;autoCreateTime:false"`
}

func (feedbackModel) TableName() string {
	return "feedback"
}

// feedbackRow is a feedback row joined with its project's summary columns.
type feedbackRow struct {
	ID            string
	ProjectID     *string
	Name          string
	Email         string
	Message       string
	Rating        *int
	Metadata      datatypes.JSON
	CreatedAt     time.Time
	ProjectName   *string
	ProjectDomain *string
}

type FeedbackRepository struct {
	db *gormsqlite.DB
}

func NewFeedbackRepository(db *gormsqlite.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, fb domain.Feedback) (domain.Feedback, error) {
	model := feedbackModel{
		ID:        fb.ID,
		Name:      fb.Name,
		Email:     fb.Email,
		Message:   fb.Message,
		Rating:    fb.Rating,
		Metadata:  datatypes.JSON(fb.Metadata),
		CreatedAt: fb.CreatedAt.UTC(),
	}
	if id, ok := fb.Project.ProjectID(); ok {
		model.ProjectID = &id
	}
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("create feedback: %w", err)
	}
	return fb, nil
}

func (r *FeedbackRepository) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	cond, args, ok := scopeCondition("f", filter.ProjectIDs, filter.OrphansOf)
	if !ok {
		return []domain.Feedback{}, nil
	}

	var rows []feedbackRow
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Table("feedback AS f").
			Select(`f.id, f.project_id, f.name, f.email, f.message, f.rating,
				COALESCE(f.metadata, '') AS metadata, f.created_at,
				p.name AS project_name, p.domain AS project_domain`).
			Joins("LEFT JOIN projects AS p ON p.id = f.project_id").
			Where(cond, args...).
			Order("f.created_at DESC, f.id DESC").
			Limit(filter.Limit).
			Offset(filter.Offset).
			Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	items := make([]domain.Feedback, 0, len(rows))
	for _, row := range rows {
		items = append(items, feedbackToDomain(row))
	}
	return items, nil
}

func (r *FeedbackRepository) CountByProject(ctx context.Context, projectIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(projectIDs))
	if len(projectIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		ProjectID string
		Count     int
	}
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Model(&feedbackModel{}).
			Select("project_id, COUNT(*) AS count").
			Where("project_id IN ?", projectIDs).
			Group("project_id").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}
	for _, row := range rows {
		counts[row.ProjectID] = row.Count
	}
	return counts, nil
}

// scopeCondition builds the WHERE clause selecting rows linked to projectIDs
// and, when orphansOf is set, orphaned rows attributed to that principal.
// ok is false when the scope selects nothing.
func scopeCondition(alias string, projectIDs []string, orphansOf string) (cond string, args []any, ok bool) {
	linked := alias + ".project_id IN ?"
	orphaned := fmt.Sprintf("(%[1]s.project_id IS NULL AND %[1]s.orphaned_owner_id = ?)", alias)
	switch {
	case len(projectIDs) > 0 && orphansOf != "":
		return "(" + linked + " OR " + orphaned + ")", []any{projectIDs, orphansOf}, true
	case len(projectIDs) > 0:
		return linked, []any{projectIDs}, true
	case orphansOf != "":
		return orphaned, []any{orphansOf}, true
	default:
		return "", nil, false
	}
}

func feedbackToDomain(row feedbackRow) domain.Feedback {
	fb := domain.Feedback{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Message:   row.Message,
		Rating:    row.Rating,
		CreatedAt: row.CreatedAt,
		Project:   domain.Orphaned(),
	}
	if len(row.Metadata) > 0 {
		fb.Metadata = json.RawMessage(row.Metadata)
	}
	if row.ProjectID != nil && *row.ProjectID != "" {
		fb.Project = domain.LinkedTo(*row.ProjectID)
		summary := domain.ProjectSummary{ID: *row.ProjectID}
		if row.ProjectName != nil {
			summary.Name = *row.ProjectName
		}
		if row.ProjectDomain != nil {
			summary.Domain = *row.ProjectDomain
		}
		fb.Summary = &summary
	}
	return fb
}
