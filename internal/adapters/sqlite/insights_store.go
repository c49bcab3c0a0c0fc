package sqlite

import (
	"context"
	"fmt"

	"github.com/atvirokodosprendimai/feedbackapi/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type aggregateRow struct {
	ProjectID   *string
	ProjectName *string
	Rating      *int
	Count       int
	Recent7     int
	Recent30    int
}

// InsightsStore answers report queries with one grouped scan of the feedback
// table.
type InsightsStore struct {
	db *gormsqlite.DB
}

func NewInsightsStore(db *gormsqlite.DB) *InsightsStore {
	return &InsightsStore{db: db}
}

func (s *InsightsStore) AggregateFeedback(ctx context.Context, scope domain.InsightsScope, windows domain.RecencyWindows) ([]domain.FeedbackAggregate, error) {
	cond, args, ok := scopeCondition("f", scope.ProjectIDs, scope.OrphansOf)
	if !ok {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT
			f.project_id AS project_id,
			p.name AS project_name,
			f.rating AS rating,
			COUNT(*) AS count,
			COALESCE(SUM(CASE WHEN f.created_at >= ? THEN 1 ELSE 0 END), 0) AS recent7,
			COALESCE(SUM(CASE WHEN f.created_at >= ? THEN 1 ELSE 0 END), 0) AS recent30
		FROM feedback AS f
		LEFT JOIN projects AS p ON p.id = f.project_id
		WHERE %s
		GROUP BY f.project_id, p.name, f.rating`, cond)
	params := append([]any{windows.Since7.UTC(), windows.Since30.UTC()}, args...)

	var rows []aggregateRow
	err := s.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Raw(query, params...).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate feedback: %w", err)
	}

	out := make([]domain.FeedbackAggregate, 0, len(rows))
	for _, row := range rows {
		agg := domain.FeedbackAggregate{
			Project:  domain.Orphaned(),
			Rating:   row.Rating,
			Count:    row.Count,
			Recent7:  row.Recent7,
			Recent30: row.Recent30,
		}
		if row.ProjectID != nil && *row.ProjectID != "" {
			agg.Project = domain.LinkedTo(*row.ProjectID)
		}
		if row.ProjectName != nil {
			agg.ProjectName = *row.ProjectName
		}
		out = append(out, agg)
	}
	return out, nil
}
