package httpapi

import (
	"encoding/json"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/domain"
)

type projectSummaryResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type feedbackResponse struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name,omitempty"`
	Email     string                  `json:"email,omitempty"`
	Message   string                  `json:"message"`
	Rating    *int                    `json:"rating"`
	Metadata  json.RawMessage         `json:"metadata,omitempty"`
	ProjectID *string                 `json:"project_id"`
	Project   *projectSummaryResponse `json:"project"`
	CreatedAt string                  `json:"created_at"`
}

func toFeedbackResponse(f domain.Feedback) feedbackResponse {
	out := feedbackResponse{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Message:   f.Message,
		Rating:    f.Rating,
		Metadata:  f.Metadata,
		CreatedAt: f.CreatedAt.UTC().Format(timeFormat),
	}
	if id, ok := f.Project.ProjectID(); ok {
		out.ProjectID = &id
	}
	if f.Summary != nil {
		out.Project = &projectSummaryResponse{ID: f.Summary.ID, Name: f.Summary.Name, Domain: f.Summary.Domain}
	}
	return out
}

type projectResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Domain        string `json:"domain"`
	APIKey        string `json:"api_key"`
	Description   string `json:"description,omitempty"`
	IsActive      bool   `json:"is_active"`
	IsDefault     bool   `json:"is_default"`
	FeedbackCount *int   `json:"feedback_count,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toProjectResponse(p domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Domain:      p.Domain,
		APIKey:      p.APIKey,
		Description: p.Description,
		IsActive:    p.IsActive,
		IsDefault:   p.IsDefault,
		CreatedAt:   p.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:   p.UpdatedAt.UTC().Format(timeFormat),
	}
}

type principalResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toPrincipalResponse(p domain.Principal) principalResponse {
	return principalResponse{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.UTC().Format(timeFormat),
	}
}

type ratingBucketResponse struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

type projectBucketResponse struct {
	ProjectID   *string `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Count       int     `json:"count"`
}

type insightsResponse struct {
	TotalFeedback      int                     `json:"total_feedback"`
	AverageRating      float64                 `json:"average_rating"`
	RatedFeedbackCount int                     `json:"rated_feedback_count"`
	RatingDistribution []ratingBucketResponse  `json:"rating_distribution"`
	FeedbackByProject  []projectBucketResponse `json:"feedback_by_project"`
	Recent7Days        int                     `json:"recent_7_days"`
	Recent30Days       int                     `json:"recent_30_days"`
	TotalProjects      int                     `json:"total_projects"`
	GeneratedAt        string                  `json:"generated_at"`
}

func toInsightsResponse(r domain.InsightsReport) insightsResponse {
	out := insightsResponse{
		TotalFeedback:      r.TotalFeedback,
		AverageRating:      r.AverageRating,
		RatedFeedbackCount: r.RatedFeedbackCount,
		RatingDistribution: make([]ratingBucketResponse, 0, len(r.RatingDistribution)),
		FeedbackByProject:  make([]projectBucketResponse, 0, len(r.FeedbackByProject)),
		Recent7Days:        r.Recent7Days,
		Recent30Days:       r.Recent30Days,
		TotalProjects:      r.TotalProjects,
		GeneratedAt:        r.GeneratedAt.UTC().Format(timeFormat),
	}
	for _, b := range r.RatingDistribution {
		out.RatingDistribution = append(out.RatingDistribution, ratingBucketResponse{Rating: b.Rating, Count: b.Count})
	}
	for _, b := range r.FeedbackByProject {
		bucket := projectBucketResponse{ProjectName: b.ProjectName, Count: b.Count}
		if id, ok := b.Project.ProjectID(); ok {
			bucket.ProjectID = &id
		}
		out.FeedbackByProject = append(out.FeedbackByProject, bucket)
	}
	return out
}
