package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5

	// NoProjectName labels the bucket of orphaned feedback.
	NoProjectName = "No Project"
)

type RatingBucket struct {
	Rating int
	Count  int
}

type ProjectBucket struct {
	Project     ProjectLink
	ProjectName string
	Count       int
}

type InsightsReport struct {
	TotalFeedback      int
	AverageRating      float64
	RatedFeedbackCount int
	RatingDistribution []RatingBucket
	FeedbackByProject  []ProjectBucket
	Recent7Days        int
	Recent30Days       int
	TotalProjects      int
	GeneratedAt        time.Time
}

// FeedbackAggregate is one row of the grouped feedback query: the count of
// rows sharing a (project, rating) pair plus how many fall in each recency
// window. Rating is nil for unrated rows.
type FeedbackAggregate struct {
	Project     ProjectLink
	ProjectName string
	Rating      *int
	Count       int
	Recent7     int
	Recent30    int
}

// InsightsScope is the feedback a report covers: rows linked to ProjectIDs,
// plus orphaned rows whose deleted project belonged to OrphansOf.
type InsightsScope struct {
	ProjectIDs []string
	OrphansOf  string
}

func (s InsightsScope) IsEmpty() bool {
	return len(s.ProjectIDs) == 0 && s.OrphansOf == ""
}

type RecencyWindows struct {
	Since7  time.Time
	Since30 time.Time
}

func WindowsAt(now time.Time) RecencyWindows {
	return RecencyWindows{
		Since7:  now.Add(-7 * 24 * time.Hour),
		Since30: now.Add(-30 * 24 * time.Hour),
	}
}
