package domain

import (
	"encoding/json"
	"time"
)

// ProjectLink is the tenant binding of a feedback row: either linked to a
// project id or orphaned (its project was deleted). The zero value is orphaned.
type ProjectLink struct {
	projectID string
}

func LinkedTo(projectID string) ProjectLink {
	return ProjectLink{projectID: projectID}
}

func Orphaned() ProjectLink {
	return ProjectLink{}
}

func (l ProjectLink) ProjectID() (string, bool) {
	return l.projectID, l.projectID != ""
}

func (l ProjectLink) IsOrphaned() bool {
	return l.projectID == ""
}

// Submission is a decoded public feedback payload.
type Submission struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Message  string          `json:"message"`
	Rating   *int            `json:"rating"`
	Metadata json.RawMessage `json:"metadata"`
}

type Feedback struct {
	ID        string
	Name      string
	Email     string
	Message   string
	Rating    *int
	Metadata  json.RawMessage
	Project   ProjectLink
	CreatedAt time.Time

	// Summary is joined for convenience; nil for orphaned rows.
	Summary *ProjectSummary
}

type FeedbackFilter struct {
	ProjectIDs []string
	// OrphansOf also selects orphaned rows last owned by this principal.
	OrphansOf  string
	Limit      int
	Offset     int
}
