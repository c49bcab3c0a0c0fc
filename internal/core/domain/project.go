package domain

import "time"

// DefaultProjectName is the display name of the fallback tenant.
const DefaultProjectName = "Default Project"

// Project is a tenant: the unit of ownership and aggregation scope.
type Project struct {
	ID          string
	Name        string
	Domain      string
	APIKey      string
	Description string
	IsActive    bool
	IsDefault   bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Project) Summary() ProjectSummary {
	return ProjectSummary{ID: p.ID, Name: p.Name, Domain: p.Domain}
}

// ProjectSummary is the slice of a project joined into feedback responses.
type ProjectSummary struct {
	ID     string
	Name   string
	Domain string
}

type ProjectWithStats struct {
	Project
	FeedbackCount int
}

type ProjectInput struct {
	Name        string `validate:"required,max=255"`
	Domain      string `validate:"required,max=2048,url|hostname_rfc1123"`
	Description string `validate:"max=2000"`
}

// ProjectPatch carries optional updates. RegenerateAPIKey replaces the key in
// the same write, so the previous key stops matching immediately.
type ProjectPatch struct {
	Name             *string `validate:"omitempty,min=1,max=255"`
	Domain           *string `validate:"omitempty,max=2048,url|hostname_rfc1123"`
	Description      *string `validate:"omitempty,max=2000"`
	IsActive         *bool
	RegenerateAPIKey bool
}

// CredentialPolicy decides what an unrecognized API key does at ingestion.
type CredentialPolicy string

const (
	// CredentialDegrade routes unknown keys to the default project.
	CredentialDegrade CredentialPolicy = "degrade"
	// CredentialReject fails ingestion with ErrUnknownCredential.
	CredentialReject CredentialPolicy = "reject"
)

func ParseCredentialPolicy(raw string) (CredentialPolicy, error) {
	switch CredentialPolicy(raw) {
	case "", CredentialDegrade:
		return CredentialDegrade, nil
	case CredentialReject:
		return CredentialReject, nil
	default:
		return "", NewValidationError("unknown-key-policy must be degrade or reject")
	}
}
