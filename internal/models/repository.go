package models

import (
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/google/uuid"

	"github.com/shipfastordie/shipboard/internal/apperror"
)

// RepositoryMetadata is the lightweight projection returned by the
// per-user repository listing.
type RepositoryMetadata struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	HTMLURL     string  `json:"html_url"`
}

// Repository is a persisted product: a repository the user chose to
// showcase on the leaderboard. (Owner, Name) is the natural key.
type Repository struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Owner           string    `json:"owner"`
	AvatarURL       *string   `json:"avatar_url"`
	Language        *string   `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	NumCodeFiles    *int      `json:"num_code_files"`
	RepoCreatedAt   time.Time `json:"repo_created_at"`
	RepoPushedAt    time.Time `json:"repo_pushed_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// RepositoryMetadataFromGitHub maps a provider listing entry into a
// RepositoryMetadata. Name and URL are required.
func RepositoryMetadataFromGitHub(repo *github.Repository) (*RepositoryMetadata, error) {
	if repo.Name == nil {
		return nil, apperror.SchemaValidation("name")
	}
	if repo.HTMLURL == nil {
		return nil, apperror.SchemaValidation("html_url")
	}

	return &RepositoryMetadata{
		Name:        repo.GetName(),
		Description: repo.Description,
		HTMLURL:     repo.GetHTMLURL(),
	}, nil
}

// RepositoryFromGitHub maps a full provider repository payload into a
// Repository record. Pure function, no I/O. Required fields missing from
// the payload fail with a schema validation error; optional fields stay nil.
// numCodeFiles may be nil when the caller didn't run the file count.
func RepositoryFromGitHub(repo *github.Repository, numCodeFiles *int) (*Repository, error) {
	switch {
	case repo.Name == nil:
		return nil, apperror.SchemaValidation("name")
	case repo.HTMLURL == nil:
		return nil, apperror.SchemaValidation("html_url")
	case repo.Owner == nil || repo.Owner.Login == nil:
		return nil, apperror.SchemaValidation("owner.login")
	case repo.StargazersCount == nil:
		return nil, apperror.SchemaValidation("stargazers_count")
	case repo.CreatedAt == nil:
		return nil, apperror.SchemaValidation("created_at")
	case repo.PushedAt == nil:
		return nil, apperror.SchemaValidation("pushed_at")
	}

	r := &Repository{
		ID:              uuid.New().String(),
		Name:            repo.GetName(),
		Description:     repo.Description,
		HTMLURL:         repo.GetHTMLURL(),
		Owner:           repo.Owner.GetLogin(),
		AvatarURL:       repo.Owner.AvatarURL,
		Language:        repo.Language,
		StargazersCount: repo.GetStargazersCount(),
		NumCodeFiles:    numCodeFiles,
		RepoCreatedAt:   repo.CreatedAt.Time,
		RepoPushedAt:    repo.PushedAt.Time,
		CreatedAt:       time.Now().UTC(),
	}

	return r, nil
}

// FormatTime serializes a timestamp for storage. All timestamps are kept
// as ISO-8601 text in the store; ParseTime(FormatTime(t)) recovers the
// same instant.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime is the inverse of FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
