package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/shipfastordie/shipboard/internal/apperror"
	"github.com/shipfastordie/shipboard/internal/models"
)

// codeExtensions is the allow-list of file suffixes counted as source
// code, matched case-insensitively against blob paths.
var codeExtensions = []string{
	".py", ".js", ".ts", ".jsx", ".tsx", ".go", ".java", ".cpp", ".c", ".h",
	".rs", ".rb", ".php", ".scala", ".kt", ".cs", ".swift", ".m", ".r",
}

const defaultListLimit = 100

// GitHubRepositoryService wraps the provider's repository-metadata API:
// per-user listing, single-repository fetch and recursive-tree file
// counting. One implementation serves both the public and the
// token-authenticated variants; an empty token means unauthenticated.
type GitHubRepositoryService struct {
	httpTimeout time.Duration
	baseURL     string // overridden in tests, empty in production
}

func NewGitHubRepositoryService() *GitHubRepositoryService {
	return &GitHubRepositoryService{
		httpTimeout: 30 * time.Second,
	}
}

// SetBaseURL points the service at a different API root. Tests use this
// to hit a local stub; the URL must end with a slash.
func (s *GitHubRepositoryService) SetBaseURL(baseURL string) {
	s.baseURL = baseURL
}

// createClient creates a GitHub client, authenticated when a token is given
func (s *GitHubRepositoryService) createClient(ctx context.Context, token string) (*github.Client, error) {
	httpClient := &http.Client{Timeout: s.httpTimeout}

	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(httpClient)
	if s.baseURL != "" {
		base, err := url.Parse(s.baseURL)
		if err != nil {
			return nil, err
		}
		client.BaseURL = base
	}
	return client, nil
}

// withRetry runs fn, retrying once on transient transport failures.
// Responses the provider actually produced (any status) are not retried.
func (s *GitHubRepositoryService) withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	var ghErr *github.ErrorResponse
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &ghErr) || errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(200 * time.Millisecond):
	}
	return fn()
}

// ListRepositories lists a user's repositories sorted by recency, one
// page capped at limit (default 100). Without a token only public
// repositories are visible. Non-success provider responses surface as
// typed errors, never as a silent empty list.
func (s *GitHubRepositoryService) ListRepositories(ctx context.Context, username, token string, limit int) ([]*models.RepositoryMetadata, error) {
	client, err := s.createClient(ctx, token)
	if err != nil {
		return nil, apperror.ProviderAPI("list repositories", err)
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	opt := &github.RepositoryListOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: limit},
	}

	var repos []*github.Repository
	err = s.withRetry(ctx, func() error {
		var listErr error
		repos, _, listErr = client.Repositories.List(ctx, username, opt)
		return listErr
	})
	if err != nil {
		return nil, apperror.ProviderAPI(fmt.Sprintf("list repositories for %s", username), err)
	}

	metadata := make([]*models.RepositoryMetadata, 0, len(repos))
	for _, repo := range repos {
		meta, err := models.RepositoryMetadataFromGitHub(repo)
		if err != nil {
			return nil, err
		}
		metadata = append(metadata, meta)
	}
	return metadata, nil
}

// GetRepository fetches one repository's metadata and normalizes it into
// a Repository record. With a token the code files of the repository's
// default branch are counted as well; unauthenticated callers get the
// record without a count.
func (s *GitHubRepositoryService) GetRepository(ctx context.Context, username, repoName, token string) (*models.Repository, error) {
	client, err := s.createClient(ctx, token)
	if err != nil {
		return nil, apperror.ProviderAPI("get repository", err)
	}

	var repo *github.Repository
	err = s.withRetry(ctx, func() error {
		var getErr error
		repo, _, getErr = client.Repositories.Get(ctx, username, repoName)
		return getErr
	})
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil, apperror.NotFound("repository", fmt.Sprintf("%s/%s", username, repoName))
		}
		return nil, apperror.ProviderAPI(fmt.Sprintf("get repository %s/%s", username, repoName), err)
	}

	var numCodeFiles *int
	if token != "" {
		branch := repo.GetDefaultBranch()
		if branch == "" {
			branch = "main"
		}
		count, err := s.CountCodeFiles(ctx, username, repoName, branch, token)
		if err != nil {
			return nil, err
		}
		numCodeFiles = &count
	}

	return models.RepositoryFromGitHub(repo, numCodeFiles)
}

// CountCodeFiles fetches the full recursive file tree of the given
// branch and counts blob entries with a source-code extension.
func (s *GitHubRepositoryService) CountCodeFiles(ctx context.Context, owner, repoName, branch, token string) (int, error) {
	client, err := s.createClient(ctx, token)
	if err != nil {
		return 0, apperror.ProviderAPI("count code files", err)
	}

	var tree *github.Tree
	err = s.withRetry(ctx, func() error {
		var treeErr error
		tree, _, treeErr = client.Git.GetTree(ctx, owner, repoName, branch, true)
		return treeErr
	})
	if err != nil {
		return 0, apperror.ProviderAPI(fmt.Sprintf("fetch tree %s/%s@%s", owner, repoName, branch), err)
	}

	count := 0
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		if isCodeFile(entry.GetPath()) {
			count++
		}
	}
	return count, nil
}

func isCodeFile(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range codeExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
