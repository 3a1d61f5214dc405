package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipfastordie/shipboard/internal/apperror"
)

// newProviderStub serves the subset of the GitHub REST API the provider
// client touches: per-user listing, single-repo fetch, recursive tree.
func newProviderStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/users/alice/repos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"name": "shipboard", "description": "a leaderboard", "html_url": "https://github.com/alice/shipboard"},
			{"name": "dotfiles", "html_url": "https://github.com/alice/dotfiles"}
		]`)
	})

	mux.HandleFunc("/users/broken/repos", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "boom"}`)
	})

	mux.HandleFunc("/repos/alice/shipboard", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"name": "shipboard",
			"html_url": "https://github.com/alice/shipboard",
			"owner": {"login": "alice", "avatar_url": "https://avatars.example.com/alice"},
			"description": "a leaderboard",
			"language": "Go",
			"stargazers_count": 42,
			"default_branch": "trunk",
			"created_at": "2023-01-02T03:04:05Z",
			"pushed_at": "2024-07-08T09:10:11Z"
		}`)
	})

	// The tree is only registered for the repository's actual default
	// branch; a client that assumes "main" would 404 here.
	mux.HandleFunc("/repos/alice/shipboard/git/trees/trunk", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"sha": "abc123",
			"tree": [
				{"path": "a.py", "type": "blob"},
				{"path": "b.md", "type": "blob"},
				{"path": "c/d.ts", "type": "blob"},
				{"path": "README", "type": "blob"},
				{"path": "c", "type": "tree"}
			]
		}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newStubbedService(t *testing.T) *GitHubRepositoryService {
	t.Helper()
	server := newProviderStub(t)
	service := NewGitHubRepositoryService()
	service.SetBaseURL(server.URL + "/")
	return service
}

func TestListRepositories(t *testing.T) {
	service := newStubbedService(t)

	repos, err := service.ListRepositories(context.Background(), "alice", "", 0)
	require.NoError(t, err)
	require.Len(t, repos, 2)

	assert.Equal(t, "shipboard", repos[0].Name)
	assert.Equal(t, "a leaderboard", *repos[0].Description)
	assert.Equal(t, "https://github.com/alice/shipboard", repos[0].HTMLURL)
	assert.Equal(t, "dotfiles", repos[1].Name)
	assert.Nil(t, repos[1].Description)
}

func TestListRepositoriesProviderFailure(t *testing.T) {
	service := newStubbedService(t)

	_, err := service.ListRepositories(context.Background(), "broken", "", 0)
	assert.ErrorIs(t, err, apperror.ErrProviderAPI)
}

func TestGetRepositoryAuthenticated(t *testing.T) {
	service := newStubbedService(t)

	repo, err := service.GetRepository(context.Background(), "alice", "shipboard", "tok1")
	require.NoError(t, err)

	assert.Equal(t, "shipboard", repo.Name)
	assert.Equal(t, "alice", repo.Owner)
	assert.Equal(t, 42, repo.StargazersCount)
	// Counted on the resolved default branch: a.py and c/d.ts
	require.NotNil(t, repo.NumCodeFiles)
	assert.Equal(t, 2, *repo.NumCodeFiles)
}

func TestGetRepositoryUnauthenticated(t *testing.T) {
	service := newStubbedService(t)

	repo, err := service.GetRepository(context.Background(), "alice", "shipboard", "")
	require.NoError(t, err)

	// No token, no tree fetch
	assert.Nil(t, repo.NumCodeFiles)
}

func TestGetRepositoryNotFound(t *testing.T) {
	service := newStubbedService(t)

	_, err := service.GetRepository(context.Background(), "alice", "missing", "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCountCodeFiles(t *testing.T) {
	service := newStubbedService(t)

	count, err := service.CountCodeFiles(context.Background(), "alice", "shipboard", "trunk", "tok1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCountCodeFilesProviderFailure(t *testing.T) {
	service := newStubbedService(t)

	_, err := service.CountCodeFiles(context.Background(), "alice", "shipboard", "main", "tok1")
	assert.ErrorIs(t, err, apperror.ErrProviderAPI)
}

func TestRateLimitedResponseNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Limit", "60")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "2524608000")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	}))
	t.Cleanup(server.Close)

	service := NewGitHubRepositoryService()
	service.SetBaseURL(server.URL + "/")

	_, err := service.ListRepositories(context.Background(), "alice", "", 0)
	assert.ErrorIs(t, err, apperror.ErrProviderAPI)
	// The provider answered; nothing to retry
	assert.Equal(t, 1, calls)
}

func TestIsCodeFile(t *testing.T) {
	cases := map[string]bool{
		"main.go":          true,
		"src/App.TSX":      true,
		"script.R":         true,
		"README":           false,
		"notes.md":         false,
		"data.json":        false,
		"vendor/lib.rs":    true,
		"Makefile":         false,
		"legacy/module.py": true,
	}

	for path, want := range cases {
		assert.Equal(t, want, isCodeFile(path), "path %q", path)
	}
}
