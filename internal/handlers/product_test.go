package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipfastordie/shipboard/internal/models"
	"github.com/shipfastordie/shipboard/internal/repositories"
	"github.com/shipfastordie/shipboard/internal/services"
	"github.com/shipfastordie/shipboard/pkg/config"
	"github.com/shipfastordie/shipboard/pkg/database"
)

type productTestEnv struct {
	router      *gin.Engine
	userRepo    *repositories.UserRepository
	productRepo *repositories.ProductRepository
}

// newProductTestEnv wires the product routes against a stub provider
// exposing alice/shipboard with two code files, and seeds user alice
// with token tok1.
func newProductTestEnv(t *testing.T) *productTestEnv {
	t.Helper()
	require.NoError(t, config.Load())
	gin.SetMode(gin.TestMode)

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/alice/shipboard", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"name": "shipboard",
			"html_url": "https://github.com/alice/shipboard",
			"owner": {"login": "alice"},
			"stargazers_count": 42,
			"default_branch": "main",
			"created_at": "2023-01-02T03:04:05Z",
			"pushed_at": "2024-07-08T09:10:11Z"
		}`)
	})
	mux.HandleFunc("/repos/alice/shipboard/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"sha": "abc", "tree": [
			{"path": "a.py", "type": "blob"},
			{"path": "b.md", "type": "blob"},
			{"path": "c/d.ts", "type": "blob"},
			{"path": "README", "type": "blob"}
		]}`)
	})
	provider := httptest.NewServer(mux)
	t.Cleanup(provider.Close)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)
	userService := services.NewUserService(userRepo)
	githubRepoService := services.NewGitHubRepositoryService()
	githubRepoService.SetBaseURL(provider.URL + "/")
	productService := services.NewProductService(productRepo, userService, githubRepoService)
	productHandler := NewProductHandler(productService)

	require.NoError(t, userRepo.Upsert(models.NewUser("alice", "tok1")))

	router := gin.New()
	router.POST("/users/:username/products", productHandler.AddProduct)
	router.GET("/users/:username/products", productHandler.ListProducts)
	router.GET("/users/:username/products/:repo_name", productHandler.GetProduct)
	router.DELETE("/users/:username/products/:repo_name", productHandler.RemoveProduct)
	router.GET("/products/leaderboard", productHandler.Leaderboard)
	router.GET("/products/leaderboard/export", productHandler.ExportLeaderboard)

	return &productTestEnv{
		router:      router,
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

func (env *productTestEnv) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	env.router.ServeHTTP(w, req)
	return w
}

func addShipboard(t *testing.T, env *productTestEnv) {
	t.Helper()
	w := env.do("POST", "/users/alice/products", `{"repo_name": "shipboard", "access_token": "tok1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestAddProduct(t *testing.T) {
	env := newProductTestEnv(t)

	w := env.do("POST", "/users/alice/products", `{"repo_name": "shipboard", "access_token": "tok1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var product models.Repository
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, "shipboard", product.Name)
	assert.Equal(t, "alice", product.Owner)
	assert.Equal(t, 42, product.StargazersCount)
	require.NotNil(t, product.NumCodeFiles)
	assert.Equal(t, 2, *product.NumCodeFiles)
}

func TestAddProductValidation(t *testing.T) {
	env := newProductTestEnv(t)

	t.Run("missing fields", func(t *testing.T) {
		w := env.do("POST", "/users/alice/products", `{"repo_name": "shipboard"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown repository", func(t *testing.T) {
		w := env.do("POST", "/users/alice/products", `{"repo_name": "missing", "access_token": "tok1"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("duplicate insert", func(t *testing.T) {
		addShipboard(t, env)
		w := env.do("POST", "/users/alice/products", `{"repo_name": "shipboard", "access_token": "tok1"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestGetAndListProducts(t *testing.T) {
	env := newProductTestEnv(t)
	addShipboard(t, env)

	w := env.do("GET", "/users/alice/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	var products []models.Repository
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)

	w = env.do("GET", "/users/alice/products/shipboard", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/users/alice/products/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveProduct(t *testing.T) {
	env := newProductTestEnv(t)
	addShipboard(t, env)

	t.Run("wrong token leaves store unchanged", func(t *testing.T) {
		w := env.do("DELETE", "/users/alice/products/shipboard", `{"access_token": "wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotContains(t, w.Body.String(), "tok1")

		_, err := env.productRepo.Get("alice", "shipboard")
		assert.NoError(t, err)
	})

	t.Run("correct token removes the row", func(t *testing.T) {
		w := env.do("DELETE", "/users/alice/products/shipboard", `{"access_token": "tok1"}`)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = env.do("GET", "/users/alice/products/shipboard", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLeaderboard(t *testing.T) {
	env := newProductTestEnv(t)
	addShipboard(t, env)

	// Seed a second, more starred product directly
	other := &models.Repository{
		ID:              "fixed-id",
		Name:            "rocket",
		HTMLURL:         "https://github.com/bob/rocket",
		Owner:           "bob",
		StargazersCount: 500,
		RepoCreatedAt:   mustParse(t, "2022-01-01T00:00:00Z"),
		RepoPushedAt:    mustParse(t, "2024-01-01T00:00:00Z"),
		CreatedAt:       mustParse(t, "2024-02-01T00:00:00Z"),
	}
	require.NoError(t, env.productRepo.Create(other))

	w := env.do("GET", "/products/leaderboard", "")
	require.Equal(t, http.StatusOK, w.Code)

	var products []models.Repository
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 2)
	assert.Equal(t, "rocket", products[0].Name)
	assert.Equal(t, "shipboard", products[1].Name)
}

func TestLeaderboardExport(t *testing.T) {
	env := newProductTestEnv(t)
	addShipboard(t, env)

	w := env.do("GET", "/products/leaderboard/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := models.ParseTime(s)
	require.NoError(t, err)
	return parsed
}
