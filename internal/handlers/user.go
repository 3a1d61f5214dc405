package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shipfastordie/shipboard/internal/services"
)

type UserHandler struct {
	userService   *services.UserService
	githubService *services.GitHubRepositoryService
}

func NewUserHandler(userService *services.UserService, githubService *services.GitHubRepositoryService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		githubService: githubService,
	}
}

// GetUser returns the stored profile for a username. The stored access
// token is excluded from serialization.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByUsername(c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListRepositories lists a user's repositories from the provider, most
// recently updated first. An access_token query parameter makes the call
// authenticated; without one only public repositories show up.
func (h *UserHandler) ListRepositories(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "bad_request",
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	repos, err := h.githubService.ListRepositories(
		c.Request.Context(),
		c.Param("username"),
		c.Query("access_token"),
		limit,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}
