package handlers

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/shipfastordie/shipboard/internal/middleware"
	"github.com/shipfastordie/shipboard/internal/models"
	"github.com/shipfastordie/shipboard/internal/services"
	"github.com/shipfastordie/shipboard/pkg/config"
	"github.com/shipfastordie/shipboard/pkg/logger"
)

type AuthHandler struct {
	userService   *services.UserService
	githubService *services.GitHubService
}

func NewAuthHandler(userService *services.UserService, githubService *services.GitHubService) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		githubService: githubService,
	}
}

// GitHubLogin initiates the GitHub OAuth flow with a fresh state token
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	state := middleware.NewStateToken()
	if err := middleware.SetStateCookie(c, state); err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.githubService.AuthURL(state))
}

// GitHubCallback completes the login: it verifies the state, exchanges
// the code for an access token, fetches the identity, upserts the user
// and redirects to the web application with token and username attached.
// Carrying the token in the redirect URL is what the webapp expects; it
// is a known weak point of the flow rather than an accident.
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	if !middleware.VerifyStateCookie(c, c.Query("state")) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "state mismatch",
		})
		return
	}

	token, err := h.githubService.ExchangeCodeForToken(c.Request.Context(), c.Query("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	githubUser, err := h.githubService.GetUserInfo(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	user := models.NewUser(githubUser.Login, token)
	user.Bio = githubUser.Bio
	user.Location = githubUser.Location
	user.TwitterUsername = githubUser.TwitterUsername
	user.AvatarURL = githubUser.AvatarURL

	if err := h.userService.UpsertUser(user); err != nil {
		respondError(c, err)
		return
	}

	logger.WithFields(map[string]interface{}{"username": user.Username}).Info("user logged in")

	redirect := fmt.Sprintf("%s/add-product?token=%s&username=%s",
		config.AppConfig.WebApp.PublicURL,
		url.QueryEscape(token),
		url.QueryEscape(user.Username),
	)
	c.Redirect(http.StatusFound, redirect)
}
