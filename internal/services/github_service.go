package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/shipfastordie/shipboard/internal/apperror"
	"github.com/shipfastordie/shipboard/pkg/config"
)

// GitHubService implements the OAuth authorization-code flow against
// GitHub: building the authorize redirect, exchanging the callback code
// for an access token, and fetching the authenticated identity.
type GitHubService struct {
	oauthConfig *oauth2.Config
	userInfoURL string
}

// GitHubUser carries the identity fields we read from the /user endpoint.
type GitHubUser struct {
	Login           string  `json:"login"`
	AvatarURL       *string `json:"avatar_url"`
	Bio             *string `json:"bio"`
	Location        *string `json:"location"`
	TwitterUsername *string `json:"twitter_username"`
}

func NewGitHubService() *GitHubService {
	oauthConfig := &oauth2.Config{
		ClientID:     config.AppConfig.GitHub.ClientID,
		ClientSecret: config.AppConfig.GitHub.ClientSecret,
		RedirectURL:  config.AppConfig.GitHub.CallbackURL,
		Scopes: []string{
			"user:email", // Access to user's email addresses
			"repo",       // Read access to repositories, including private ones
		},
		Endpoint: github.Endpoint,
	}

	return &GitHubService{
		oauthConfig: oauthConfig,
		userInfoURL: "https://api.github.com/user",
	}
}

// SetProviderEndpoints points the service at a different provider.
// Tests use this to run the flow against a local stub.
func (s *GitHubService) SetProviderEndpoints(authURL, tokenURL, userInfoURL string) {
	s.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:  authURL,
		TokenURL: tokenURL,
	}
	s.userInfoURL = userInfoURL
}

// AuthURL returns the GitHub OAuth authorization URL. The state must be
// a fresh per-flow token; the caller persists it and verifies it on
// callback before exchanging the code.
func (s *GitHubService) AuthURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeCodeForToken exchanges an authorization code for an access token
func (s *GitHubService) ExchangeCodeForToken(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", apperror.MissingCode()
	}

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", apperror.TokenExchange(err)
	}
	if token.AccessToken == "" {
		return "", apperror.TokenExchange(fmt.Errorf("provider response carried no access token"))
	}
	return token.AccessToken, nil
}

// GetUserInfo retrieves the authenticated user's identity from GitHub
func (s *GitHubService) GetUserInfo(ctx context.Context, accessToken string) (*GitHubUser, error) {
	client := s.oauthConfig.Client(ctx, &oauth2.Token{AccessToken: accessToken})

	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return nil, apperror.IdentityFetch(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.IdentityFetch(fmt.Errorf("identity endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.IdentityFetch(err)
	}

	var user GitHubUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, apperror.IdentityFetch(err)
	}
	if user.Login == "" {
		return nil, apperror.IdentityFetch(fmt.Errorf("identity payload carried no login"))
	}

	return &user, nil
}
