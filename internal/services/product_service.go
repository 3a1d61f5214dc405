package services

import (
	"context"

	"github.com/shipfastordie/shipboard/internal/apperror"
	"github.com/shipfastordie/shipboard/internal/models"
	"github.com/shipfastordie/shipboard/internal/repositories"
)

// ProductService manages the curated repository records shown on the
// leaderboard. Mutations are gated by validating the caller-supplied
// access token against the stored user.
type ProductService struct {
	productRepo   *repositories.ProductRepository
	userService   *UserService
	githubService *GitHubRepositoryService
}

func NewProductService(
	productRepo *repositories.ProductRepository,
	userService *UserService,
	githubService *GitHubRepositoryService,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		userService:   userService,
		githubService: githubService,
	}
}

// AddProduct fetches the repository from the provider with the caller's
// token and persists the normalized record. The provider rejects an
// invalid token, so no separate store-side check happens here.
func (s *ProductService) AddProduct(ctx context.Context, username, repoName, accessToken string) (*models.Repository, error) {
	product, err := s.githubService.GetRepository(ctx, username, repoName, accessToken)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts returns products for one owner, or the full leaderboard
// when username is empty.
func (s *ProductService) ListProducts(username string) ([]*models.Repository, error) {
	return s.productRepo.List(username)
}

// GetProduct retrieves a single product by (owner, name)
func (s *ProductService) GetProduct(username, repoName string) (*models.Repository, error) {
	return s.productRepo.Get(username, repoName)
}

// RemoveProduct deletes the product rows matching (owner, name) after
// validating the access token against the stored user. The store is left
// untouched when the token doesn't match.
func (s *ProductService) RemoveProduct(username, repoName, accessToken string) error {
	valid, err := s.userService.ValidateAccessToken(username, accessToken)
	if err != nil {
		return err
	}
	if !valid {
		return apperror.Unauthorized("access token does not match this user")
	}

	return s.productRepo.Delete(username, repoName)
}
