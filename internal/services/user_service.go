package services

import (
	"github.com/shipfastordie/shipboard/internal/models"
	"github.com/shipfastordie/shipboard/internal/repositories"
)

type UserService struct {
	userRepo *repositories.UserRepository
}

func NewUserService(userRepo *repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// UpsertUser creates or fully replaces the user row for this username
func (s *UserService) UpsertUser(user *models.User) error {
	return s.userRepo.Upsert(user)
}

// GetUserByUsername retrieves a user by username
func (s *UserService) GetUserByUsername(username string) (*models.User, error) {
	return s.userRepo.GetByUsername(username)
}

// ValidateAccessToken checks the caller-supplied token against the stored user
func (s *UserService) ValidateAccessToken(username, accessToken string) (bool, error) {
	return s.userRepo.ValidateAccessToken(username, accessToken)
}
