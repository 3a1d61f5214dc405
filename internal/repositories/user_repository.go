package repositories

import (
	"database/sql"
	"errors"

	"github.com/shipfastordie/shipboard/internal/apperror"
	"github.com/shipfastordie/shipboard/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Upsert replaces or inserts a user keyed by username. Every column is
// written, so the stored row always reflects the latest login in full.
func (r *UserRepository) Upsert(user *models.User) error {
	query := `
		INSERT INTO users (username, access_token, bio, location, twitter_username, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			access_token = excluded.access_token,
			bio = excluded.bio,
			location = excluded.location,
			twitter_username = excluded.twitter_username,
			avatar_url = excluded.avatar_url,
			created_at = excluded.created_at
	`

	_, err := r.db.Exec(query,
		user.Username,
		user.AccessToken,
		user.Bio,
		user.Location,
		user.TwitterUsername,
		user.AvatarURL,
		models.FormatTime(user.CreatedAt),
	)
	if err != nil {
		return apperror.Store(err)
	}
	return nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	query := `SELECT username, access_token, bio, location, twitter_username, avatar_url, created_at FROM users WHERE username = ?`

	var user models.User
	var createdAt string
	err := r.db.QueryRow(query, username).Scan(
		&user.Username,
		&user.AccessToken,
		&user.Bio,
		&user.Location,
		&user.TwitterUsername,
		&user.AvatarURL,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", username)
		}
		return nil, apperror.Store(err)
	}

	user.CreatedAt, err = models.ParseTime(createdAt)
	if err != nil {
		return nil, apperror.Store(err)
	}

	return &user, nil
}

// ValidateAccessToken reports whether a user row exists with exactly
// this (username, token) pair.
func (r *UserRepository) ValidateAccessToken(username, accessToken string) (bool, error) {
	query := `SELECT COUNT(1) FROM users WHERE username = ? AND access_token = ?`

	var count int
	if err := r.db.QueryRow(query, username, accessToken).Scan(&count); err != nil {
		return false, apperror.Store(err)
	}
	return count > 0, nil
}
