package models

import (
	"time"
)

// User is the identity record persisted on every successful login.
// Upserts are keyed by Username and replace every column, so a stale
// token from a previous login never survives a re-authorization.
type User struct {
	Username        string    `json:"username"`
	AccessToken     string    `json:"-"` // never serialized in responses
	Bio             *string   `json:"bio"`
	Location        *string   `json:"location"`
	TwitterUsername *string   `json:"twitter_username"`
	AvatarURL       *string   `json:"avatar_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewUser creates a User with the current time as CreatedAt
func NewUser(username, accessToken string) *User {
	return &User{
		Username:    username,
		AccessToken: accessToken,
		CreatedAt:   time.Now().UTC(),
	}
}
