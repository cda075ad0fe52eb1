package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the persisted account record. Name is the unique identity.
type User struct {
	Name           string      `json:"Name"`
	PasswordHash   string      `json:"-"`
	Email          string      `json:"Email"`
	Birthday       time.Time   `json:"Birthday"`
	FavoriteMovies []uuid.UUID `json:"FavoriteMovies"`
}

// SafeUser removes sensitive fields for response payloads.
func (u User) SafeUser() User {
	u.PasswordHash = ""
	if u.FavoriteMovies == nil {
		u.FavoriteMovies = []uuid.UUID{}
	}
	return u
}

// UserUpdate carries the replacement profile for an existing user.
type UserUpdate struct {
	Name         string
	Email        string
	PasswordHash string
	Birthday     time.Time
}
