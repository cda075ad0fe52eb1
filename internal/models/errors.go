package models

import "errors"

var (
	// ErrUserNotFound signals that no user has the requested name.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when a name is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrMovieNotFound signals that the requested movie does not exist.
	ErrMovieNotFound = errors.New("movie not found")
)
