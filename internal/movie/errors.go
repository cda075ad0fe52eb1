package movie

import "errors"

var (
	// ErrGenreNotFound signals that no movie carries the requested genre.
	ErrGenreNotFound = errors.New("genre not found")
	// ErrDirectorNotFound signals that no movie carries the requested director.
	ErrDirectorNotFound = errors.New("director not found")
	// ErrPosterNotFound signals that the movie has no stored poster object.
	ErrPosterNotFound = errors.New("poster not found")
	// ErrTitleRequired is returned when importing a movie without a title.
	ErrTitleRequired = errors.New("movie title required")
)
