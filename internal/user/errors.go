package user

import "errors"

// ErrForbidden is returned when the caller tries to modify another user's account.
var ErrForbidden = errors.New("cannot modify another user")
