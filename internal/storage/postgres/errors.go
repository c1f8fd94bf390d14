package postgres

import "errors"

var (
	ErrNotFound     = errors.New("record not found")
	ErrUserNotFound = errors.New("user not found")
	ErrForbidden    = errors.New("operation not permitted for this user")
	ErrBadRequest   = errors.New("invalid request")
)
