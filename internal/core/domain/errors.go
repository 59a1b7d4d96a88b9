package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrForbidden     = errors.New("forbidden")
)
