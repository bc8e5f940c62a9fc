package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrRateLimited     = errors.New("rate limited")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrUnavailable     = errors.New("upstream unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrLockHeld        = errors.New("lock already held")
)
