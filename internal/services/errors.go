package services

import "github.com/pkg/errors"

// State errors are shown to the user as soft messages.
var (
	ErrNoResults        = errors.New("no results")
	ErrInvalidPage      = errors.New("invalid page")
	ErrJobNotFound      = errors.New("job not found")
	ErrNoSession        = errors.New("no search session")
	ErrAlreadyFavorite  = errors.New("job is already in favorites")
	ErrNotFavorite      = errors.New("job is not in favorites")
	ErrIngestInProgress = errors.New("ingest is already running")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidInput     = errors.New("invalid input")
)
