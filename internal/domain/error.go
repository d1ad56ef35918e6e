package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidVerdict     = errors.New("verdict outside the allowed set")
	ErrNoRecord           = errors.New("no fact check record for url")
	ErrFetchDisallowed    = errors.New("fetch disallowed by robots.txt")
	ErrEmptyContent       = errors.New("no readable content extracted")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
