package types

import "errors"

// Domain errors for type validation
var (
	ErrMissingFilePath  = errors.New("file path is required")
	ErrEmptyContent     = errors.New("content cannot be empty")
	ErrInvalidLineRange = errors.New("invalid line range")
	ErrNegativeScore    = errors.New("score cannot be negative")
	ErrInvalidMethod    = errors.New("invalid search method")
)
