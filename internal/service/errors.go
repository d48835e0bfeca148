package service

import (
	"errors"
	"fmt"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("document not found")

	// ErrValidation rejects input before any storage write.
	ErrValidation = errors.New("validation failed")
	// ErrInsufficientKeywords means the analysis produced too few keywords even after expansion.
	ErrInsufficientKeywords = fmt.Errorf("%w: insufficient keywords", ErrValidation)
	// ErrPersistence means a document or corpus read/write against the store failed.
	ErrPersistence = errors.New("persistence failed")
)
