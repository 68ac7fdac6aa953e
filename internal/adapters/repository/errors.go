package repository

import (
	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/weights"
)

// Sentinel kinds for repository errors.
var (
	// ErrNotFound matches weights.ErrNotFound through errors.Is.
	ErrNotFound  = errors.Wrap(weights.ErrNotFound, "repository")
	ErrEmptyID   = errors.New("id must not be empty")
	ErrCopyState = errors.New("copy configuration state")

	ErrUserNotFound = errors.New("user not found")
	ErrInvalidLimit = errors.New("limit must be positive")
)
