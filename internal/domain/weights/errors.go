package weights

import "github.com/cockroachdb/errors"

// Sentinel error kinds for weight configuration management.
var (
	ErrInvalidWeightSum     = errors.New("Weight configuration weights must sum to 1.0")
	ErrInvalidConfiguration = errors.New("invalid weight configuration")
	ErrNotFound             = errors.New("weight configuration not found")
)
