package model

import "github.com/cockroachdb/errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownDimension = errors.New("unknown performance dimension")
)
