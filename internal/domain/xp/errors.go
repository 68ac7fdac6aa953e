package xp

import "github.com/cockroachdb/errors"

// Sentinel error kinds for XP calculation.
var (
	ErrUnknownActivityType = errors.New("unknown activity type")
	ErrUnknownDifficulty   = errors.New("unknown scenario difficulty")
)
