package loadgen

import "github.com/cockroachdb/errors"

// Sentinel errors of a load run.
var (
	ErrInvalidConfig = errors.New("invalid load configuration")
	ErrUnhealthy     = errors.New("engine is not healthy")
	ErrUnexpected    = errors.New("unexpected response")
	ErrNotSettled    = errors.New("awards did not settle in time")
	ErrVerification  = errors.New("leaderboard verification failed")
)
