package service

import "github.com/cockroachdb/errors"

// Sentinel kinds for engine errors.
var (
	ErrInvalidSeed       = errors.New("invalid seed configuration")
	ErrInvalidSubmission = errors.New("invalid activity submission")
	ErrBackpressure      = errors.New("intake queue is full")
	ErrStopped           = errors.New("engine stopped")
	ErrUserNotFound      = errors.New("user not found")
)
