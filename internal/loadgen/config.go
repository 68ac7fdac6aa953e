// Package loadgen drives a running engine over HTTP with seeded activity
// submissions and checks the resulting XP leaderboard against totals
// computed locally from the same submissions.
package loadgen

import (
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
)

// Default run parameters.
const (
	DefaultBaseURL       = "http://localhost:9080"
	DefaultSubmissions   = 10000
	DefaultUsers         = 500
	DefaultDuplicateRate = 0.05
	DefaultTopN          = 50
	DefaultTimeout       = 30 * time.Second
	DefaultSettleTimeout = 2 * time.Minute
	DefaultPollInterval  = 250 * time.Millisecond
)

// Config holds the parameters of a load run.
type Config struct {
	BaseURL       string        // Base URL of the engine
	Submissions   int           // Number of submissions to send, resends included
	Users         int           // Number of distinct users
	DuplicateRate float64       // Fraction of submissions that resend an earlier id
	Seed          uint64        // Seed of the submission generator
	TopN          int           // Leaderboard entries to fetch and verify
	Workers       int           // Concurrent HTTP senders
	Timeout       time.Duration // Per-request timeout
	SettleTimeout time.Duration // How long to wait for queued awards
	PollInterval  time.Duration // How often to poll /v1/stats while settling
	OutputFile    string        // Optional JSON dump of the generated submissions
	Verify        bool          // Compare the leaderboard with local totals
	Verbose       bool          // Log every failed request
}

// DefaultConfig returns the parameters used when no flag overrides them.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		Submissions:   DefaultSubmissions,
		Users:         DefaultUsers,
		DuplicateRate: DefaultDuplicateRate,
		Seed:          1,
		TopN:          DefaultTopN,
		Workers:       runtime.NumCPU() * 2,
		Timeout:       DefaultTimeout,
		SettleTimeout: DefaultSettleTimeout,
		PollInterval:  DefaultPollInterval,
		Verify:        true,
	}
}

// Validate rejects parameters a run cannot use.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Wrap(ErrInvalidConfig, "base url must not be empty")
	case c.Submissions < 1:
		return errors.Wrap(ErrInvalidConfig, "submissions must be positive")
	case c.Users < 1:
		return errors.Wrap(ErrInvalidConfig, "users must be positive")
	case c.DuplicateRate < 0 || c.DuplicateRate >= 1:
		return errors.Wrap(ErrInvalidConfig, "duplicate rate must be within [0,1)")
	case c.TopN < 1:
		return errors.Wrap(ErrInvalidConfig, "top must be positive")
	case c.Workers < 1:
		return errors.Wrap(ErrInvalidConfig, "workers must be positive")
	case c.PollInterval <= 0:
		return errors.Wrap(ErrInvalidConfig, "poll interval must be positive")
	}
	return nil
}

// Stats summarizes a load run.
type Stats struct {
	Generated          int
	Submitted          int
	Accepted           int
	Duplicates         int
	Failed             int
	Awarded            int64
	LeaderboardEntries int
	Mismatches         []string
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
