package api

import "golang.org/x/time/rate"

const defaultLeaderboardMaxLimit = 100

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithIntakeLimiter throttles activity submissions. A nil limiter disables throttling.
func WithIntakeLimiter(l *rate.Limiter) Option {
	return func(s *Server) {
		if l != nil {
			s.intakeLimiter = l
		}
	}
}

// WithLeaderboardMaxLimit caps the limit parameter of the XP leaderboard.
func WithLeaderboardMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.leaderboardMaxLimit = n
		}
	}
}
