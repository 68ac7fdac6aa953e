package loadgen

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/pkg/logger"
)

const (
	outputPermission    = 0o600
	directoryPermission = 0o750
	percent             = 100
)

// Run executes a complete load run against cfg.BaseURL: health check,
// generation, concurrent submission, settling and verification.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("submissions", cfg.Submissions),
		logger.Int("users", cfg.Users),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed),
	)

	if err := client.Health(ctx); err != nil {
		return nil, err
	}
	baseline, err := client.Stats(ctx)
	if err != nil {
		return nil, err
	}

	subs, err := NewGenerator(cfg.Seed, cfg.Users).Generate(cfg.Submissions, cfg.DuplicateRate)
	if err != nil {
		return nil, errors.Wrap(err, "generate submissions")
	}
	stats.Generated = len(subs)

	if err := submit(ctx, client, cfg, subs, stats, log); err != nil {
		return nil, err
	}

	awarded, err := settle(ctx, client, cfg, baseline.Processed+baseline.Failed+int64(stats.Accepted))
	stats.Awarded = awarded - baseline.Processed - baseline.Failed
	if err != nil {
		return stats, err
	}

	board, err := client.Leaderboard(ctx, cfg.TopN)
	if err != nil {
		return stats, err
	}
	stats.LeaderboardEntries = len(board)

	if cfg.OutputFile != "" {
		if err := saveSubmissions(cfg.OutputFile, subs); err != nil {
			log.Warn(ctx, "failed to save submissions", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	if cfg.Verify {
		expected, err := ExpectedTotals(subs)
		if err != nil {
			return stats, errors.Wrap(err, "compute expected totals")
		}
		stats.Mismatches = Verify(board, expected, cfg.TopN)
	}
	logStats(ctx, log, stats)

	if len(stats.Mismatches) > 0 {
		return stats, errors.Wrapf(ErrVerification, "%d mismatches, first: %s", len(stats.Mismatches), stats.Mismatches[0])
	}
	return stats, nil
}

// submit sends subs with cfg.Workers concurrent requests. Request failures
// are counted, not returned; only cancellation aborts the run.
func submit(ctx context.Context, client *Client, cfg *Config, subs []model.ActivitySubmission, stats *Stats, log logger.Logger) error {
	var accepted, duplicate, failed int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, s := range subs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcome, err := client.Submit(gctx, s)
			switch outcome {
			case outcomeAccepted:
				atomic.AddInt64(&accepted, 1)
			case outcomeDuplicate:
				atomic.AddInt64(&duplicate, 1)
			default:
				atomic.AddInt64(&failed, 1)
				if cfg.Verbose {
					log.Warn(gctx, "submission failed", logger.String("id", s.ID), logger.Error(err))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Accepted = int(accepted)
	stats.Duplicates = int(duplicate)
	stats.Failed = int(failed)
	stats.Submitted = stats.Accepted + stats.Duplicates + stats.Failed
	log.Info(ctx, "submissions sent",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
	)
	return errors.Wrap(ctx.Err(), "submit")
}

// settle polls the intake stats until target submissions have left the
// workers, returning the last processed plus failed count seen.
func settle(ctx context.Context, client *Client, cfg *Config, target int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.SettleTimeout)
	defer cancel()
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	var done int64
	for {
		st, err := client.Stats(ctx)
		if err == nil {
			done = st.Processed + st.Failed
			if done >= target {
				return done, nil
			}
		}
		select {
		case <-ctx.Done():
			return done, errors.Wrapf(ErrNotSettled, "%d of %d awarded", done, target)
		case <-ticker.C:
		}
	}
}

func saveSubmissions(path string, subs []model.ActivitySubmission) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return errors.Wrap(err, "create output directory")
		}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal submissions")
	}
	return errors.Wrap(os.WriteFile(path, data, outputPermission), "write submissions")
}

func logStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var acceptRate, perSecond float64
	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * percent
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "load run finished",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
		logger.Any("awarded", stats.Awarded),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.Int("mismatches", len(stats.Mismatches)),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("submissionsPerSecond", perSecond),
	)
}
