package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/supportxp/internal/loadgen"
	"github.com/okian/supportxp/pkg/logger"
)

var cfg = loadgen.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "loadgen",
	Short: "Drive the scoring engine with seeded activity submissions",
	Long: `loadgen submits a reproducible stream of activity submissions to a running
engine, waits for every XP award, and checks the leaderboard against totals
computed locally from the same submissions.

Verification assumes the engine held no XP before the run and uses the
default bonus thresholds.

Examples:
  loadgen
  loadgen --submissions 50000 --users 2000 --workers 32
  loadgen --url http://localhost:8080 --seed 7 --output out/submissions.json
  loadgen --verify=false`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		_, err := loadgen.Run(cmd.Context(), cfg)
		return err
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the engine")
	f.IntVar(&cfg.Submissions, "submissions", cfg.Submissions, "Number of submissions to send, resends included")
	f.IntVar(&cfg.Users, "users", cfg.Users, "Number of distinct users")
	f.Float64Var(&cfg.DuplicateRate, "duplicate-rate", cfg.DuplicateRate, "Fraction of submissions that resend an earlier id")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Seed of the submission generator")
	f.IntVar(&cfg.TopN, "top", cfg.TopN, "Leaderboard entries to fetch and verify")
	f.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Concurrent HTTP senders")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	f.DurationVar(&cfg.SettleTimeout, "settle-timeout", cfg.SettleTimeout, "How long to wait for queued awards")
	f.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "How often to poll intake stats while settling")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "Write the generated submissions to this JSON file")
	f.BoolVar(&cfg.Verify, "verify", cfg.Verify, "Compare the leaderboard with locally computed totals")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every failed submission")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("loadgen: " + err.Error() + "\n")
		os.Exit(1)
	}
}
