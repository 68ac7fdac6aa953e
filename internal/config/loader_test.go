package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/supportxp/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			t.Setenv(config.EnvConfigFile, "")
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("SUPPORTXP_ADDR", ":8080")
			t.Setenv("SUPPORTXP_QUEUE_SIZE", "500")
			t.Setenv("SUPPORTXP_WORKER_COUNT", "4")
			t.Setenv("SUPPORTXP_DEDUPE_TTL", "15m")
			t.Setenv("SUPPORTXP_INTAKE_RATE_LIMIT", "12.5")
			t.Setenv("SUPPORTXP_DEFAULT_WEIGHTS__TECHNICAL_ACCURACY", "0.45")
			t.Setenv("SUPPORTXP_DEFAULT_WEIGHTS__PROCESS_COMPLIANCE", "0.05")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.DedupeTTL, convey.ShouldEqual, 15*time.Minute)
				convey.So(cfg.IntakeRateLimit, convey.ShouldEqual, 12.5)
				convey.So(cfg.DefaultWeights.TechnicalAccuracy, convey.ShouldEqual, 0.45)
				convey.So(cfg.DefaultWeights.CommunicationQuality, convey.ShouldEqual, 0.25)
				convey.So(cfg.DefaultWeights.ProcessCompliance, convey.ShouldEqual, 0.05)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := writeConfig(t, `
addr: ":9090"
log_format: json
dedupe_size: 0
leaderboard_max_limit: 25
seed_default_configuration: false
weight_configurations:
  - name: night shift
    priority: 3
    weights:
      technical_accuracy: 0.4
      communication_quality: 0.2
      customer_satisfaction: 0.2
      process_compliance: 0.2
    context_rules:
      - name: Late tickets
        time_of_day: [night]
        weights:
          process_compliance: 0.4
`)
			t.Setenv(config.EnvConfigFile, path)
			t.Setenv("SUPPORTXP_LEADERBOARD_MAX_LIMIT", "50")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file with env on top", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 0)
				convey.So(cfg.LeaderboardMaxLimit, convey.ShouldEqual, 50)
				convey.So(cfg.SeedDefaultConfiguration, convey.ShouldBeFalse)
				convey.So(cfg.WeightConfigurations, convey.ShouldHaveLength, 1)

				wc := cfg.WeightConfigurations[0]
				convey.So(wc.Name, convey.ShouldEqual, "night shift")
				convey.So(wc.Priority, convey.ShouldEqual, 3)
				convey.So(wc.ContextRules[0].TimeOfDay, convey.ShouldResemble, []string{"night"})
				convey.So(wc.ContextRules[0].Weights["process_compliance"], convey.ShouldEqual, 0.4)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the loaded values are invalid", func() {
			t.Setenv(config.EnvConfigFile, "")
			t.Setenv("SUPPORTXP_QUEUE_SIZE", "0")
			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects them", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "supportxp.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
