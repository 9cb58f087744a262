// Command dojo serves the club pairing and ranking API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/dojo/internal/config"
	"github.com/okian/dojo/pkg/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dojo",
	Short: "Karate club pairing and ranking engine",
	Long:  "Proposes and books bouts, seats officials, records results and keeps points, belt ranks and leaderboards current.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		// Load configuration (defaults -> optional file -> env)
		c, err := config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		// Apply configured log level (fallback to info on invalid input)
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
				logger.String("log_level", cfg.LogLevel), logger.Error(err))
			_ = logger.SetLevelString("info")
		}

		configureMetrics(cfg)
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
