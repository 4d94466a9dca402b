package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bnema/waywake/internal/config"
	"github.com/bnema/waywake/internal/daemon"
	"github.com/bnema/waywake/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the idle-inhibit daemon",
	Long: `Run the daemon in the foreground.

It subscribes to sound server events and keeps a Wayland idle inhibitor
alive while any stream is playing. Stop it with Ctrl-C; the inhibitor is
always released on exit.

Examples:
  waywake run
  WAYWAKE_LOG_LEVEL=debug waywake run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	ctx := app.WithLogging(cmd.Context())
	log := logging.FromContext(ctx)

	// Pick up config edits while the daemon runs.
	if err := config.Watch(); err != nil {
		log.Warn().Err(err).Msg("config watch unavailable")
	}
	config.OnConfigChange(func(cfg *config.Config) {
		zerolog.SetGlobalLevel(logging.ParseLevel(cfg.Logging.Level))
	})

	log.Info().
		Str("version", app.BuildInfo.Version).
		Str("commit", app.BuildInfo.Commit).
		Msg("waywake starting")

	if err := daemon.New(app.Config).Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("shutdown complete")
			return nil
		}
		return err
	}
	log.Info().Msg("event stream ended")
	return nil
}
