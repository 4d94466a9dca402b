// Package cmd provides Cobra CLI commands for waywake.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/waywake/internal/build"
	"github.com/bnema/waywake/internal/cli"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "waywake",
		Short: "Keep the screen awake while audio plays",
		Long: `Waywake watches PulseAudio/PipeWire for playing streams and holds a
Wayland idle inhibitor while anything is audible.

The daemon listens for stream events, waits for a burst to settle, then
asks the sound server whether any stream is uncorked. While one is, the
compositor's idle timeout is held off; the moment everything goes quiet
the inhibitor is released and the screen may sleep again.

Works on any compositor implementing the zwp_idle_inhibit_manager_v1
protocol (Sway, Hyprland, River, Niri, and others).

Run 'waywake run' to start the daemon, or 'waywake doctor' to verify the
environment first.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			// Set build info from main.go
			app.BuildInfo = buildInfo
			return nil
		},
	}
)

// ExecuteContext runs the root command; ctx carries signal cancellation.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
	rootCmd.Version = info.Version
}
