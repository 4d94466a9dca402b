package cmd

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bnema/waywake/internal/cli/model"
	"github.com/bnema/waywake/internal/daemon"
	"github.com/bnema/waywake/internal/logging"
)

// statusBuffer bounds pending dashboard updates; extras are dropped rather
// than stalling the daemon.
const statusBuffer = 16

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the daemon with a live dashboard",
	Long: `Run the daemon and show its decisions in a terminal dashboard.

Press q to quit; the daemon stops and the inhibitor is released.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	// The dashboard owns the terminal; daemon logs are dropped.
	ctx = logging.WithContext(ctx, zerolog.Nop())

	statuses := make(chan daemon.Status, statusBuffer)
	d := daemon.New(app.Config)
	d.Notify = func(s daemon.Status) {
		select {
		case statuses <- s:
		default:
		}
	}

	runErr := make(chan error, 1)
	go func() {
		err := d.Run(ctx)
		close(statuses)
		runErr <- err
	}()

	p := tea.NewProgram(model.NewWatchModel(app.Theme, statuses, cancel))
	if _, err := p.Run(); err != nil {
		cancel()
		<-runErr
		return fmt.Errorf("watch ui: %w", err)
	}
	cancel()

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
