// Package daemon ties the pieces together: a monitor tailing audio events,
// an engine debouncing them into decisions, and the Wayland controller
// applying those decisions as idle inhibitors.
package daemon

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/waywake/internal/audio"
	"github.com/bnema/waywake/internal/config"
	"github.com/bnema/waywake/internal/logging"
	"github.com/bnema/waywake/internal/wayland"
)

// Daemon owns the full pipeline for one run.
type Daemon struct {
	cfg *config.Config

	// Notify, when set before Run, receives a status snapshot after
	// every applied decision.
	Notify func(Status)
}

// New creates a daemon from the loaded configuration.
func New(cfg *config.Config) *Daemon {
	return &Daemon{cfg: cfg}
}

// Run connects to the compositor and the sound server, then processes
// events until ctx is cancelled or the event stream ends. The inhibitor is
// released on the way out so the screen never stays awake after exit.
func (d *Daemon) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)

	pactlPath, err := audio.ResolvePactl(d.cfg.Audio.PactlPath)
	if err != nil {
		return err
	}

	wctx := logging.WithComponent(ctx, "wayland")
	sess, err := wayland.Connect(wctx, d.cfg.Wayland.Display)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.BindGlobals(wctx); err != nil {
		return err
	}

	controller, err := wayland.NewController(wctx, sess)
	if err != nil {
		return err
	}
	defer func() {
		if err := controller.SetInhibited(wctx, false); err != nil {
			log.Warn().Err(err).Msg("failed to release inhibitor on shutdown")
		}
	}()

	wake := make(chan struct{}, 1)
	monitor := audio.NewMonitor(pactlPath, wake)
	oracle := audio.NewOracle(pactlPath)

	engine := NewEngine(wake, oracle.AnyUncorked, controller)
	engine.Notify = d.Notify

	log.Info().Str("pactl", pactlPath).Msg("daemon started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return monitor.Run(logging.WithComponent(gctx, "audio"))
	})
	g.Go(func() error {
		return engine.Run(logging.WithComponent(gctx, "daemon"))
	})
	return g.Wait()
}
