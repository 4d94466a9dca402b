package wayland

import (
	"context"
	"fmt"

	"github.com/neurlang/wayland/wl"

	"github.com/bnema/waywake/internal/logging"
	"github.com/bnema/waywake/internal/wayland/idleinhibit"
)

// roundTripper confirms that issued requests have taken effect.
type roundTripper interface {
	Roundtrip() error
}

// inhibitorHandle is a live zwp_idle_inhibitor_v1 object.
type inhibitorHandle interface {
	Destroy() error
}

// inhibitorFactory creates inhibitors for the controller's surface.
type inhibitorFactory interface {
	CreateInhibitor() (inhibitorHandle, error)
}

// Controller drives the compositor's idle-inhibition state. It owns one
// dummy surface, created once and never destroyed, and at most one
// inhibitor. The inhibitor's existence is the inhibited state; there is no
// separate flag to drift out of sync. A single goroutine must own the
// controller.
type Controller struct {
	factory   inhibitorFactory
	rt        roundTripper
	inhibitor inhibitorHandle
}

// NewController creates the controller's surface and waits for the
// compositor to acknowledge it, so every later create_inhibitor request
// references a surface the compositor already knows.
func NewController(ctx context.Context, session *Session) (*Controller, error) {
	log := logging.FromContext(ctx)

	if session.compositor == nil || session.inhibitManager == nil {
		return nil, fmt.Errorf("wayland session globals not bound")
	}

	surface, err := session.compositor.CreateSurface()
	if err != nil {
		return nil, fmt.Errorf("failed to create surface: %w", err)
	}
	if err := session.Roundtrip(); err != nil {
		return nil, err
	}

	log.Debug().Msg("inhibitor surface created")

	return &Controller{
		factory: &sessionInhibitors{manager: session.inhibitManager, surface: surface},
		rt:      session,
	}, nil
}

// sessionInhibitors adapts the bound manager and surface to the factory
// seam.
type sessionInhibitors struct {
	manager *idleinhibit.Manager
	surface *wl.Surface
}

func (f *sessionInhibitors) CreateInhibitor() (inhibitorHandle, error) {
	inh, err := f.manager.CreateInhibitor(f.surface)
	if err != nil {
		return nil, err
	}
	return inh, nil
}

// SetInhibited drives the compositor to the desired state. It is
// idempotent: when the desired state already holds, nothing is sent.
// Otherwise exactly one create or destroy request is issued, followed by
// exactly one round-trip confirming the compositor processed it.
func (c *Controller) SetInhibited(ctx context.Context, inhibited bool) error {
	if inhibited == (c.inhibitor != nil) {
		return nil
	}

	log := logging.FromContext(ctx)

	if inhibited {
		inh, err := c.factory.CreateInhibitor()
		if err != nil {
			return fmt.Errorf("failed to create idle inhibitor: %w", err)
		}
		c.inhibitor = inh
	} else {
		if err := c.inhibitor.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy idle inhibitor: %w", err)
		}
		c.inhibitor = nil
	}

	if err := c.rt.Roundtrip(); err != nil {
		return err
	}

	if inhibited {
		log.Info().Msg("idle inhibited while audio plays")
	} else {
		log.Info().Msg("idle inhibition released")
	}
	return nil
}

// Inhibited reports whether an inhibitor currently exists.
func (c *Controller) Inhibited() bool {
	return c.inhibitor != nil
}
