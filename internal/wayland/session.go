// Package wayland owns waywake's compositor connection: the socket, the
// registry globals it binds, and the idle inhibitor state machine.
package wayland

import (
	"context"
	"fmt"

	"github.com/neurlang/wayland/wl"
	"github.com/neurlang/wayland/wlclient"

	"github.com/bnema/waywake/internal/logging"
	"github.com/bnema/waywake/internal/wayland/idleinhibit"
)

// Session owns the connection to the compositor and the globals bound from
// its registry. It is not safe for concurrent use: the startup sequence and
// afterwards a single daemon goroutine drive it.
type Session struct {
	display  *wl.Display
	registry *wl.Registry

	compositor     *wl.Compositor
	inhibitManager *idleinhibit.Manager

	binder  *binder
	bindErr error
}

// Connect dials the Wayland socket. An empty displayName uses
// $WAYLAND_DISPLAY. There is no reconnection: when this connection dies, the
// process dies with it.
func Connect(ctx context.Context, displayName string) (*Session, error) {
	log := logging.FromContext(ctx)

	var name []byte
	if displayName != "" {
		name = []byte(displayName)
	}
	display, err := wlclient.DisplayConnect(name)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to wayland display: %w", err)
	}

	registry, err := wlclient.DisplayGetRegistry(display)
	if err != nil {
		wlclient.DisplayDisconnect(display)
		return nil, fmt.Errorf("failed to get wayland registry: %w", err)
	}

	log.Debug().Str("display", displayName).Msg("connected to compositor")

	return &Session{
		display:  display,
		registry: registry,
	}, nil
}

// Roundtrip flushes pending requests and blocks until the compositor has
// processed them and all resulting events are dispatched. It is the only
// confirmation primitive: a request has taken effect once the round-trip
// after it returns.
func (s *Session) Roundtrip() error {
	if err := wlclient.DisplayRoundtrip(s.display); err != nil {
		return fmt.Errorf("wayland roundtrip failed: %w", err)
	}
	return nil
}

// Close disconnects from the compositor. The compositor reclaims every
// object the session held, including any live inhibitor.
func (s *Session) Close() {
	wlclient.DisplayDisconnect(s.display)
}
