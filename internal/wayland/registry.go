package wayland

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/neurlang/wayland/wl"

	"github.com/bnema/waywake/internal/logging"
	"github.com/bnema/waywake/internal/wayland/idleinhibit"
)

// Versions requested from the compositor. The protocol surface waywake uses
// exists since version 1 of both interfaces.
const (
	compositorVersion  = 1
	idleInhibitVersion = 1
)

var (
	// ErrMissingGlobal means the compositor never advertised an interface
	// waywake requires.
	ErrMissingGlobal = errors.New("required wayland global not advertised")
	// ErrVersionTooOld means a required global was advertised below the
	// requested version.
	ErrVersionTooOld = errors.New("wayland global version too old")
)

// Compile-time interface checks.
var (
	_ wl.RegistryGlobalHandler = (*Session)(nil)
	_ wl.RegistryGlobalHandler = (*globalRecorder)(nil)
)

// want tracks one registry interface the session needs.
type want struct {
	version uint32
	bound   bool
}

// binder matches advertised globals against the fixed table of interfaces
// the session requires.
type binder struct {
	wants map[string]*want
}

func newBinder(table map[string]uint32) *binder {
	wants := make(map[string]*want, len(table))
	for iface, version := range table {
		wants[iface] = &want{version: version}
	}
	return &binder{wants: wants}
}

// offer decides what to do with an advertised global: bind it when it is the
// first match for an outstanding entry, or reject the session when the
// compositor advertises it below the requested version. Unknown interfaces
// and duplicates after the first match are ignored.
func (b *binder) offer(iface string, version uint32) (bool, error) {
	w, ok := b.wants[iface]
	if !ok || w.bound {
		return false, nil
	}
	if version < w.version {
		return false, fmt.Errorf("%w: %s advertised at version %d, need %d", ErrVersionTooOld, iface, version, w.version)
	}
	w.bound = true
	return true, nil
}

// missing lists table entries no advertised global satisfied.
func (b *binder) missing() []string {
	var out []string
	for iface, w := range b.wants {
		if !w.bound {
			out = append(out, iface)
		}
	}
	sort.Strings(out)
	return out
}

// BindGlobals runs one discovery pass over the registry and binds the
// interfaces waywake needs: wl_compositor and zwp_idle_inhibit_manager_v1.
// A compositor that does not advertise both cannot run waywake.
func (s *Session) BindGlobals(ctx context.Context) error {
	log := logging.FromContext(ctx)

	s.binder = newBinder(map[string]uint32{
		"wl_compositor":              compositorVersion,
		idleinhibit.ManagerInterface: idleInhibitVersion,
	})
	s.registry.AddGlobalHandler(s)

	if err := s.Roundtrip(); err != nil {
		return err
	}
	if err := s.verifyBound(); err != nil {
		return err
	}

	log.Debug().Msg("registry globals bound")
	return nil
}

// verifyBound checks the outcome of a discovery pass: any recorded bind
// error wins, then any table entry no global satisfied.
func (s *Session) verifyBound() error {
	if s.bindErr != nil {
		return s.bindErr
	}
	if missing := s.binder.missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingGlobal, strings.Join(missing, ", "))
	}
	return nil
}

// HandleRegistryGlobal implements wl.RegistryGlobalHandler. It runs while a
// round-trip dispatches registry announcements; errors are recorded and
// surfaced by BindGlobals after the pass.
func (s *Session) HandleRegistryGlobal(ev wl.RegistryGlobalEvent) {
	if s.binder == nil {
		return
	}
	bind, err := s.binder.offer(ev.Interface, ev.Version)
	if err != nil {
		if s.bindErr == nil {
			s.bindErr = err
		}
		return
	}
	if !bind {
		return
	}
	if err := s.bindGlobal(ev); err != nil && s.bindErr == nil {
		s.bindErr = err
	}
}

func (s *Session) bindGlobal(ev wl.RegistryGlobalEvent) error {
	switch ev.Interface {
	case "wl_compositor":
		compositor := wl.NewCompositor(s.registry.Context())
		if err := s.registry.Bind(ev.Name, ev.Interface, compositorVersion, compositor); err != nil {
			return fmt.Errorf("failed to bind wl_compositor: %w", err)
		}
		s.compositor = compositor
	case idleinhibit.ManagerInterface:
		manager, err := idleinhibit.BindManager(s.registry, ev.Name, idleInhibitVersion)
		if err != nil {
			return fmt.Errorf("failed to bind %s: %w", idleinhibit.ManagerInterface, err)
		}
		s.inhibitManager = manager
	}
	return nil
}

// globalRecorder collects every advertised global for diagnostics.
type globalRecorder struct {
	globals map[string]uint32
}

func (g *globalRecorder) HandleRegistryGlobal(ev wl.RegistryGlobalEvent) {
	if _, ok := g.globals[ev.Interface]; !ok {
		g.globals[ev.Interface] = ev.Version
	}
}

// DiscoverGlobals runs one discovery pass and returns every advertised
// interface with its version. It binds nothing; the doctor command uses it
// to report what the compositor offers.
func (s *Session) DiscoverGlobals() (map[string]uint32, error) {
	rec := &globalRecorder{globals: make(map[string]uint32)}
	s.registry.AddGlobalHandler(rec)
	if err := s.Roundtrip(); err != nil {
		return nil, err
	}
	return rec.globals, nil
}
