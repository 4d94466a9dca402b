// Package idleinhibit implements the client side of the zwp_idle_inhibit_v1
// Wayland protocol (idle-inhibit-unstable-v1).
//
// The protocol has two interfaces: a manager global advertised by the
// compositor, and inhibitor objects created from it. As long as an inhibitor
// exists for a visible surface, the compositor will not blank outputs, start
// the screensaver or otherwise idle the session. Neither interface defines
// events; all state lives in the existence of the objects themselves.
package idleinhibit

import (
	"github.com/neurlang/wayland/wl"
)

// Interface names as advertised in the compositor registry.
const (
	ManagerInterface   = "zwp_idle_inhibit_manager_v1"
	InhibitorInterface = "zwp_idle_inhibitor_v1"
)

// Request opcodes, in declaration order of the protocol XML.
const (
	opManagerDestroy         = 0
	opManagerCreateInhibitor = 1
	opInhibitorDestroy       = 0
)

// Manager is a proxy for the zwp_idle_inhibit_manager_v1 global.
type Manager struct {
	wl.BaseProxy
}

// NewManager creates an unbound manager proxy on the given context.
func NewManager(ctx *wl.Context) *Manager {
	ret := new(Manager)
	ctx.Register(ret)
	return ret
}

// BindManager binds the advertised global with the given numeric name to a
// new manager proxy.
func BindManager(r *wl.Registry, name uint32, version uint32) (*Manager, error) {
	manager := NewManager(r.Context())
	if err := r.Bind(name, ManagerInterface, version, manager); err != nil {
		return nil, err
	}
	return manager, nil
}

// Destroy sends zwp_idle_inhibit_manager_v1.destroy. Existing inhibitors are
// not affected.
func (m *Manager) Destroy() error {
	defer m.Context().Unregister(m.Id())
	return m.Context().SendRequest(m, opManagerDestroy)
}

// CreateInhibitor sends zwp_idle_inhibit_manager_v1.create_inhibitor for the
// given surface and returns the new inhibitor proxy. Idle is inhibited from
// the moment the compositor processes the request until the inhibitor is
// destroyed.
func (m *Manager) CreateInhibitor(surface *wl.Surface) (*Inhibitor, error) {
	ret := NewInhibitor(m.Context())
	if err := m.Context().SendRequest(m, opManagerCreateInhibitor, ret, surface); err != nil {
		return nil, err
	}
	return ret, nil
}

// Dispatch handles incoming events. The manager interface defines none.
func (*Manager) Dispatch(*wl.Event) {}

// Inhibitor is a proxy for a zwp_idle_inhibitor_v1 object. Its existence is
// the inhibition: the compositor keeps the session awake until Destroy.
type Inhibitor struct {
	wl.BaseProxy
}

// NewInhibitor creates an unbound inhibitor proxy on the given context.
func NewInhibitor(ctx *wl.Context) *Inhibitor {
	ret := new(Inhibitor)
	ctx.Register(ret)
	return ret
}

// Destroy sends zwp_idle_inhibitor_v1.destroy, allowing the compositor to
// idle again.
func (i *Inhibitor) Destroy() error {
	defer i.Context().Unregister(i.Id())
	return i.Context().SendRequest(i, opInhibitorDestroy)
}

// Dispatch handles incoming events. The inhibitor interface defines none.
func (*Inhibitor) Dispatch(*wl.Event) {}
