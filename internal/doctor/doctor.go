// Package doctor probes what waywake needs to run: a Wayland session, a
// compositor speaking the idle-inhibit protocol, and a reachable sound
// server. It also reports whether the XDG desktop portal could inhibit
// idle, as a hint for compositors without the protocol.
package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"

	"github.com/bnema/waywake/internal/audio"
	"github.com/bnema/waywake/internal/config"
	"github.com/bnema/waywake/internal/logging"
	"github.com/bnema/waywake/internal/wayland"
	"github.com/bnema/waywake/internal/wayland/idleinhibit"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	portalInterface = "org.freedesktop.portal.Inhibit"
)

// Check is the outcome of one probe. Required checks decide the overall
// verdict; the rest are informational.
type Check struct {
	Name     string
	OK       bool
	Detail   string
	Required bool
}

// Report collects all checks for one doctor run.
type Report struct {
	Checks []Check
}

// OK reports whether every required check passed.
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if c.Required && !c.OK {
			return false
		}
	}
	return true
}

// Run executes every probe. Probes never abort the run; failures land in
// the report.
func Run(ctx context.Context, cfg *config.Config) Report {
	checks := []Check{checkSessionEnv(cfg)}
	checks = append(checks, checkCompositor(ctx, cfg)...)
	checks = append(checks, checkAudio(ctx, cfg)...)
	checks = append(checks, checkPortal(ctx))
	return Report{Checks: checks}
}

func checkSessionEnv(cfg *config.Config) Check {
	c := Check{Name: "Wayland session", Required: true}

	display := cfg.Wayland.Display
	if display == "" {
		display = os.Getenv("WAYLAND_DISPLAY")
	}
	switch {
	case os.Getenv("XDG_RUNTIME_DIR") == "":
		c.Detail = "XDG_RUNTIME_DIR is not set"
	case display == "":
		c.Detail = "WAYLAND_DISPLAY is not set and no display is configured"
	default:
		c.OK = true
		c.Detail = fmt.Sprintf("display %s", display)
	}
	return c
}

func checkCompositor(ctx context.Context, cfg *config.Config) []Check {
	conn := Check{Name: "Compositor connection", Required: true}
	proto := Check{Name: "Idle inhibit protocol", Required: true, Detail: "not checked"}

	sess, err := wayland.Connect(ctx, cfg.Wayland.Display)
	if err != nil {
		conn.Detail = err.Error()
		return []Check{conn, proto}
	}
	defer sess.Close()

	globals, err := sess.DiscoverGlobals()
	if err != nil {
		conn.Detail = err.Error()
		return []Check{conn, proto}
	}
	conn.OK = true
	conn.Detail = fmt.Sprintf("%d globals advertised", len(globals))

	if version, ok := globals[idleinhibit.ManagerInterface]; ok {
		proto.OK = true
		proto.Detail = fmt.Sprintf("%s v%d", idleinhibit.ManagerInterface, version)
	} else {
		proto.Detail = fmt.Sprintf("compositor does not advertise %s", idleinhibit.ManagerInterface)
	}
	return []Check{conn, proto}
}

func checkAudio(ctx context.Context, cfg *config.Config) []Check {
	tool := Check{Name: "pactl", Required: true}
	server := Check{Name: "Sound server", Required: true, Detail: "not checked"}

	path, err := audio.ResolvePactl(cfg.Audio.PactlPath)
	if err != nil {
		tool.Detail = err.Error()
		return []Check{tool, server}
	}
	tool.OK = true
	tool.Detail = path

	name, err := audio.ServerInfo(ctx, path)
	if err != nil {
		server.Detail = err.Error()
		return []Check{tool, server}
	}
	server.OK = true
	server.Detail = name
	return []Check{tool, server}
}

// checkPortal asks the session bus whether the desktop portal offers its
// own Inhibit interface. waywake does not use it; compositors missing the
// idle-inhibit protocol sometimes still support inhibition through the
// portal, which is worth telling the user about.
func checkPortal(ctx context.Context) Check {
	log := logging.FromContext(ctx)
	c := Check{Name: "Desktop portal inhibit", Required: false}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		log.Debug().Err(err).Msg("doctor: cannot connect to D-Bus session bus")
		c.Detail = "session bus unavailable"
		return c
	}
	defer conn.Close()

	obj := conn.Object(portalDest, portalPath)
	var version uint32
	err = obj.Call("org.freedesktop.DBus.Properties.Get", 0,
		portalInterface, "version").Store(&version)
	if err != nil {
		log.Debug().Err(err).Msg("doctor: portal not available")
		c.Detail = "portal not available"
		return c
	}

	c.OK = true
	c.Detail = fmt.Sprintf("portal version %d", version)
	return c
}
