// Package audio watches PulseAudio (or PipeWire via pipewire-pulse) through
// the pactl tool: a subscription stream for change notifications and a full
// listing as the source of truth for whether anything is playing.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bnema/waywake/internal/logging"
)

// uncorkedMarker appears in `pactl list` output for every stream that is
// currently playing rather than paused. Corked streams print "Corked: yes".
const uncorkedMarker = "Corked: no"

// ResolvePactl returns the pactl binary to invoke. An empty configured path
// resolves pactl from PATH.
func ResolvePactl(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	path, err := exec.LookPath("pactl")
	if err != nil {
		return "", fmt.Errorf("pactl not found in PATH (PulseAudio or pipewire-pulse is required): %w", err)
	}
	return path, nil
}

// Oracle answers the one question the daemon cares about: is any audio
// stream currently uncorked?
type Oracle struct {
	pactlPath string
}

// NewOracle creates an oracle around the given pactl binary.
func NewOracle(pactlPath string) *Oracle {
	return &Oracle{pactlPath: pactlPath}
}

// AnyUncorked runs `pactl list` and reports whether at least one sink input
// or source output is playing. Every call asks the sound server fresh; no
// state is cached between calls.
func (o *Oracle) AnyUncorked(ctx context.Context) (bool, error) {
	cmd := exec.CommandContext(ctx, o.pactlPath, "list")
	cmd.Env = append(os.Environ(), "LC_ALL=C")

	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("pactl list failed: %w", err)
	}

	playing := hasUncorkedStream(out)
	logging.FromContext(ctx).Debug().Bool("playing", playing).Msg("queried stream state")
	return playing, nil
}

// hasUncorkedStream scans pactl list output for an uncorked stream entry.
func hasUncorkedStream(out []byte) bool {
	return bytes.Contains(out, []byte(uncorkedMarker))
}

// ServerInfo runs `pactl info` and returns the sound server's name line,
// e.g. "PulseAudio (on PipeWire 1.2.7)". It is a reachability probe for
// diagnostics.
func ServerInfo(ctx context.Context, pactlPath string) (string, error) {
	cmd := exec.CommandContext(ctx, pactlPath, "info")
	cmd.Env = append(os.Environ(), "LC_ALL=C")

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pactl info failed: %w", err)
	}
	return parseServerName(out)
}

func parseServerName(out []byte) (string, error) {
	for _, line := range strings.Split(string(out), "\n") {
		if name, ok := strings.CutPrefix(line, "Server Name: "); ok {
			return strings.TrimSpace(name), nil
		}
	}
	return "", fmt.Errorf("pactl info output has no server name")
}
