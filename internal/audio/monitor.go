package audio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"unicode/utf8"

	"golang.org/x/sys/unix"

	"github.com/bnema/waywake/internal/logging"
)

// changePrefix starts every pactl subscribe line reporting a state change,
// e.g. "Event 'change' on sink-input #449".
const changePrefix = "Event 'change' on "

// Monitor tails `pactl subscribe` and wakes the daemon whenever an audio
// stream changes state.
type Monitor struct {
	pactlPath string
	wake      chan<- struct{}
}

// NewMonitor creates a monitor that signals on wake. The monitor owns the
// channel's write side and closes it when the subscription ends.
func NewMonitor(pactlPath string, wake chan<- struct{}) *Monitor {
	return &Monitor{pactlPath: pactlPath, wake: wake}
}

// Run spawns the subscription process and consumes its output until the
// stream ends or ctx is cancelled. A stream that ends on its own (the sound
// server shut down) is not an error; the closed wake channel tells the
// daemon to stop.
func (m *Monitor) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)

	cmd := exec.CommandContext(ctx, m.pactlPath, "subscribe")
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	cmd.Stderr = os.Stderr
	// The subscription must not outlive the daemon.
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: unix.SIGTERM}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open pactl subscribe pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start pactl subscribe: %w", err)
	}
	log.Debug().Int("pid", cmd.Process.Pid).Msg("subscribed to stream events")

	consumeErr := m.consume(ctx, stdout)
	if consumeErr != nil {
		_ = cmd.Process.Kill()
	}
	waitErr := cmd.Wait()

	if consumeErr != nil {
		return consumeErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitErr != nil {
		log.Debug().Err(waitErr).Msg("pactl subscribe exited")
	}
	return nil
}

// consume reads subscription lines until the stream ends, waking the daemon
// for every relevant one. The wake channel closes when the stream does, so
// the daemon can tell "nothing happening right now" from "nothing will ever
// happen again".
func (m *Monitor) consume(ctx context.Context, r io.Reader) error {
	log := logging.FromContext(ctx)
	defer close(m.wake)

	// One synthetic wake before any event: the daemon must evaluate the
	// audio state that existed before it started.
	if err := m.signal(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !utf8.ValidString(line) {
			return fmt.Errorf("pactl subscribe produced a non-text line")
		}
		if !isRelevantEvent(line) {
			continue
		}
		log.Trace().Str("event", line).Msg("stream change")
		if err := m.signal(ctx); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading pactl subscribe output: %w", err)
	}
	return nil
}

// signal delivers one wake, blocking while the daemon is busy. The channel
// holds at most one pending wake, so bursts collapse instead of queueing.
func (m *Monitor) signal(ctx context.Context) error {
	select {
	case m.wake <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isRelevantEvent reports whether a subscription line describes a state
// change on an audio stream. Only sink inputs (playback) and source outputs
// (capture) matter; sinks, cards, clients and new/remove events do not.
func isRelevantEvent(line string) bool {
	rest, ok := strings.CutPrefix(line, changePrefix)
	if !ok {
		return false
	}
	return strings.HasPrefix(rest, "sink-input") || strings.HasPrefix(rest, "source-output")
}
