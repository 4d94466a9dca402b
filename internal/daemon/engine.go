package daemon

import (
	"context"
	"time"

	"github.com/bnema/waywake/internal/logging"
)

// settleWindow is how long the event stream must stay quiet before the
// daemon re-evaluates audio state. Media players fire bursts of change
// events (volume, position, cork state); acting on the last one is enough.
const settleWindow = time.Second

// Sink applies an inhibition decision. Calls are idempotent.
type Sink interface {
	SetInhibited(ctx context.Context, inhibited bool) error
}

// OracleFunc reports whether any audio stream is currently playing.
type OracleFunc func(ctx context.Context) (bool, error)

// Status is a snapshot of the daemon's view after an applied decision.
type Status struct {
	Playing   bool
	Inhibited bool
	At        time.Time
}

// Engine turns wake signals into inhibition decisions: wait for a wake, let
// the burst settle, ask the oracle once, apply the verdict once.
type Engine struct {
	wake   <-chan struct{}
	oracle OracleFunc
	sink   Sink
	settle time.Duration

	// Notify, when set before Run, receives a snapshot after every
	// applied decision.
	Notify func(Status)
}

// NewEngine creates an engine draining wake. The engine stops when the
// channel closes.
func NewEngine(wake <-chan struct{}, oracle OracleFunc, sink Sink) *Engine {
	return &Engine{
		wake:   wake,
		oracle: oracle,
		sink:   sink,
		settle: settleWindow,
	}
}

// Run processes wakes until the channel closes or ctx is cancelled. A
// closed channel means the event source is gone; whatever decision was
// applied last stands, and Run returns nil.
func (e *Engine) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-e.wake:
			if !ok {
				log.Debug().Msg("event stream ended, stopping")
				return nil
			}
		}

		settled, err := e.drain(ctx)
		if err != nil {
			return err
		}
		if !settled {
			log.Debug().Msg("event stream ended mid-burst, stopping")
			return nil
		}

		if err := e.apply(ctx); err != nil {
			return err
		}
	}
}

// drain waits for the burst to go quiet. Every further wake restarts the
// settle window. It reports false when the wake channel closed before the
// window elapsed.
func (e *Engine) drain(ctx context.Context) (bool, error) {
	timer := time.NewTimer(e.settle)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case _, ok := <-e.wake:
			if !ok {
				return false, nil
			}
			timer.Reset(e.settle)
		case <-timer.C:
			return true, nil
		}
	}
}

// apply consults the oracle once and hands its verdict to the sink once.
func (e *Engine) apply(ctx context.Context) error {
	playing, err := e.oracle(ctx)
	if err != nil {
		return err
	}
	if err := e.sink.SetInhibited(ctx, playing); err != nil {
		return err
	}
	if e.Notify != nil {
		e.Notify(Status{Playing: playing, Inhibited: playing, At: time.Now()})
	}
	return nil
}
