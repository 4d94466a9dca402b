package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu    sync.Mutex
	calls []bool
	err   error
}

func (s *fakeSink) SetInhibited(_ context.Context, inhibited bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, inhibited)
	return nil
}

func (s *fakeSink) applied() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.calls...)
}

type fakeOracle struct {
	mu      sync.Mutex
	answers []bool
	calls   int
	err     error
}

func (o *fakeOracle) answer(_ context.Context) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.err != nil {
		return false, o.err
	}
	if len(o.answers) == 0 {
		return false, nil
	}
	ans := o.answers[0]
	if len(o.answers) > 1 {
		o.answers = o.answers[1:]
	}
	return ans, nil
}

func (o *fakeOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

func startEngine(t *testing.T, ctx context.Context, e *Engine) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	return done
}

func TestEngineAppliesSettledDecision(t *testing.T) {
	wake := make(chan struct{}, 1)
	oracle := &fakeOracle{answers: []bool{true}}
	sink := &fakeSink{}

	e := NewEngine(wake, oracle.answer, sink)
	e.settle = 20 * time.Millisecond
	applied := make(chan Status, 1)
	e.Notify = func(s Status) { applied <- s }

	done := startEngine(t, context.Background(), e)
	wake <- struct{}{}

	status := <-applied
	assert.True(t, status.Playing)
	assert.True(t, status.Inhibited)
	assert.False(t, status.At.IsZero())

	close(wake)
	require.NoError(t, <-done)
	assert.Equal(t, 1, oracle.callCount())
	assert.Equal(t, []bool{true}, sink.applied())
}

func TestEngineCoalescesBurst(t *testing.T) {
	wake := make(chan struct{}, 1)
	oracle := &fakeOracle{answers: []bool{true}}
	sink := &fakeSink{}

	e := NewEngine(wake, oracle.answer, sink)
	e.settle = 30 * time.Millisecond
	applied := make(chan Status, 1)
	e.Notify = func(s Status) { applied <- s }

	done := startEngine(t, context.Background(), e)
	for i := 0; i < 5; i++ {
		wake <- struct{}{}
	}

	<-applied
	close(wake)
	require.NoError(t, <-done)
	assert.Equal(t, 1, oracle.callCount(), "a burst settles into a single query")
	assert.Equal(t, []bool{true}, sink.applied())
}

func TestEngineRestartsSettleWindowPerWake(t *testing.T) {
	wake := make(chan struct{}, 1)
	oracle := &fakeOracle{answers: []bool{true}}
	sink := &fakeSink{}

	e := NewEngine(wake, oracle.answer, sink)
	e.settle = 100 * time.Millisecond
	applied := make(chan Status, 1)
	e.Notify = func(s Status) { applied <- s }

	done := startEngine(t, context.Background(), e)

	// Wakes spaced inside the window but spanning more than one window
	// in total. Without the restart this would settle twice.
	for i := 0; i < 3; i++ {
		wake <- struct{}{}
		time.Sleep(50 * time.Millisecond)
	}

	<-applied
	close(wake)
	require.NoError(t, <-done)
	assert.Equal(t, 1, oracle.callCount())
	assert.Equal(t, []bool{true}, sink.applied())
}

func TestEngineStopsWhenChannelClosedIdle(t *testing.T) {
	wake := make(chan struct{})
	close(wake)
	oracle := &fakeOracle{}
	sink := &fakeSink{}

	e := NewEngine(wake, oracle.answer, sink)
	require.NoError(t, e.Run(context.Background()))
	assert.Zero(t, oracle.callCount())
	assert.Empty(t, sink.applied())
}

func TestEngineStopsWhenChannelClosedMidBurst(t *testing.T) {
	wake := make(chan struct{}, 1)
	oracle := &fakeOracle{}
	sink := &fakeSink{}

	// Default one second settle: the close always wins the race.
	e := NewEngine(wake, oracle.answer, sink)

	done := startEngine(t, context.Background(), e)
	wake <- struct{}{}
	close(wake)

	require.NoError(t, <-done)
	assert.Zero(t, oracle.callCount(), "no decision after the stream ends")
	assert.Empty(t, sink.applied())
}

func TestEngineStopsOnContextCancel(t *testing.T) {
	wake := make(chan struct{})
	e := NewEngine(wake, (&fakeOracle{}).answer, &fakeSink{})

	ctx, cancel := context.WithCancel(context.Background())
	done := startEngine(t, ctx, e)
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
}

func TestEngineOracleErrorIsFatal(t *testing.T) {
	wake := make(chan struct{}, 1)
	errBoom := errors.New("pactl list failed")
	oracle := &fakeOracle{err: errBoom}
	sink := &fakeSink{}

	e := NewEngine(wake, oracle.answer, sink)
	e.settle = 10 * time.Millisecond

	done := startEngine(t, context.Background(), e)
	wake <- struct{}{}

	require.ErrorIs(t, <-done, errBoom)
	assert.Empty(t, sink.applied())
}

func TestEngineSinkErrorIsFatal(t *testing.T) {
	wake := make(chan struct{}, 1)
	errBoom := errors.New("compositor gone")
	oracle := &fakeOracle{answers: []bool{true}}
	sink := &fakeSink{err: errBoom}

	e := NewEngine(wake, oracle.answer, sink)
	e.settle = 10 * time.Millisecond

	done := startEngine(t, context.Background(), e)
	wake <- struct{}{}

	require.ErrorIs(t, <-done, errBoom)
}

func TestEngineFollowsPlaybackTransitions(t *testing.T) {
	wake := make(chan struct{}, 1)
	oracle := &fakeOracle{answers: []bool{true, false}}
	sink := &fakeSink{}

	e := NewEngine(wake, oracle.answer, sink)
	e.settle = 10 * time.Millisecond
	applied := make(chan Status, 1)
	e.Notify = func(s Status) { applied <- s }

	done := startEngine(t, context.Background(), e)

	wake <- struct{}{}
	first := <-applied
	assert.True(t, first.Inhibited)

	wake <- struct{}{}
	second := <-applied
	assert.False(t, second.Inhibited)

	close(wake)
	require.NoError(t, <-done)
	assert.Equal(t, []bool{true, false}, sink.applied())
	assert.Equal(t, 2, oracle.callCount())
}
