package audio

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRelevantEvent(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"playback stream change", "Event 'change' on sink-input #1", true},
		{"capture stream change", "Event 'change' on source-output #2", true},
		{"new stream", "Event 'new' on sink-input #1", false},
		{"removed stream", "Event 'remove' on source-output #5", false},
		{"device change", "Event 'change' on sink #0", false},
		{"source device change", "Event 'change' on source #1", false},
		{"card change", "Event 'change' on card #0", false},
		{"client change", "Event 'change' on client #7", false},
		{"empty line", "", false},
		{"unrelated output", "Connection failure: Connection refused", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevantEvent(tt.line))
		})
	}
}

// collectWakes runs consume over canned subscription output and counts the
// wakes it delivered before closing the channel.
func collectWakes(t *testing.T, input string) (int, error) {
	t.Helper()

	wake := make(chan struct{}, 64)
	m := NewMonitor("pactl", wake)
	err := m.consume(context.Background(), strings.NewReader(input))

	count := 0
	for range wake {
		count++
	}
	return count, err
}

func TestConsumeSignalsStartupWake(t *testing.T) {
	count, err := collectWakes(t, "")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "an empty stream still delivers the startup wake")
}

func TestConsumeSignalsRelevantEventsOnly(t *testing.T) {
	input := strings.Join([]string{
		"Event 'new' on client #42",
		"Event 'change' on sink-input #1",
		"Event 'change' on sink #0",
		"Event 'change' on source-output #2",
		"Event 'remove' on client #42",
	}, "\n") + "\n"

	count, err := collectWakes(t, input)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "startup wake plus one per stream change")
}

func TestConsumeClosesWakeOnEOF(t *testing.T) {
	wake := make(chan struct{}, 8)
	m := NewMonitor("pactl", wake)

	err := m.consume(context.Background(), strings.NewReader("Event 'change' on sink-input #1\n"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		<-wake
	}
	_, open := <-wake
	assert.False(t, open, "wake channel must close when the stream ends")
}

func TestConsumeBlocksUntilWakeConsumed(t *testing.T) {
	input := strings.Join([]string{
		"Event 'change' on sink-input #1",
		"Event 'change' on sink-input #1",
		"Event 'change' on source-output #3",
		"Event 'change' on sink-input #2",
	}, "\n") + "\n"

	// Unbuffered channel with a slow receiver: every wake must still
	// arrive because the sender blocks instead of dropping.
	wake := make(chan struct{})
	m := NewMonitor("pactl", wake)

	received := make(chan int, 1)
	go func() {
		count := 0
		for range wake {
			count++
			time.Sleep(time.Millisecond)
		}
		received <- count
	}()

	err := m.consume(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 5, <-received, "startup wake plus four stream changes, none dropped")
}

func TestConsumeRejectsNonTextOutput(t *testing.T) {
	count, err := collectWakes(t, "Event 'change' on sink-input \xff#1\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-text")
	assert.Equal(t, 1, count, "only the startup wake before the bad line")
}

func TestConsumeStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// No receiver and no buffer: the startup wake blocks until the
	// context bails it out.
	wake := make(chan struct{})
	m := NewMonitor("pactl", wake)

	err := m.consume(ctx, strings.NewReader("Event 'change' on sink-input #1\n"))
	require.ErrorIs(t, err, context.Canceled)

	_, open := <-wake
	assert.False(t, open, "wake channel closes even on early exit")
}
