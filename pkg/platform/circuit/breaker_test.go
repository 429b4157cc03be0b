package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outcomes are written as a string of deliveries: 'f' failed, 's' succeeded.
func replay(b *Breaker, outcomes string) (opened, closed bool) {
	for _, o := range outcomes {
		switch o {
		case 'f':
			_, change := b.RecordFailure()
			opened = opened || change.Opened
		case 's':
			_, change := b.RecordSuccess()
			closed = closed || change.Closed
		}
	}
	return opened, closed
}

func TestBreaker_DeliverySequences(t *testing.T) {
	tests := []struct {
		name       string
		failures   int
		successes  int
		outcomes   string
		wantOpen   bool
		wantOpened bool
		wantClosed bool
	}{
		{name: "fresh webhook is closed", failures: 3, successes: 1, outcomes: "", wantOpen: false},
		{name: "two failed posts stay under threshold", failures: 3, successes: 1, outcomes: "ff", wantOpen: false},
		{name: "third failed post trips", failures: 3, successes: 1, outcomes: "fff", wantOpen: true, wantOpened: true},
		{name: "a delivery in between resets failures", failures: 3, successes: 1, outcomes: "ffsff", wantOpen: false},
		{name: "recovery needs consecutive deliveries", failures: 1, successes: 2, outcomes: "fs", wantOpen: true, wantOpened: true},
		{name: "recovery closes", failures: 1, successes: 2, outcomes: "fss", wantOpen: false, wantOpened: true, wantClosed: true},
		{name: "failure during recovery restarts the count", failures: 1, successes: 3, outcomes: "fssfss", wantOpen: true, wantOpened: true},
		{name: "full recovery after restart", failures: 1, successes: 3, outcomes: "fssfsss", wantOpen: false, wantOpened: true, wantClosed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("webhook", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.successes))
			opened, closed := replay(b, tt.outcomes)
			assert.Equal(t, tt.wantOpen, b.IsOpen())
			assert.Equal(t, tt.wantOpened, opened)
			assert.Equal(t, tt.wantClosed, closed)
		})
	}
}

func TestBreaker_OpenReportsFallbackOnce(t *testing.T) {
	b := New("webhook", WithFailureThreshold(1))
	assert.Equal(t, "webhook", b.Name())
	assert.Equal(t, StateClosed, b.State())

	useFallback, change := b.RecordFailure()
	require.True(t, useFallback)
	require.True(t, change.Opened)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened, "already open")

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_CooldownGatesProbes(t *testing.T) {
	now := time.Date(2022, 12, 27, 9, 0, 0, 0, time.UTC)
	b := New("webhook", WithFailureThreshold(1), WithCooldown(time.Minute),
		withClock(func() time.Time { return now }))

	b.RecordFailure()
	assert.False(t, b.Allow(), "open breaker refuses calls during cooldown")

	now = now.Add(time.Minute)
	assert.True(t, b.Allow(), "probe admitted after cooldown")

	// A failed probe restarts the cooldown.
	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(time.Minute)
	_, change := b.RecordSuccess()
	assert.True(t, change.Closed)
	assert.True(t, b.Allow())
	assert.Equal(t, "closed", b.State().String())
}
