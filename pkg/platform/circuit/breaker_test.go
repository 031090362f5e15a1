package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outcome is one observed backend call: true for a healthy response.
type outcome bool

const (
	ok   outcome = true
	fail outcome = false
)

func replay(b *Breaker, calls ...outcome) Change {
	var last Change
	for _, c := range calls {
		if c {
			_, last = b.RecordSuccess()
		} else {
			_, last = b.RecordFailure()
		}
	}
	return last
}

func TestBreaker_NewIsClosed(t *testing.T) {
	b := New("marketplace")

	assert.Equal(t, "marketplace", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
	assert.True(t, b.Allow())
}

func TestBreaker_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		failures   int
		successes  int
		calls      []outcome
		wantOpen   bool
		wantChange Change
	}{
		{
			name:     "failures below threshold keep it closed",
			failures: 3,
			calls:    []outcome{fail, fail},
		},
		{
			name:       "reaching the threshold opens",
			failures:   3,
			calls:      []outcome{fail, fail, fail},
			wantOpen:   true,
			wantChange: Change{Opened: true},
		},
		{
			name:     "success while closed resets the failure streak",
			failures: 3,
			calls:    []outcome{fail, fail, ok, fail, fail},
		},
		{
			name:     "further failures while open report no change",
			failures: 1,
			calls:    []outcome{fail, fail},
			wantOpen: true,
		},
		{
			name:      "one success is not enough to close",
			failures:  1,
			successes: 2,
			calls:     []outcome{fail, ok},
			wantOpen:  true,
		},
		{
			name:       "success threshold closes",
			failures:   1,
			successes:  2,
			calls:      []outcome{fail, ok, ok},
			wantChange: Change{Closed: true},
		},
		{
			name:      "failure while open restarts the recovery streak",
			failures:  1,
			successes: 3,
			calls:     []outcome{fail, ok, ok, fail, ok, ok},
			wantOpen:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{WithFailureThreshold(tt.failures)}
			if tt.successes > 0 {
				opts = append(opts, WithSuccessThreshold(tt.successes))
			}
			b := New("marketplace", opts...)

			change := replay(b, tt.calls...)

			assert.Equal(t, tt.wantOpen, b.IsOpen())
			assert.Equal(t, tt.wantChange, change)
		})
	}
}

func TestBreaker_RecordReportsFallback(t *testing.T) {
	b := New("marketplace", WithFailureThreshold(2))

	useFallback, _ := b.RecordFailure()
	assert.False(t, useFallback)
	useFallback, _ = b.RecordFailure()
	assert.True(t, useFallback)

	usePrimary, _ := b.RecordSuccess()
	assert.False(t, usePrimary, "still open after a single probe success")
}

func TestBreaker_ResetClosesImmediately(t *testing.T) {
	b := New("marketplace", WithFailureThreshold(1))
	replay(b, fail)
	require.True(t, b.IsOpen())

	b.Reset()

	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_AllowProbesAfterCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("marketplace",
		WithFailureThreshold(1),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)

	assert.True(t, b.Allow())
	replay(b, fail)
	assert.False(t, b.Allow())

	now = now.Add(9 * time.Second)
	assert.False(t, b.Allow(), "cooldown not elapsed")

	now = now.Add(time.Second)
	assert.True(t, b.Allow(), "one probe after cooldown")
	assert.False(t, b.Allow(), "only one probe per cooldown")
}
