package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoCoalescesBurst(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	d := New(Options{Wait: 30 * time.Millisecond})

	for range 5 {
		d.Do(func() { runs.Add(1) })
	}

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	require.EqualValues(t, 1, runs.Load())
}

func TestDoRunsTheLastCall(t *testing.T) {
	t.Parallel()

	var last atomic.Int32
	d := New(Options{Wait: 20 * time.Millisecond})

	for i := 1; i <= 3; i++ {
		d.Do(func() { last.Store(int32(i)) })
	}

	require.Eventually(t, func() bool { return last.Load() == 3 }, time.Second, 5*time.Millisecond)
}

func TestImmediateFiresOnTheLeadingEdge(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	d := New(Options{Wait: 40 * time.Millisecond, Immediate: true, Queue: true})

	d.Do(func() { runs.Add(1) })
	require.EqualValues(t, 1, runs.Load(), "first call runs synchronously")

	d.Do(func() { runs.Add(1) })
	require.EqualValues(t, 1, runs.Load(), "call inside the window is queued")

	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestImmediateWithoutQueueDropsTheBurst(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	d := New(Options{Wait: 40 * time.Millisecond, Immediate: true})

	d.Do(func() { runs.Add(1) })
	d.Do(func() { runs.Add(1) })
	d.Do(func() { runs.Add(1) })

	time.Sleep(80 * time.Millisecond)
	require.EqualValues(t, 1, runs.Load())

	// The window has passed, so the next call is a fresh leading edge.
	d.Do(func() { runs.Add(1) })
	require.EqualValues(t, 2, runs.Load())
}

func TestStopAbandonsTheScheduledRun(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	d := New(Options{Wait: 20 * time.Millisecond})

	d.Do(func() { runs.Add(1) })
	require.True(t, d.Pending())

	d.Stop()
	require.False(t, d.Pending())

	time.Sleep(50 * time.Millisecond)
	require.Zero(t, runs.Load())
}

func TestZeroWaitUsesTheDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultWait, New(Options{}).wait)
}
