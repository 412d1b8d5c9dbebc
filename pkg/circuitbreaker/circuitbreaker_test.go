package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("broker unavailable")

// fakeClock 手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type transition struct{ from, to State }

func newBreaker(clock *fakeClock, changes *[]transition) *CircuitBreaker {
	return New("mq", Config{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
		OnStateChange: func(_ string, from, to State) {
			*changes = append(*changes, transition{from, to})
		},
		Now: clock.Now,
	})
}

func fail(cb *CircuitBreaker, n int) {
	for i := 0; i < n; i++ {
		_ = cb.Execute(func() error { return errBoom })
	}
}

func TestCircuitBreaker(t *testing.T) {
	t.Run("成功请求保持关闭", func(t *testing.T) {
		var changes []transition
		cb := newBreaker(&fakeClock{now: time.Unix(0, 0)}, &changes)

		for i := 0; i < 10; i++ {
			require.NoError(t, cb.Execute(func() error { return nil }))
		}
		assert.Equal(t, StateClosed, cb.State())
		assert.EqualValues(t, 10, cb.Counts().TotalSuccesses)
		assert.Empty(t, changes)
	})

	t.Run("连续失败达到阈值后快速失败", func(t *testing.T) {
		var changes []transition
		cb := newBreaker(&fakeClock{now: time.Unix(0, 0)}, &changes)

		fail(cb, 3)
		assert.Equal(t, StateOpen, cb.State())

		called := false
		err := cb.Execute(func() error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, ErrOpenState)
		assert.False(t, called)
		assert.Equal(t, []transition{{StateClosed, StateOpen}}, changes)
	})

	t.Run("中间的成功会重置连续失败", func(t *testing.T) {
		var changes []transition
		cb := newBreaker(&fakeClock{now: time.Unix(0, 0)}, &changes)

		fail(cb, 2)
		require.NoError(t, cb.Execute(func() error { return nil }))
		fail(cb, 2)
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("统计窗口到期重置计数", func(t *testing.T) {
		var changes []transition
		clock := &fakeClock{now: time.Unix(0, 0)}
		cb := newBreaker(clock, &changes)

		fail(cb, 2)
		clock.Advance(11 * time.Second)
		fail(cb, 2)
		assert.Equal(t, StateClosed, cb.State())
		assert.EqualValues(t, 2, cb.Counts().ConsecutiveFailures)
	})

	t.Run("超时后半开探测成功则关闭", func(t *testing.T) {
		var changes []transition
		clock := &fakeClock{now: time.Unix(0, 0)}
		cb := newBreaker(clock, &changes)

		fail(cb, 3)
		clock.Advance(31 * time.Second)
		assert.Equal(t, StateHalfOpen, cb.State())

		require.NoError(t, cb.Execute(func() error { return nil }))
		assert.Equal(t, StateClosed, cb.State())
		assert.Equal(t, []transition{
			{StateClosed, StateOpen},
			{StateOpen, StateHalfOpen},
			{StateHalfOpen, StateClosed},
		}, changes)
	})

	t.Run("半开探测失败重新打开", func(t *testing.T) {
		var changes []transition
		clock := &fakeClock{now: time.Unix(0, 0)}
		cb := newBreaker(clock, &changes)

		fail(cb, 3)
		clock.Advance(31 * time.Second)
		fail(cb, 1)
		assert.Equal(t, StateOpen, cb.State())
	})

	t.Run("半开状态限制探测请求数", func(t *testing.T) {
		var changes []transition
		clock := &fakeClock{now: time.Unix(0, 0)}
		cb := newBreaker(clock, &changes)

		fail(cb, 3)
		clock.Advance(31 * time.Second)

		release := make(chan struct{})
		done := make(chan error, 1)
		started := make(chan struct{})
		go func() {
			done <- cb.Execute(func() error {
				close(started)
				<-release
				return nil
			})
		}()
		<-started

		// 探测请求尚未结束，第二个请求被拒绝
		assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpenState)

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, StateClosed, cb.State())
	})
}

func TestDefaults(t *testing.T) {
	cb := New("default", Config{Timeout: time.Minute})
	fail(cb, 4)
	assert.Equal(t, StateClosed, cb.State())
	fail(cb, 1)
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, "default", cb.Name())
	assert.Equal(t, "half_open", StateHalfOpen.String())
}
