package dispatch

import (
	"testing"
	"time"
)

// fakeClock drives a throttle deterministically: sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	current time.Time
	sleeps  []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.current = c.current.Add(d)
}

func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestThrottle(minInterval time.Duration, windowCap int, cooldown time.Duration) (*throttle, *fakeClock) {
	clock := newFakeClock()
	th := newThrottle(minInterval, windowCap, cooldown)
	th.now = clock.now
	th.sleep = clock.sleep
	return th, clock
}

func TestThrottle_FirstActionIsImmediate(t *testing.T) {
	th, clock := newTestThrottle(500*time.Millisecond, 30, 2*time.Second)
	if slept := th.wait(); slept != 0 {
		t.Errorf("first wait slept %v, want 0", slept)
	}
	if len(clock.sleeps) != 0 {
		t.Errorf("sleeps = %v", clock.sleeps)
	}
}

func TestThrottle_EnforcesMinInterval(t *testing.T) {
	th, clock := newTestThrottle(500*time.Millisecond, 30, 2*time.Second)

	th.wait()
	clock.advance(100 * time.Millisecond)
	if slept := th.wait(); slept != 400*time.Millisecond {
		t.Errorf("second wait slept %v, want 400ms", slept)
	}
}

func TestThrottle_NoSleepWhenIntervalElapsed(t *testing.T) {
	th, clock := newTestThrottle(500*time.Millisecond, 30, 2*time.Second)

	th.wait()
	clock.advance(time.Second)
	if slept := th.wait(); slept != 0 {
		t.Errorf("wait slept %v, want 0 after the interval elapsed", slept)
	}
}

func TestThrottle_CooldownWhenWindowCapExceeded(t *testing.T) {
	th, _ := newTestThrottle(0, 3, 2*time.Second)

	for i := 0; i < 3; i++ {
		if slept := th.wait(); slept != 0 {
			t.Fatalf("action %d slept %v, want 0", i, slept)
		}
	}
	if slept := th.wait(); slept != 2*time.Second {
		t.Errorf("over-cap action slept %v, want the 2s cooldown", slept)
	}
	// Cooldown resets the window, so the next action is free again.
	if slept := th.wait(); slept != 0 {
		t.Errorf("post-cooldown action slept %v, want 0", slept)
	}
}

func TestThrottle_WindowResetsAfterAMinute(t *testing.T) {
	th, clock := newTestThrottle(0, 3, 2*time.Second)

	for i := 0; i < 3; i++ {
		th.wait()
	}
	clock.advance(61 * time.Second)
	if slept := th.wait(); slept != 0 {
		t.Errorf("wait slept %v, want 0 after the window rolled over", slept)
	}
}

func TestThrottle_ZeroCapDisablesWindow(t *testing.T) {
	th, _ := newTestThrottle(0, 0, 2*time.Second)
	for i := 0; i < 100; i++ {
		if slept := th.wait(); slept != 0 {
			t.Fatalf("action %d slept %v with the window disabled", i, slept)
		}
	}
}
