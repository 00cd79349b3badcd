package dispatch

import "time"

// throttle enforces the local action rate limit: a floor between consecutive
// actions, plus an extra cooldown when too many actions land inside one
// rolling window. The clock and sleeper are injectable for tests.
type throttle struct {
	minInterval time.Duration
	windowCap   int
	cooldown    time.Duration

	now   func() time.Time
	sleep func(time.Duration)

	last        time.Time
	windowStart time.Time
	windowCount int
}

func newThrottle(minInterval time.Duration, windowCap int, cooldown time.Duration) *throttle {
	return &throttle{
		minInterval: minInterval,
		windowCap:   windowCap,
		cooldown:    cooldown,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// wait blocks until the next action is allowed. Returns the total time slept.
func (t *throttle) wait() time.Duration {
	var slept time.Duration
	now := t.now()

	if !t.last.IsZero() {
		if elapsed := now.Sub(t.last); elapsed < t.minInterval {
			d := t.minInterval - elapsed
			t.sleep(d)
			slept += d
			now = now.Add(d)
		}
	}

	if t.windowStart.IsZero() || now.Sub(t.windowStart) > time.Minute {
		t.windowStart = now
		t.windowCount = 0
	}
	t.windowCount++
	if t.windowCap > 0 && t.windowCount > t.windowCap {
		t.sleep(t.cooldown)
		slept += t.cooldown
		now = now.Add(t.cooldown)
		t.windowStart = now
		t.windowCount = 0
	}

	t.last = now
	return slept
}
