package engine

import (
	"sync"
	"time"
)

// TimerState is the countdown clock's lifecycle state.
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerExpired
	TimerStopped
)

// Timer emits one decrement callback per interval while running and exactly
// one expiry callback when the count reaches zero. Start while running is a
// no-op so a session can never hold two clocks; Stop is idempotent and
// irrevocable: once it returns, no further callback will begin.
type Timer struct {
	mu        sync.Mutex
	state     TimerState
	remaining int
	done      chan struct{}

	interval time.Duration
	onTick   func(remaining int)
	onExpire func()
}

func NewTimer(onTick func(remaining int), onExpire func()) *Timer {
	return &Timer{
		interval: time.Second,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Start begins counting down from seconds. Starting at zero or below expires
// immediately, with no tick events.
func (t *Timer) Start(seconds int) {
	t.mu.Lock()
	if t.state == TimerRunning {
		t.mu.Unlock()
		return
	}
	t.state = TimerRunning
	t.remaining = seconds
	t.done = make(chan struct{})
	done := t.done
	t.mu.Unlock()

	go t.run(done)
}

// Stop halts the clock with no further tick or expiry events.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerRunning {
		return
	}
	t.state = TimerStopped
	close(t.done)
}

// State returns the current lifecycle state.
func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the current count.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) run(done chan struct{}) {
	t.mu.Lock()
	if t.remaining <= 0 {
		if t.state != TimerRunning || t.done != done {
			t.mu.Unlock()
			return
		}
		t.state = TimerExpired
		t.mu.Unlock()
		if t.onExpire != nil {
			t.onExpire()
		}
		return
	}
	t.mu.Unlock()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.state != TimerRunning || t.done != done {
				t.mu.Unlock()
				return
			}
			t.remaining--
			remaining := t.remaining
			expired := remaining <= 0
			if expired {
				t.state = TimerExpired
			}
			t.mu.Unlock()

			if t.onTick != nil {
				t.onTick(remaining)
			}
			if expired {
				if t.onExpire != nil {
					t.onExpire()
				}
				return
			}
		}
	}
}
