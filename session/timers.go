package session

import (
	"sync"
	"time"
)

type timerKey struct {
	room   string
	player string
}

// TimerSet owns the adapter's cancellable scheduled tasks: disconnect
// grace periods keyed by (room, player) and reveal delays keyed by room
// alone (empty player). Scheduling over an existing key replaces it.
type TimerSet struct {
	mu     sync.Mutex
	timers map[timerKey]*time.Timer
}

func NewTimerSet() *TimerSet {
	return &TimerSet{timers: map[timerKey]*time.Timer{}}
}

func (ts *TimerSet) Schedule(room, player string, d time.Duration, fn func()) {
	key := timerKey{room: room, player: player}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if old, ok := ts.timers[key]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		ts.mu.Lock()
		// A replacement may have been scheduled after this one fired but
		// before it took the lock; only the current owner proceeds.
		if ts.timers[key] == t {
			delete(ts.timers, key)
			ts.mu.Unlock()
			fn()
			return
		}
		ts.mu.Unlock()
	})
	ts.timers[key] = t
}

// Cancel stops a pending task. Reports whether one was pending.
func (ts *TimerSet) Cancel(room, player string) bool {
	key := timerKey{room: room, player: player}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t, ok := ts.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(ts.timers, key)
	return true
}
