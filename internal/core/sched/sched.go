// Package sched provides a manually advanced scheduler. Time only moves when
// Advance is called, so the owner decides which goroutine runs the callbacks
// and tests can step the countdown without waiting on a wall clock.
package sched

import "time"

// Scheduler runs periodic callbacks against a virtual clock.
// It is not safe for concurrent use; drive it from a single goroutine.
type Scheduler struct {
	now    time.Duration
	timers []*Timer
	seq    uint64
}

// Timer is a periodic callback registered with Every.
type Timer struct {
	interval time.Duration
	due      time.Duration
	seq      uint64
	fn       func()
	stopped  bool
}

// New creates a scheduler whose clock starts at zero.
func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the virtual time elapsed since the scheduler was created.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Every registers fn to run each time interval elapses, starting one interval
// from now. Non-positive intervals are treated as one nanosecond.
func (s *Scheduler) Every(interval time.Duration, fn func()) *Timer {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	s.seq++
	t := &Timer{
		interval: interval,
		due:      s.now + interval,
		seq:      s.seq,
		fn:       fn,
	}
	s.timers = append(s.timers, t)
	return t
}

// Stop cancels the timer. It is safe to call from inside the timer's own callback
// and more than once.
func (t *Timer) Stop() {
	if t != nil {
		t.stopped = true
	}
}

// Stopped reports whether Stop has been called.
func (t *Timer) Stopped() bool {
	return t == nil || t.stopped
}

// Advance moves the clock forward by dt and fires every callback that falls due,
// earliest first. Timers due at the same instant fire in registration order.
// A step spanning several intervals fires a timer once per interval.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		return
	}
	target := s.now + dt

	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.now = next.due
		next.due += next.interval
		next.fn()
	}

	s.now = target
	s.prune()
}

// Pending returns the number of live timers.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (s *Scheduler) nextDue(limit time.Duration) *Timer {
	var best *Timer
	for _, t := range s.timers {
		if t.stopped || t.due > limit {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *Scheduler) prune() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = live
}
