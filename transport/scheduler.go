package transport

import "time"

// A Scheduler runs functions on a single logical worker — the owning hub's
// main loop. Anything that mutates room state must go through a scheduler
// so that no two handlers for the same room ever run concurrently (see
// spec §5).
type Scheduler struct {
	event chan func()
}

// Add schedules fn to run on the worker that owns this scheduler.
func (s Scheduler) Add(fn func()) {
	s.event <- fn
}

// A FunctionTimer retains bookkeeping for a scheduled repeating or
// one-shot timer so it can be stopped idempotently.
type FunctionTimer struct {
	quit chan struct{}
	once func()
}

// TickingTimer starts a goroutine that calls fn on s every interval until
// Stop is called. All calls to fn happen on the scheduler's worker, never
// on the timer's own goroutine — this is how the bullet-lifetime "safety
// net" in spec §5 stays consistent with tick-driven removal despite firing
// from a separate goroutine.
func TickingTimer(s Scheduler, interval time.Duration, fn func()) FunctionTimer {
	quit := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				s.Add(fn)
			}
		}
	}()

	return FunctionTimer{quit: quit}
}

// SingleTimer calls fn on s once, after delay, unless Stop is called first.
func SingleTimer(s Scheduler, delay time.Duration, fn func()) FunctionTimer {
	quit := make(chan struct{})

	go func() {
		timer := time.NewTimer(delay)

		select {
		case <-timer.C:
			s.Add(fn)
		case <-quit:
			timer.Stop()
		}
	}()

	return FunctionTimer{quit: quit}
}

// Stop ends the timer prematurely. Stop is idempotent: calling it twice,
// or calling it after the timer already fired, is a safe no-op. This
// backs the idempotent-removal guarantee spec §5 requires of bullet
// lifetime expiry.
func (t *FunctionTimer) Stop() {
	if t.quit == nil {
		return
	}

	close(t.quit)
	t.quit = nil
}
