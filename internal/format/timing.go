package format

import (
	"sync"
	"time"
)

// Debounce returns a trigger that runs fn once delay has passed without
// another trigger, and a cancel that drops any pending run.
func Debounce(fn func(), delay time.Duration) (trigger func(), cancel func()) {
	var mu sync.Mutex
	var timer *time.Timer

	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, fn)
	}
	cancel = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
			timer = nil
		}
	}
	return trigger, cancel
}

// Throttle returns a function that runs fn at most once per delay. With
// leading the first call runs immediately; with trailing a call arriving
// inside the window is deferred to its end, replacing any earlier deferred call.
func Throttle(fn func(), delay time.Duration, leading, trailing bool) func() {
	var mu sync.Mutex
	var last time.Time
	var pending *time.Timer

	return func() {
		mu.Lock()
		now := time.Now()
		runNow := (last.IsZero() && leading) || (!last.IsZero() && now.Sub(last) >= delay)
		if runNow {
			last = now
			if pending != nil {
				pending.Stop()
				pending = nil
			}
			mu.Unlock()
			fn()
			return
		}
		if trailing {
			if pending != nil {
				pending.Stop()
			}
			wait := delay
			if !last.IsZero() {
				wait = delay - now.Sub(last)
			}
			pending = time.AfterFunc(wait, func() {
				mu.Lock()
				last = time.Now()
				pending = nil
				mu.Unlock()
				fn()
			})
		}
		mu.Unlock()
	}
}
