package tick

import "time"

// Notify is a cloneable, reactor-wide handle for injecting shutdown and
// timeouts from outside the reactor goroutine — the counterpart to
// Transfer, which addresses a single endpoint (spec §4.7/§4.8).
type Notify struct {
	post func(message)
	wake func()
}

func newNotify(post func(message), wake func()) Notify {
	return Notify{post: post, wake: wake}
}

// Shutdown signals the reactor to terminate after completing its current
// turn.
func (n Notify) Shutdown() {
	n.post(message{shutdown: true})
	n.wake()
}

// Timeout schedules fn to run on the reactor goroutine after at least
// delay has elapsed. The wait itself happens off the reactor goroutine
// (time.AfterFunc's own runtime timer); only the posted callback runs
// during the reactor's notify-dispatch phase, so fn never races a
// Protocol callback.
func (n Notify) Timeout(delay time.Duration, fn func()) {
	time.AfterFunc(delay, func() {
		n.post(message{isTimer: true, timerFn: fn})
		n.wake()
	})
}
