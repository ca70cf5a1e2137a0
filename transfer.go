package tick

import "sync/atomic"

// message is the cross-thread message a Transfer or Notify posts to the
// reactor's inbound queue, drained during the notify phase of each turn
// (spec §4.6). A stale message whose Id no longer exists in the slab is
// discarded with a log line, never a panic.
type message struct {
	id       Id
	interest Interest
	isTimer  bool
	timerFn  func()
	shutdown bool
}

// Transfer captures an Id plus access to the reactor's inbound message
// queue. Its single semantic operation is Interest: posting an Interest
// change for the endpoint it addresses. Transfer is cheap, copyable, and
// safe to hold past the stream's retirement.
type Transfer struct {
	id       Id
	post     func(message)
	wake     func()
	notified *atomic.Bool
}

func newTransfer(id Id, post func(message), wake func()) Transfer {
	return Transfer{
		id:       id,
		post:     post,
		wake:     wake,
		notified: new(atomic.Bool),
	}
}

// Id returns the endpoint this Transfer addresses.
func (t Transfer) Id() Id {
	return t.id
}

// Interest posts a request that i be added to the endpoint's current
// Interest, then wakes the reactor if it is not already scheduled to
// wake on this Transfer's behalf. The CompareAndSwap collapses
// concurrent callers onto a single wake-up, acknowledged by the handler
// once it has drained this Transfer's pending messages for the turn.
func (t Transfer) Interest(i Interest) {
	t.post(message{id: t.id, interest: i})
	if t.notified.CompareAndSwap(false, true) {
		t.wake()
	}
}

// acknowledge clears the coalescing flag.
func (t Transfer) acknowledge() {
	t.notified.Store(false)
}
