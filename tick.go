package tick

import (
	"context"
	"runtime"
)

// defaultPollTimeoutMs bounds how long a single turn's PollIO call can
// block when nothing else would otherwise wake it, so Run can still
// observe ctx cancellation promptly.
const defaultPollTimeoutMs = 250

// Tick is the reactor facade: the public surface for registering
// listeners and streams, obtaining a Notify handle, and driving turns
// to completion (spec §4.8).
type Tick struct {
	h     *handler
	state *fastState
	cfg   *TickConfig
}

// New constructs a Tick using factory to build a Protocol for every
// accepted or directly-registered Transport.
func New(factory ProtocolFactory, opts ...TickOption) (*Tick, error) {
	cfg := resolveTickConfig(opts)

	var m *metrics
	if cfg.metrics {
		m = newMetrics()
	}

	h, err := newHandler(cfg.TransportsCapacity, cfg.NotifyCapacity, factory, cfg.logger, m)
	if err != nil {
		return nil, err
	}

	return &Tick{
		h:     h,
		state: newFastState(),
		cfg:   cfg,
	}, nil
}

// Accept registers lis as a listener, level-triggered and read-only for
// its lifetime; every accepted connection is handed to the factory as
// its own stream.
func (t *Tick) Accept(lis Listener) (Id, error) {
	return t.h.addListener(lis)
}

// Stream registers transport directly as a stream, bypassing Accept,
// for callers that already hold a connected Transport (e.g. an
// outbound dial).
func (t *Tick) Stream(transport Transport) (Id, error) {
	return t.h.addStream(transport)
}

// Notify returns a cloneable handle for injecting shutdown and timeouts
// from outside the reactor goroutine.
func (t *Tick) Notify() Notify {
	return newNotify(t.h.post, t.h.wake)
}

// Metrics returns a point-in-time snapshot of the reactor's counters.
// It returns the zero Snapshot if WithMetrics was never enabled.
func (t *Tick) Metrics() Snapshot {
	if t.h.metrics == nil {
		return Snapshot{}
	}
	return t.h.metrics.snapshot()
}

// Run drives turns until ctx is cancelled or Notify.Shutdown is called,
// pinning the calling goroutine to its OS thread for the duration: the
// platform notifier's wait primitive (epoll_wait/kevent/
// GetQueuedCompletionStatus) must be issued from the same thread that
// registered the descriptors (spec §5).
func (t *Tick) Run(ctx context.Context) error {
	if !t.state.TryTransition(StateAwake, StateRunning) {
		switch t.state.Load() {
		case StateTerminated:
			return ErrTerminated
		default:
			return ErrAlreadyRunning
		}
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer t.h.close()

	shutdown := false
	onShutdown := func() { shutdown = true }
	onTimer := func(fn func()) {
		if fn != nil {
			fn()
		}
	}

	for {
		if ctx.Err() != nil {
			shutdown = true
		}
		if shutdown {
			t.state.Store(StateTerminating)
			t.state.Store(StateTerminated)
			return nil
		}

		t.state.Store(StateRunning)
		if err := t.h.turn(defaultPollTimeoutMs, onTimer, onShutdown); err != nil {
			t.state.Store(StateTerminated)
			return err
		}
		t.state.Store(StateSleeping)
	}
}

// RunUntilComplete runs turns until id is no longer present in the
// slab (the stream was removed, or the Id was never registered) or ctx
// is cancelled. It is meant for tests and simple single-connection
// clients; for servers, use Run with Notify.Shutdown.
func (t *Tick) RunUntilComplete(ctx context.Context, id Id) error {
	if !t.state.TryTransition(StateAwake, StateRunning) {
		switch t.state.Load() {
		case StateTerminated:
			return ErrTerminated
		default:
			return ErrAlreadyRunning
		}
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer t.h.close()

	shutdown := false
	onShutdown := func() { shutdown = true }
	onTimer := func(fn func()) {
		if fn != nil {
			fn()
		}
	}

	for {
		if _, ok := t.h.slab.Get(id); !ok {
			t.state.Store(StateTerminated)
			return nil
		}
		if ctx.Err() != nil || shutdown {
			t.state.Store(StateTerminated)
			return ctx.Err()
		}

		t.state.Store(StateRunning)
		if err := t.h.turn(defaultPollTimeoutMs, onTimer, onShutdown); err != nil {
			t.state.Store(StateTerminated)
			return err
		}
		t.state.Store(StateSleeping)
	}
}

// Close terminates the reactor immediately, releasing the notifier and
// wake-up descriptors. It is safe to call even if Run was never
// started; calling it while Run is active on another goroutine is not
// supported (use Notify().Shutdown() instead).
func (t *Tick) Close() error {
	if t.state.Load() == StateTerminated {
		return nil
	}
	t.state.Store(StateTerminated)
	t.h.close()
	return nil
}
