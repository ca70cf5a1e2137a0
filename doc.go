// Package tick provides a reactor-based, non-blocking network I/O core:
// a single-threaded event loop that multiplexes readiness across many
// Transports using the platform's native polling mechanism, dispatching
// to a per-connection Protocol state machine.
//
// # Architecture
//
// [Tick] owns a slab of registered Listeners and streams, a platform
// poller, and an inbound message queue fed by [Transfer] and [Notify].
// Each registered Transport is paired with a [Protocol] produced by a
// [ProtocolFactory]; the Protocol's OnReadable/OnWritable/OnError/
// OnRemove methods drive the connection's behavior, returning an
// [Interest] that tells the reactor which directions to watch next.
//
// # Platform support
//
// I/O polling uses the platform's native readiness mechanism:
//   - Linux: epoll, edge-triggered one-shot for streams, level-triggered
//     persistent for listeners
//   - macOS: kqueue, EV_ONESHOT for streams, persistent for listeners
//   - Windows: IOCP (completion-port dispatch for registered sockets is
//     not yet implemented; see poller_windows.go)
//
// # Thread safety
//
// [Tick.Run] pins the calling goroutine to its OS thread for the
// duration of the loop. [Transfer.Interest] and the methods on [Notify]
// are safe to call from any goroutine; they post a message and wake the
// reactor, which applies the change during its next notify-dispatch
// phase. Protocol methods are only ever called from the reactor
// goroutine.
//
// # Usage
//
//	factory := tick.ProtocolFactoryFunc(func(tr tick.Transfer, id tick.Id) (tick.Protocol, tick.Interest) {
//	    return newEchoProtocol(tr), tick.Read
//	})
//	t, err := tick.New(factory, tick.WithMetrics(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := t.Accept(listener); err != nil {
//	    log.Fatal(err)
//	}
//	if err := t.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
package tick
