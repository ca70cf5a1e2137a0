package tick

// Protocol drives one Transport's application-level behavior. All
// methods run on the reactor goroutine only, to synchronous completion;
// a Protocol need not be safe for concurrent use.
type Protocol interface {
	// OnReadable is invoked when the endpoint is readable. The
	// implementation drains the transport in a loop until it sees
	// ErrWouldBlock or decides to stop; the returned Interest becomes the
	// stream's next Interest. An error return is classified by
	// classifyIOErr: WouldBlock ends the read loop for this turn,
	// Interrupted retries immediately, anything else is fatal and is
	// delivered to OnError.
	OnReadable(t Transport) (Interest, error)
	// OnWritable is the symmetric operation for writability.
	OnWritable(t Transport) (Interest, error)
	// OnError is invoked at most once per stream lifetime, immediately
	// before the endpoint transitions to Remove.
	OnError(err error)
	// OnRemove is invoked exactly once, after the endpoint has been
	// deregistered, handing the transport back for final disposal.
	OnRemove(t Transport)
}

// ProtocolFactory creates a Protocol for each new stream — whether
// accepted from a Listener or submitted directly via Tick.Stream — given
// a Transfer the Protocol may retain to influence its own registration
// from outside the reactor goroutine, and the Id the reactor assigned.
// It returns the Protocol along with its initial Interest.
type ProtocolFactory interface {
	New(transfer Transfer, id Id) (Protocol, Interest)
}

// ProtocolFactoryFunc adapts a function to a ProtocolFactory, mirroring
// the blanket Factory implementation for FnMut in the original crate and
// Go's own http.HandlerFunc idiom.
type ProtocolFactoryFunc func(transfer Transfer, id Id) (Protocol, Interest)

// New implements ProtocolFactory.
func (f ProtocolFactoryFunc) New(transfer Transfer, id Id) (Protocol, Interest) {
	return f(transfer, id)
}

// BaseProtocol supplies a no-op OnError and the default OnRemove
// behavior (close the transport), so concrete Protocols can embed it and
// override only the methods they need.
type BaseProtocol struct{}

// OnError is a no-op default; most protocols log inside their own
// OnError override instead.
func (BaseProtocol) OnError(error) {}

// OnRemove closes t.
func (BaseProtocol) OnRemove(t Transport) {
	_ = t.Close()
}
