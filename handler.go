package tick

import (
	"sync"
)

// endpointKind distinguishes a listener slot from a stream slot in the
// handler's slab, mirroring the original crate's Evented<P, T> enum.
type endpointKind uint8

const (
	kindListener endpointKind = iota
	kindStream
)

// endpoint is the slab's stored value: either a listener or a stream,
// tagged so dispatch can tell them apart without a type switch on an
// interface.
type endpoint struct {
	kind     endpointKind
	listener Listener
	stream   *stream
	fd       int
}

// handler owns the slab, the notifier, and the inbound message queue; it
// implements the dispatch responsibilities of spec §4.6: ready dispatch,
// notify dispatch, then register/unregister. It is built on the
// teacher's tick()/poll()/dispatchEvents() cadence, generalized from a
// single Loop type into the reactor's own Id-keyed dispatch.
type handler struct {
	slab    *slab[*endpoint]
	poller  poller
	factory ProtocolFactory
	log     Logger
	metrics *metrics

	msgMu    sync.Mutex
	inbox    []message
	inboxCap int
	wakeR    int
	wakeW    int
	pending  *boolFlag
}

// boolFlag coalesces wake-ups across arbitrary callers, not just a
// single Transfer (used by the reactor-wide Notify path).
type boolFlag struct {
	mu sync.Mutex
	v  bool
}

func (f *boolFlag) trySet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.v {
		return false
	}
	f.v = true
	return true
}

func (f *boolFlag) clear() {
	f.mu.Lock()
	f.v = false
	f.mu.Unlock()
}

func newHandler(capacity, notifyCapacity int, factory ProtocolFactory, log Logger, m *metrics) (*handler, error) {
	h := &handler{
		slab:     newSlab[*endpoint](capacity),
		poller:   newPoller(),
		factory:  factory,
		log:      log,
		metrics:  m,
		pending:  &boolFlag{},
		inboxCap: notifyCapacity,
	}
	if err := h.poller.Init(); err != nil {
		return nil, WrapIo(err)
	}
	readFd, writeFd, err := newWakeFd()
	if err != nil {
		_ = h.poller.Close()
		return nil, WrapIo(err)
	}
	h.wakeR, h.wakeW = readFd, writeFd
	return h, nil
}

func (h *handler) close() {
	_ = h.poller.Close()
	if h.wakeR >= 0 {
		_ = closeWakeFd(h.wakeR, h.wakeW)
	}
}

// wake posts a wake-up to the reactor's notifier wait, coalesced behind
// pending so concurrent Transfer/Notify callers collapse onto one write.
func (h *handler) wake() {
	if h.wakeW < 0 {
		return
	}
	if h.pending.trySet() {
		_ = signalWakeFd(h.wakeW)
	}
}

// post enqueues msg for the next notify-dispatch phase. Once the inbox
// reaches inboxCap (if set), the oldest undelivered message for the same
// Id is dropped to make room, logged at Warn: Go's unbounded slice queue
// has no natural backpressure point equivalent to mio::Sender's bounded
// channel, so capacity is enforced here instead of at the call site.
func (h *handler) post(msg message) {
	h.msgMu.Lock()
	defer h.msgMu.Unlock()
	if h.inboxCap > 0 && len(h.inbox) >= h.inboxCap {
		h.inbox = h.inbox[1:]
		h.log.Warnf("notify queue at capacity (%d); dropping oldest message", h.inboxCap)
	}
	h.inbox = append(h.inbox, msg)
}

// addListener inserts and registers lis, level-triggered read-only,
// persistent for its lifetime (spec §4.5).
func (h *handler) addListener(lis Listener) (Id, error) {
	rc, err := lis.SyscallConn()
	if err != nil {
		return Id{}, WrapIo(err)
	}
	fd, err := extractFD(rc)
	if err != nil {
		return Id{}, WrapIo(err)
	}

	ep := &endpoint{kind: kindListener, listener: lis, fd: fd}
	id, err := h.slab.Insert(ep)
	if err != nil {
		if h.metrics != nil {
			h.metrics.overload.Add(1)
		}
		return Id{}, err
	}
	if err := h.poller.RegisterFD(fd, id, EventRead, modeLevelPersistent); err != nil {
		h.slab.Remove(id)
		return Id{}, WrapIo(err)
	}
	if h.metrics != nil {
		h.metrics.listeners.Add(1)
	}
	return id, nil
}

// addStream inserts transport, invokes the factory for its Protocol and
// initial Interest, registers it edge-triggered one-shot, and returns
// its Id.
func (h *handler) addStream(transport Transport) (Id, error) {
	rc, err := transport.SyscallConn()
	if err != nil {
		return Id{}, WrapIo(err)
	}
	fd, err := extractFD(rc)
	if err != nil {
		return Id{}, WrapIo(err)
	}

	var id Id
	ep := &endpoint{kind: kindStream, fd: fd}
	id, err = h.slab.Insert(ep)
	if err != nil {
		if h.metrics != nil {
			h.metrics.overload.Add(1)
		}
		return Id{}, err
	}

	transfer := newTransfer(id, h.post, h.wake)
	protocol, initial := h.factory.New(transfer, id)
	st := newStream(fd, transport, protocol, transfer, initial)
	ep.stream = st
	h.slab.Set(id, ep)

	act, events := initial.toAction()
	switch act {
	case actionRegister:
		if err := h.poller.RegisterFD(fd, id, events, modeEdgeOneshot); err != nil {
			h.slab.Remove(id)
			return Id{}, WrapIo(err)
		}
		st.lastReg, st.hasLastReg = initial, true
	case actionRemove:
		h.slab.Remove(id)
		protocol.OnRemove(transport)
	case actionWait:
		// no registration: the stream starts quiescent, waiting for a
		// Transfer to post an Interest change.
	}
	if h.metrics != nil {
		h.metrics.streams.Add(1)
	}
	return id, nil
}

// onReady is the poller's dispatch callback: ready dispatch from spec
// §4.6.
func (h *handler) onReady(id Id, events IOEvents) {
	ep, ok := h.slab.Get(id)
	if !ok {
		h.log.Warnf("ready event for unknown id %v", id)
		return
	}

	switch ep.kind {
	case kindListener:
		h.acceptLoop(id, ep)
	case kindStream:
		ep.stream.ready(events)
		h.applyAction(id, ep)
	}
}

// acceptLoop drains a listener's pending connections, registering each
// as a new stream, per spec §4.6's "on success recursively register the
// child" rule.
func (h *handler) acceptLoop(id Id, ep *endpoint) {
	for {
		transport, err := ep.listener.Accept()
		if err != nil {
			switch classifyIOErr(err) {
			case ioErrWouldBlock:
				return
			case ioErrInterrupted:
				continue
			default:
				h.log.Errorf("listener %v: fatal accept error: %v", id, err)
				return
			}
		}
		if transport == nil {
			return // spurious readiness
		}
		if _, err := h.addStream(transport); err != nil {
			h.log.Errorf("listener %v: failed to register accepted stream: %v", id, err)
			_ = transport.Close()
			continue
		}
		if h.metrics != nil {
			h.metrics.accepted.Add(1)
		}
	}
}

// applyAction translates the stream's current Interest into the action
// the handler must apply (spec §4.5), coalescing no-ops.
func (h *handler) applyAction(id Id, ep *endpoint) {
	act, events := ep.stream.action()
	switch act {
	case actionWait:
		return
	case actionRegister:
		if err := h.poller.ModifyFD(ep.fd, events); err != nil {
			h.log.Errorf("stream %v: re-registration failed: %v", id, err)
		}
	case actionRemove:
		h.removeStream(id, ep)
	}
}

func (h *handler) removeStream(id Id, ep *endpoint) {
	if err := h.poller.UnregisterFD(ep.fd); err != nil {
		h.log.Warnf("stream %v: deregistration error (ignored): %v", id, err)
	}
	h.slab.Remove(id)
	ep.stream.protocol.OnRemove(ep.stream.transport)
	if h.metrics != nil {
		h.metrics.streams.Add(-1)
		h.metrics.removed.Add(1)
	}
}

// drainMessages runs the notify-dispatch phase of spec §4.6: every
// message queued since the last turn is folded into the slab.
func (h *handler) drainMessages(onTimer func(fn func()), onShutdown func()) {
	if h.wakeR >= 0 {
		drainWakeFd(h.wakeR)
	}
	h.pending.clear()

	h.msgMu.Lock()
	msgs := h.inbox
	h.inbox = nil
	h.msgMu.Unlock()

	for _, msg := range msgs {
		switch {
		case msg.shutdown:
			onShutdown()
		case msg.isTimer:
			onTimer(msg.timerFn)
		default:
			h.applyInterestMessage(msg)
		}
	}
}

// applyInterestMessage implements spec §4.6's synthesize-virtual-
// readiness step: add i to the stream's Interest, then pretend the
// requested directions are already ready so a Protocol that wants to
// write gets a chance to do so immediately, rather than waiting for the
// next real edge the kernel may never deliver (since the prior edge was
// already consumed).
func (h *handler) applyInterestMessage(msg message) {
	ep, ok := h.slab.Get(msg.id)
	if !ok || ep.kind != kindStream {
		h.log.Debugf("interest message for unknown/retired id %v dropped", msg.id)
		return
	}
	ep.stream.transfer.acknowledge()
	ep.stream.applyInterest(msg.interest)

	_, synthesized := msg.interest.toAction()
	if synthesized != 0 {
		ep.stream.ready(synthesized)
	}
	h.applyAction(msg.id, ep)
}

// turn runs one reactor iteration: poll for readiness up to timeoutMs,
// dispatch it, then drain the message inbox.
func (h *handler) turn(timeoutMs int, onTimer func(fn func()), onShutdown func()) error {
	_, err := h.poller.PollIO(timeoutMs, h.onReady)
	if err != nil {
		return WrapIo(err)
	}
	h.drainMessages(onTimer, onShutdown)
	return nil
}
