package tick

// stream is the per-connection state the handler keeps in the slab: the
// Transport, its Protocol, and the bookkeeping needed to run the readable/
// writable procedure from spec §4.4 and to coalesce redundant
// re-registrations.
type stream struct {
	transport Transport
	protocol  Protocol
	transfer  Transfer
	interest  Interest // current Interest, result of the last ready() call
	lastReg   Interest // last Interest actually turned into a re-registration
	hasLastReg bool
	fd        int
}

// newStream wraps transport/protocol with the bookkeeping needed to run
// the per-connection state machine, seeded with the factory's initial
// Interest.
func newStream(fd int, transport Transport, protocol Protocol, transfer Transfer, initial Interest) *stream {
	return &stream{
		transport: transport,
		protocol:  protocol,
		transfer:  transfer,
		interest:  initial,
		fd:        fd,
	}
}

// ready runs the fixed procedure from spec §4.4 for one readiness
// delivery and returns the stream's Interest afterward.
func (s *stream) ready(events IOEvents) {
	if events&EventError != 0 {
		s.interest = Remove
		return
	}

	if events&EventRead != 0 {
		s.drainReadable()
		if s.interest == Remove {
			return
		}
	}

	if events&EventWrite != 0 {
		s.drainWritable()
	}
}

// drainReadable calls OnReadable in a loop until would-block, an
// Interrupted retry, or a fatal error, per spec §4.4 step 2.
func (s *stream) drainReadable() {
	for {
		interest, err := s.protocol.OnReadable(s.transport)
		if err == nil {
			s.interest = interest
			return
		}
		switch classifyIOErr(err) {
		case ioErrWouldBlock:
			return
		case ioErrInterrupted:
			continue
		default:
			s.fail(err)
			return
		}
	}
}

// drainWritable is the symmetric operation for writability, spec §4.4
// step 3.
func (s *stream) drainWritable() {
	for {
		interest, err := s.protocol.OnWritable(s.transport)
		if err == nil {
			s.interest = interest
			return
		}
		switch classifyIOErr(err) {
		case ioErrWouldBlock:
			return
		case ioErrInterrupted:
			continue
		default:
			s.fail(err)
			return
		}
	}
}

// fail delivers the fatal cause to the Protocol exactly once and marks
// the stream for removal.
func (s *stream) fail(err error) {
	s.protocol.OnError(err)
	s.interest = Remove
}

// applyInterest folds an externally-posted Interest (from a Transfer
// message) into the stream's current Interest via the lattice Add, per
// spec §4.6's "add i to the stream's current Interest" step.
func (s *stream) applyInterest(i Interest) {
	s.interest = s.interest.Add(i)
}

// action computes the registration action for the stream's current
// Interest, coalescing it against the last Interest actually registered
// (spec §4.4's "remembers the last Interest it translated into a
// re-registration" rule). It reports actionWait when the Interest is
// unchanged from the last registration.
func (s *stream) action() (action, IOEvents) {
	if s.hasLastReg && s.lastReg == s.interest && s.interest != Remove {
		return actionWait, 0
	}
	s.lastReg = s.interest
	s.hasLastReg = true
	return s.interest.toAction()
}
