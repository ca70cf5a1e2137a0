package tick

// Interest is the five-valued declaration of what a Protocol currently
// wants from the reactor: Wait (temporarily quiescent; only an external
// Transfer can wake it), Read, Write, ReadWrite, or the terminal Remove.
type Interest uint8

const (
	// Wait deregisters readiness; the endpoint is quiescent until an
	// external Transfer posts an Interest change.
	Wait Interest = iota
	// Read wants the readable edge.
	Read
	// Write wants the writable edge.
	Write
	// ReadWrite wants both edges.
	ReadWrite
	// Remove is terminal: the endpoint is deregistered and dropped in the
	// same handler turn this Interest is observed.
	Remove
)

// String returns a human-readable name, used in log lines.
func (i Interest) String() string {
	switch i {
	case Wait:
		return "Wait"
	case Read:
		return "Read"
	case Write:
		return "Write"
	case ReadWrite:
		return "ReadWrite"
	case Remove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// Add computes the least upper bound of i and other on the lattice
// Wait < {Read, Write} < ReadWrite, with Remove absorbing: once either
// operand is Remove, the sum is Remove.
func (i Interest) Add(other Interest) Interest {
	if i == Remove || other == Remove {
		return Remove
	}
	if i == other {
		return i
	}
	if i == Wait {
		return other
	}
	if other == Wait {
		return i
	}
	// {Read, Write} combined with the other non-equal, non-Wait value is
	// ReadWrite; ReadWrite combined with anything non-Wait stays ReadWrite.
	if i == ReadWrite || other == ReadWrite {
		return ReadWrite
	}
	// i and other are distinct members of {Read, Write}.
	return ReadWrite
}

// Sub removes a direction from the receiver: subtracting Read from
// ReadWrite yields Write and vice versa. Subtracting Wait or Remove from
// anything, or subtracting from Wait or Remove, is a no-op (returns the
// receiver unchanged) per spec §3.
func (i Interest) Sub(other Interest) Interest {
	if i == Wait || i == Remove {
		return i
	}
	if other == Wait || other == Remove {
		return i
	}
	if i == other {
		return Wait
	}
	if i == ReadWrite {
		switch other {
		case Read:
			return Write
		case Write:
			return Read
		}
		return i
	}
	// i is Read or Write, other is the opposite single direction: no-op.
	return i
}

// action is the handler-internal translation of an Interest into a
// notifier operation, per spec §4.5.
type action uint8

const (
	actionWait action = iota
	actionRegister
	actionRemove
)

// toAction translates a stream's current Interest into the Action the
// handler must apply. Listeners never pass through this translation: they
// are registered level-triggered for read only and their readiness always
// means accept (spec §4.5).
func (i Interest) toAction() (action, IOEvents) {
	switch i {
	case Wait:
		return actionWait, 0
	case Read:
		return actionRegister, EventRead
	case Write:
		return actionRegister, EventWrite
	case ReadWrite:
		return actionRegister, EventRead | EventWrite
	case Remove:
		return actionRemove, 0
	default:
		return actionWait, 0
	}
}
