//go:build darwin

package tick

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// maxFDLimit bounds dynamic growth of the fd table.
const maxFDLimit = 100000000

// fdEntry stores per-fd registration metadata.
type fdEntry struct {
	id     Id
	events IOEvents
	mode   regMode
	active bool
}

// kqueuePoller is the Darwin/BSD kqueue backend, grounded on the teacher's
// FastPoller but keyed by Id and extended with a one-shot registration
// mode for streams.
type kqueuePoller struct {
	kq       int32
	eventBuf [256]unix.Kevent_t
	fds      []fdEntry
	fdMu     sync.RWMutex
	closed   atomic.Bool
}

func newPoller() poller {
	return &kqueuePoller{}
}

func (p *kqueuePoller) Init() error {
	if p.closed.Load() {
		return ErrPollerClosed
	}
	kq, err := unix.Kqueue()
	if err != nil {
		return err
	}
	unix.CloseOnExec(kq)
	p.kq = int32(kq)
	p.fds = make([]fdEntry, 1024)
	return nil
}

func (p *kqueuePoller) Close() error {
	p.closed.Store(true)
	if p.kq > 0 {
		return unix.Close(int(p.kq))
	}
	return nil
}

func (p *kqueuePoller) grow(fd int) {
	if fd < len(p.fds) {
		return
	}
	newSize := fd*2 + 1
	if newSize > maxFDLimit {
		newSize = maxFDLimit + 1
	}
	grown := make([]fdEntry, newSize)
	copy(grown, p.fds)
	p.fds = grown
}

func (p *kqueuePoller) RegisterFD(fd int, id Id, events IOEvents, mode regMode) error {
	if p.closed.Load() {
		return ErrPollerClosed
	}
	if fd < 0 || fd >= maxFDLimit {
		return ErrFDOutOfRange
	}

	p.fdMu.Lock()
	p.grow(fd)
	if p.fds[fd].active {
		p.fdMu.Unlock()
		return ErrFDAlreadyRegistered
	}
	p.fds[fd] = fdEntry{id: id, events: events, mode: mode, active: true}
	p.fdMu.Unlock()

	kevents := eventsToKevents(fd, events, addFlags(mode))
	if len(kevents) > 0 {
		if _, err := unix.Kevent(int(p.kq), kevents, nil, nil); err != nil {
			p.fdMu.Lock()
			p.fds[fd] = fdEntry{}
			p.fdMu.Unlock()
			return err
		}
	}
	return nil
}

func (p *kqueuePoller) ModifyFD(fd int, events IOEvents) error {
	if fd < 0 {
		return ErrFDOutOfRange
	}

	p.fdMu.Lock()
	if fd >= len(p.fds) || !p.fds[fd].active {
		p.fdMu.Unlock()
		return ErrFDNotRegistered
	}
	old := p.fds[fd].events
	mode := p.fds[fd].mode
	p.fds[fd].events = events
	p.fdMu.Unlock()

	if old&^events != 0 {
		del := eventsToKevents(fd, old&^events, unix.EV_DELETE)
		if len(del) > 0 {
			unix.Kevent(int(p.kq), del, nil, nil)
		}
	}
	if events&^old != 0 {
		add := eventsToKevents(fd, events&^old, addFlags(mode))
		if len(add) > 0 {
			if _, err := unix.Kevent(int(p.kq), add, nil, nil); err != nil {
				return err
			}
		}
	}
	// A one-shot filter that fired and is being re-armed with the same
	// direction needs an explicit re-add: EV_ONESHOT consumes the
	// registration on delivery even though our bookkeeping still shows it
	// as the desired event set.
	if mode == modeEdgeOneshot {
		same := eventsToKevents(fd, events&old, addFlags(mode))
		if len(same) > 0 {
			unix.Kevent(int(p.kq), same, nil, nil)
		}
	}
	return nil
}

func (p *kqueuePoller) UnregisterFD(fd int) error {
	if fd < 0 {
		return ErrFDOutOfRange
	}

	p.fdMu.Lock()
	if fd >= len(p.fds) || !p.fds[fd].active {
		p.fdMu.Unlock()
		return ErrFDNotRegistered
	}
	events := p.fds[fd].events
	p.fds[fd] = fdEntry{}
	p.fdMu.Unlock()

	kevents := eventsToKevents(fd, events, unix.EV_DELETE)
	if len(kevents) > 0 {
		unix.Kevent(int(p.kq), kevents, nil, nil)
	}
	return nil
}

func (p *kqueuePoller) PollIO(timeoutMs int, onEvent func(id Id, events IOEvents)) (int, error) {
	if p.closed.Load() {
		return 0, ErrPollerClosed
	}

	var ts *unix.Timespec
	if timeoutMs >= 0 {
		ts = &unix.Timespec{
			Sec:  int64(timeoutMs / 1000),
			Nsec: int64((timeoutMs % 1000) * 1000000),
		}
	}

	n, err := unix.Kevent(int(p.kq), nil, p.eventBuf[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}

	p.dispatchEvents(n, onEvent)
	return n, nil
}

func (p *kqueuePoller) dispatchEvents(n int, onEvent func(id Id, events IOEvents)) {
	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Ident)
		if fd < 0 {
			continue
		}

		p.fdMu.RLock()
		var entry fdEntry
		if fd < len(p.fds) {
			entry = p.fds[fd]
		}
		p.fdMu.RUnlock()

		if !entry.active {
			continue
		}
		onEvent(entry.id, keventToEvents(&p.eventBuf[i]))
	}
}

// addFlags returns the EV_ADD flags for a registration mode: streams add
// EV_ONESHOT so the kernel auto-disables the filter after one delivery,
// mirroring epoll's EPOLLONESHOT; listeners stay persistent.
func addFlags(mode regMode) uint16 {
	flags := uint16(unix.EV_ADD | unix.EV_ENABLE)
	if mode == modeEdgeOneshot {
		flags |= unix.EV_ONESHOT
	}
	return flags
}

func eventsToKevents(fd int, events IOEvents, flags uint16) []unix.Kevent_t {
	var kevents []unix.Kevent_t
	if events&EventRead != 0 {
		kevents = append(kevents, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_READ,
			Flags:  flags,
		})
	}
	if events&EventWrite != 0 {
		kevents = append(kevents, unix.Kevent_t{
			Ident:  uint64(fd),
			Filter: unix.EVFILT_WRITE,
			Flags:  flags,
		})
	}
	return kevents
}

func keventToEvents(kev *unix.Kevent_t) IOEvents {
	var events IOEvents
	switch kev.Filter {
	case unix.EVFILT_READ:
		events |= EventRead
	case unix.EVFILT_WRITE:
		events |= EventWrite
	}
	if kev.Flags&unix.EV_ERROR != 0 {
		events |= EventError
	}
	if kev.Flags&unix.EV_EOF != 0 {
		events |= EventHangup
	}
	return events
}
