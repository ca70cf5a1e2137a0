//go:build linux

package tick

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// maxFDs bounds the direct-indexed fd table; it is independent of (and
// typically much larger than) the slab's Config.Capacity.
const maxFDs = 65536

// fdEntry stores per-fd registration metadata.
type fdEntry struct {
	id     Id
	events IOEvents
	mode   regMode
	active bool
}

// epollPoller is the Linux epoll backend, grounded on the teacher's
// FastPoller but keyed by Id rather than an opaque per-fd closure, and
// extended with a one-shot registration mode for streams.
type epollPoller struct {
	epfd     int32
	eventBuf [256]unix.EpollEvent
	fds      [maxFDs]fdEntry
	fdMu     sync.RWMutex
	version  atomic.Uint64
	closed   atomic.Bool
}

func newPoller() poller {
	return &epollPoller{}
}

func (p *epollPoller) Init() error {
	if p.closed.Load() {
		return ErrPollerClosed
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	p.epfd = int32(epfd)
	return nil
}

func (p *epollPoller) Close() error {
	p.closed.Store(true)
	if p.epfd > 0 {
		return unix.Close(int(p.epfd))
	}
	return nil
}

func (p *epollPoller) RegisterFD(fd int, id Id, events IOEvents, mode regMode) error {
	if p.closed.Load() {
		return ErrPollerClosed
	}
	if fd < 0 || fd >= maxFDs {
		return ErrFDOutOfRange
	}

	p.fdMu.Lock()
	if p.fds[fd].active {
		p.fdMu.Unlock()
		return ErrFDAlreadyRegistered
	}
	p.fds[fd] = fdEntry{id: id, events: events, mode: mode, active: true}
	p.version.Add(1)
	p.fdMu.Unlock()

	ev := &unix.EpollEvent{
		Events: eventsToEpoll(events, mode),
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(int(p.epfd), unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		p.fdMu.Lock()
		p.fds[fd] = fdEntry{}
		p.fdMu.Unlock()
		return err
	}
	return nil
}

func (p *epollPoller) ModifyFD(fd int, events IOEvents) error {
	if fd < 0 || fd >= maxFDs {
		return ErrFDOutOfRange
	}

	p.fdMu.Lock()
	if !p.fds[fd].active {
		p.fdMu.Unlock()
		return ErrFDNotRegistered
	}
	p.fds[fd].events = events
	mode := p.fds[fd].mode
	p.version.Add(1)
	p.fdMu.Unlock()

	ev := &unix.EpollEvent{
		Events: eventsToEpoll(events, mode),
		Fd:     int32(fd),
	}
	return unix.EpollCtl(int(p.epfd), unix.EPOLL_CTL_MOD, fd, ev)
}

func (p *epollPoller) UnregisterFD(fd int) error {
	if fd < 0 || fd >= maxFDs {
		return ErrFDOutOfRange
	}

	p.fdMu.Lock()
	if !p.fds[fd].active {
		p.fdMu.Unlock()
		return ErrFDNotRegistered
	}
	p.fds[fd] = fdEntry{}
	p.version.Add(1)
	p.fdMu.Unlock()

	return unix.EpollCtl(int(p.epfd), unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) PollIO(timeoutMs int, onEvent func(id Id, events IOEvents)) (int, error) {
	if p.closed.Load() {
		return 0, ErrPollerClosed
	}

	v := p.version.Load()

	n, err := unix.EpollWait(int(p.epfd), p.eventBuf[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}

	if p.version.Load() != v {
		// The fd table changed mid-wait (a concurrent registration or
		// removal); discard this batch rather than risk dispatching to a
		// stale or recycled fd.
		return 0, nil
	}

	p.dispatchEvents(n, onEvent)
	return n, nil
}

func (p *epollPoller) dispatchEvents(n int, onEvent func(id Id, events IOEvents)) {
	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Fd)
		if fd < 0 || fd >= maxFDs {
			continue
		}

		p.fdMu.RLock()
		entry := p.fds[fd]
		p.fdMu.RUnlock()

		if !entry.active {
			continue
		}
		onEvent(entry.id, epollToEvents(p.eventBuf[i].Events))
	}
}

func eventsToEpoll(events IOEvents, mode regMode) uint32 {
	var e uint32
	if events&EventRead != 0 {
		e |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		e |= unix.EPOLLOUT
	}
	if mode == modeEdgeOneshot {
		e |= unix.EPOLLET | unix.EPOLLONESHOT
	}
	return e
}

func epollToEvents(epollEvents uint32) IOEvents {
	var events IOEvents
	if epollEvents&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if epollEvents&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if epollEvents&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if epollEvents&unix.EPOLLHUP != 0 || epollEvents&unix.EPOLLRDHUP != 0 {
		events |= EventHangup
	}
	return events
}
