//go:build windows

package tick

import (
	"sync"
	"syscall"

	"golang.org/x/sys/windows"
)

// iocpPoller is a minimal IOCP-backed poller kept for build-tag parity
// with the Linux/Darwin backends. It supports the notify/shutdown wake
// path but does not yet implement per-socket overlapped I/O dispatch;
// Windows Transport registration is out of scope (see SPEC_FULL.md).
type iocpPoller struct {
	iocp   windows.Handle
	fdMu   sync.RWMutex
	closed bool
}

func newPoller() poller {
	return &iocpPoller{}
}

func (p *iocpPoller) Init() error {
	iocp, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return err
	}
	p.iocp = iocp
	return nil
}

func (p *iocpPoller) Close() error {
	p.fdMu.Lock()
	p.closed = true
	p.fdMu.Unlock()
	if p.iocp != 0 {
		return windows.CloseHandle(p.iocp)
	}
	return nil
}

func (p *iocpPoller) RegisterFD(fd int, id Id, events IOEvents, mode regMode) error {
	handle := windows.Handle(fd)
	_, err := windows.CreateIoCompletionPort(handle, p.iocp, 0, 0)
	return err
}

func (p *iocpPoller) ModifyFD(fd int, events IOEvents) error {
	// IOCP readiness is driven by posted overlapped operations rather than
	// a re-arm call; nothing to do here until overlapped I/O is wired up.
	return nil
}

func (p *iocpPoller) UnregisterFD(fd int) error {
	// Closing the handle removes its IOCP association automatically.
	return nil
}

func (p *iocpPoller) PollIO(timeoutMs int, onEvent func(id Id, events IOEvents)) (int, error) {
	p.fdMu.RLock()
	closed := p.closed
	p.fdMu.RUnlock()
	if closed {
		return 0, ErrPollerClosed
	}

	var timeout *uint32
	if timeoutMs >= 0 {
		t := uint32(timeoutMs)
		timeout = &t
	}

	var bytes uint32
	var key uintptr
	var overlapped *windows.Overlapped
	err := windows.GetQueuedCompletionStatus(p.iocp, &bytes, &key, &overlapped, timeout)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok && errno == windows.WAIT_TIMEOUT {
			return 0, nil
		}
		return 0, err
	}
	// overlapped == nil signals a PostQueuedCompletionStatus wake, used by
	// the notify path; there is no per-socket event to report yet.
	return 0, nil
}
