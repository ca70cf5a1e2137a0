package net

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// NewPipe returns a connected pair of Transports backed by a
// SOCK_STREAM socketpair, for tests and examples that want the
// reactor's real readiness path without a loopback TCP connection
// (grounded on wakeup_linux.go/wakeup_darwin.go's use of a raw
// descriptor pair for the notifier's own wake-up path).
func NewPipe() (a, b *PipeConn, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, err
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
		return nil, nil, err
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
		return nil, nil, err
	}
	return newPipeConn(fds[0]), newPipeConn(fds[1]), nil
}

// PipeConn is one end of a NewPipe pair.
type PipeConn struct {
	fd int
	f  *os.File
}

func newPipeConn(fd int) *PipeConn {
	return &PipeConn{fd: fd, f: os.NewFile(uintptr(fd), "tick-pipe")}
}

// Read implements tick.Transport.
func (p *PipeConn) Read(b []byte) (int, error) {
	n, err := unix.Read(p.fd, b)
	return n, classifyErrno(err)
}

// Write implements tick.Transport.
func (p *PipeConn) Write(b []byte) (int, error) {
	n, err := unix.Write(p.fd, b)
	return n, classifyErrno(err)
}

// Close implements tick.Transport.
func (p *PipeConn) Close() error {
	return p.f.Close()
}

// SyscallConn implements tick.Transport.
func (p *PipeConn) SyscallConn() (syscall.RawConn, error) {
	return p.f.SyscallConn()
}
