// Package net adapts the standard library's net.TCPConn/net.TCPListener
// to tick.Transport/tick.Listener, grounded on the same raw-fd
// extraction fd_unix.go uses for registration, but going one step
// further: every Read/Write/Accept issues its syscall directly through
// syscall.RawConn's callback, so the call never parks on the Go
// runtime's own netpoller. That poller would otherwise race the
// reactor's epoll/kqueue registration for the same descriptor.
package net

import (
	stdnet "net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/seanmonstar/tick"
)

// TCPConn adapts a *net.TCPConn to tick.Transport.
type TCPConn struct {
	conn *stdnet.TCPConn
	raw  syscall.RawConn
}

// NewTCPConn wraps conn for registration with a Tick reactor. conn must
// not be used directly afterward: its Read/Write/Close methods would
// race the reactor's own use of the descriptor.
func NewTCPConn(conn *stdnet.TCPConn) (*TCPConn, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, err
	}
	return &TCPConn{conn: conn, raw: raw}, nil
}

// Read implements tick.Transport.
func (c *TCPConn) Read(p []byte) (int, error) {
	var n int
	var opErr error
	err := c.raw.Read(func(fd uintptr) bool {
		n, opErr = unix.Read(int(fd), p)
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, classifyErrno(opErr)
}

// Write implements tick.Transport.
func (c *TCPConn) Write(p []byte) (int, error) {
	var n int
	var opErr error
	err := c.raw.Write(func(fd uintptr) bool {
		n, opErr = unix.Write(int(fd), p)
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, classifyErrno(opErr)
}

// Close implements tick.Transport.
func (c *TCPConn) Close() error {
	return c.conn.Close()
}

// SyscallConn implements tick.Transport.
func (c *TCPConn) SyscallConn() (syscall.RawConn, error) {
	return c.conn.SyscallConn()
}

// classifyErrno turns EAGAIN/EWOULDBLOCK into tick.ErrWouldBlock so
// classifyIOErr's errors.Is check recognizes it without inspecting
// syscall.Errno directly.
func classifyErrno(err error) error {
	if err == nil {
		return nil
	}
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return tick.ErrWouldBlock
	}
	return err
}

// TCPListener adapts a *net.TCPListener to tick.Listener.
type TCPListener struct {
	ln  *stdnet.TCPListener
	raw syscall.RawConn
}

// NewTCPListener wraps ln for registration with a Tick reactor.
func NewTCPListener(ln *stdnet.TCPListener) (*TCPListener, error) {
	raw, err := ln.SyscallConn()
	if err != nil {
		return nil, err
	}
	return &TCPListener{ln: ln, raw: raw}, nil
}

// Accept implements tick.Listener, issuing accept4 directly against the
// listening descriptor so a pending connection is never left for Go's
// runtime poller to hand back through the blocking Accept API.
func (l *TCPListener) Accept() (tick.Transport, error) {
	var nfd int
	var opErr error
	err := l.raw.Read(func(fd uintptr) bool {
		nfd, _, opErr = unix.Accept4(int(fd), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		return true
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, classifyErrno(opErr)
	}

	f := os.NewFile(uintptr(nfd), "tcp-conn")
	defer f.Close()
	conn, err := stdnet.FileConn(f)
	if err != nil {
		_ = unix.Close(nfd)
		return nil, err
	}
	tcpConn, ok := conn.(*stdnet.TCPConn)
	if !ok {
		_ = conn.Close()
		return nil, tick.WrapError("accepted connection was not TCP", syscall.EINVAL)
	}
	return NewTCPConn(tcpConn)
}

// Close implements tick.Listener.
func (l *TCPListener) Close() error {
	return l.ln.Close()
}

// SyscallConn implements tick.Listener.
func (l *TCPListener) SyscallConn() (syscall.RawConn, error) {
	return l.ln.SyscallConn()
}
