//go:build linux || darwin

package tick

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// extractFD retrieves the raw file descriptor behind rc, the way
// net/tcp.go's adapters expose their socket for RegisterFD. The
// returned fd must not be closed directly; it is owned by the original
// Transport/Listener.
func extractFD(rc syscall.RawConn) (int, error) {
	var fd int
	var ctrlErr error
	err := rc.Control(func(fdPtr uintptr) {
		fd = int(fdPtr)
	})
	if err != nil {
		return 0, err
	}
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return fd, nil
}

// setNonblock ensures fd is in non-blocking mode, required for every
// Transport the reactor registers (spec §4.1).
func setNonblock(fd int) error {
	return unix.SetNonblock(fd, true)
}
