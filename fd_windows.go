//go:build windows

package tick

import "syscall"

// extractFD retrieves the raw handle behind rc.
func extractFD(rc syscall.RawConn) (int, error) {
	var fd int
	err := rc.Control(func(fdPtr uintptr) {
		fd = int(fdPtr)
	})
	if err != nil {
		return 0, err
	}
	return fd, nil
}

// setNonblock is a no-op on Windows: overlapped I/O handles don't use
// the POSIX non-blocking flag.
func setNonblock(fd int) error {
	return nil
}
