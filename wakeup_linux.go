//go:build linux

package tick

import (
	"golang.org/x/sys/unix"
)

// newWakeFd creates an eventfd used to wake the reactor's notifier wait
// from another goroutine. The same fd serves as both read and write end.
func newWakeFd() (readFd, writeFd int, err error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return 0, 0, err
	}
	return fd, fd, nil
}

// closeWakeFd closes the wake eventfd.
func closeWakeFd(readFd, writeFd int) error {
	if readFd >= 0 {
		return unix.Close(readFd)
	}
	return nil
}

// signalWakeFd posts a single wake-up.
func signalWakeFd(writeFd int) error {
	var buf [8]byte
	buf[7] = 1
	_, err := unix.Write(writeFd, buf[:])
	if err != nil && err != unix.EAGAIN {
		return err
	}
	return nil
}

// drainWakeFd consumes all pending wake-ups so the eventfd's counter
// returns to zero.
func drainWakeFd(readFd int) {
	var buf [8]byte
	for {
		if _, err := unix.Read(readFd, buf[:]); err != nil {
			return
		}
	}
}
