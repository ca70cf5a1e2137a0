//go:build darwin

package tick

import (
	"syscall"
)

// newWakeFd creates a self-pipe used to wake the reactor's notifier wait
// from another goroutine.
func newWakeFd() (readFd, writeFd int, err error) {
	var fds [2]int
	if err := syscall.Pipe(fds[:]); err != nil {
		return 0, 0, err
	}
	syscall.CloseOnExec(fds[0])
	syscall.CloseOnExec(fds[1])
	if err := syscall.SetNonblock(fds[0], true); err != nil {
		syscall.Close(fds[0])
		syscall.Close(fds[1])
		return 0, 0, err
	}
	if err := syscall.SetNonblock(fds[1], true); err != nil {
		syscall.Close(fds[0])
		syscall.Close(fds[1])
		return 0, 0, err
	}
	return fds[0], fds[1], nil
}

// closeWakeFd closes both ends of the self-pipe.
func closeWakeFd(readFd, writeFd int) error {
	if readFd >= 0 {
		_ = syscall.Close(readFd)
	}
	if writeFd >= 0 && writeFd != readFd {
		_ = syscall.Close(writeFd)
	}
	return nil
}

// signalWakeFd posts a single wake-up byte.
func signalWakeFd(writeFd int) error {
	_, err := syscall.Write(writeFd, []byte{1})
	if err != nil && err != syscall.EAGAIN {
		return err
	}
	return nil
}

// drainWakeFd consumes all pending wake-up bytes.
func drainWakeFd(readFd int) {
	var buf [64]byte
	for {
		n, err := syscall.Read(readFd, buf[:])
		if err != nil || n == 0 {
			return
		}
	}
}
