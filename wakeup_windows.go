//go:build windows

package tick

// newWakeFd returns -1, -1 on Windows: wake-up is done through
// PostQueuedCompletionStatus against the IOCP handle directly rather than
// through a file descriptor (see signalIOCP in poller_windows.go).
func newWakeFd() (readFd, writeFd int, err error) {
	return -1, -1, nil
}

func closeWakeFd(readFd, writeFd int) error {
	return nil
}

func signalWakeFd(writeFd int) error {
	return nil
}

func drainWakeFd(readFd int) {
}
