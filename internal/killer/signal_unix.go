//go:build !windows

package killer

import (
	"context"
	"errors"

	"golang.org/x/sys/unix"
)

func signalProcess(_ context.Context, pid int, m Method) error {
	sig := unix.SIGTERM
	if m == Force {
		sig = unix.SIGKILL
	}
	return unix.Kill(pid, sig)
}

func isNoSuchProcess(err error) bool {
	return errors.Is(err, unix.ESRCH)
}
