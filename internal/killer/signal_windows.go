//go:build windows

package killer

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/windows"
)

// Windows has no SIGTERM; Terminate and Kill both end the process
func signalProcess(ctx context.Context, pid int, m Method) error {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return err
	}
	if m == Force {
		return p.KillWithContext(ctx)
	}
	return p.TerminateWithContext(ctx)
}

func isNoSuchProcess(err error) bool {
	return errors.Is(err, windows.ERROR_INVALID_PARAMETER)
}
