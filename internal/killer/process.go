package killer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/shirou/gopsutil/v4/process"
)

// osProcessTable inspects processes through gopsutil and signals them with
// the platform's native call
type osProcessTable struct{}

func (osProcessTable) Exists(ctx context.Context, pid int) (bool, error) {
	exists, err := process.PidExistsWithContext(ctx, int32(pid))
	if err != nil {
		return false, classify(err)
	}
	return exists, nil
}

func (osProcessTable) Name(ctx context.Context, pid int) (string, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return "", classify(err)
	}

	name, err := p.NameWithContext(ctx)
	if err != nil {
		return "", classify(err)
	}
	return name, nil
}

func (osProcessTable) Signal(ctx context.Context, pid int, m Method) error {
	if err := signalProcess(ctx, pid, m); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps OS and gopsutil errors onto ErrProcessNotFound / ErrPermission
func classify(err error) error {
	switch {
	case errors.Is(err, ErrProcessNotFound), errors.Is(err, ErrPermission):
		return err
	case errors.Is(err, process.ErrorProcessNotRunning), errors.Is(err, fs.ErrNotExist), isNoSuchProcess(err):
		return fmt.Errorf("%w: %v", ErrProcessNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	return err
}
