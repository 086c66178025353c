//go:build !linux && !darwin && !windows

package scanner

func newPlatformFallback() *commandFallback {
	return nil
}
