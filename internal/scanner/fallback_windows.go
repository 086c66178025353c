//go:build windows

package scanner

func newPlatformFallback() *commandFallback {
	// netstat -ano: all connections, numeric, owner PID
	return &commandFallback{
		name:    "netstat",
		args:    []string{"-ano"},
		timeout: FallbackTimeout,
		parse:   parseNetstatAnoOutput,
	}
}
