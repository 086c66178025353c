//go:build linux

package scanner

func newPlatformFallback() *commandFallback {
	// netstat -tulpn: TCP+UDP, listening, numeric, show PID/program
	return &commandFallback{
		name:    "netstat",
		args:    []string{"-tulpn"},
		timeout: FallbackTimeout,
		parse:   parseNetstatOutput,
	}
}
