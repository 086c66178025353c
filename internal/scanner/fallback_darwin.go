//go:build darwin

package scanner

func newPlatformFallback() *commandFallback {
	// macOS netstat has no owner column, lsof does
	return &commandFallback{
		name:    "lsof",
		args:    []string{"-iTCP", "-sTCP:LISTEN", "-P", "-n", "+c", "0"},
		timeout: FallbackTimeout,
		// lsof returns exit code 1 when no results, that's ok
		okExitCodes: []int{1},
		parse:       parseLsofOutput,
	}
}
