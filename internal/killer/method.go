package killer

import (
	"fmt"
	"strings"
)

// Method selects the termination signal
type Method int

const (
	// Graceful asks the process to exit (SIGTERM)
	Graceful Method = iota
	// Force ends the process unconditionally (SIGKILL)
	Force
)

func (m Method) String() string {
	if m == Force {
		return "SIGKILL"
	}
	return "SIGTERM"
}

// ParseMethod parses a kill method preference. Unrecognized values fall back
// to Graceful and are reported through the returned error.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "SIGTERM", "TERM", "GRACEFUL":
		return Graceful, nil
	case "SIGKILL", "KILL", "FORCE":
		return Force, nil
	}
	return Graceful, fmt.Errorf("unrecognized kill method %q, using %s", s, Graceful)
}

// MethodFor returns Force when force is set, Graceful otherwise
func MethodFor(force bool) Method {
	if force {
		return Force
	}
	return Graceful
}
