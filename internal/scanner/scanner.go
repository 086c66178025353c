// Package scanner discovers listening sockets and the processes that own them.
package scanner

import (
	"context"
	"strings"
)

// Protocol is the transport of a listening socket
type Protocol string

const (
	TCP Protocol = "TCP"
	UDP Protocol = "UDP"
)

// UnknownProcess is the display name used when the owner cannot be resolved
const UnknownProcess = "unknown"

// SystemPortLimit is the first port that is not a system port
const SystemPortLimit = 1024

// Port represents a listening port and its associated process
type Port struct {
	Port          int      `json:"port" yaml:"port"`
	Protocol      Protocol `json:"protocol" yaml:"protocol"`
	PID           int      `json:"pid" yaml:"pid"`
	Process       string   `json:"process" yaml:"process"`
	LocalAddress  string   `json:"localAddress" yaml:"localAddress"`
	RemoteAddress string   `json:"remoteAddress,omitempty" yaml:"remoteAddress,omitempty"`
}

// Scanner returns the ports currently in LISTEN state.
// Implementations never fail: errors degrade to an empty or partial list.
type Scanner interface {
	Scan(ctx context.Context, includeSystem bool) []Port
}

// ParseProtocol maps an OS protocol token (tcp, tcp6, UDP, ...) to a Protocol
func ParseProtocol(s string) (Protocol, bool) {
	s = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "6")
	switch Protocol(s) {
	case TCP:
		return TCP, true
	case UDP:
		return UDP, true
	}
	return "", false
}

// allowed applies the system-port policy filter
func allowed(port int, includeSystem bool) bool {
	if port < 1 || port > 65535 {
		return false
	}
	return includeSystem || port >= SystemPortLimit
}
