package scanner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/sony/gobreaker"
)

const (
	statusListen = "LISTEN"

	// breakerFailures consecutive systemic failures send scans straight to the
	// fallback for breakerCooldown
	breakerFailures = 3
	breakerCooldown = 30 * time.Second
)

var errNoOwner = errors.New("socket has no visible owner")

type connectionsFunc func(ctx context.Context) ([]psnet.ConnectionStat, error)

type processNameFunc func(ctx context.Context, pid int32) (string, error)

// Enumerator lists listening sockets through the OS connection table and
// falls back to the platform diagnostic command when that table is unavailable.
type Enumerator struct {
	connections connectionsFunc
	processName processNameFunc
	fallback    Scanner
	breaker     *gobreaker.CircuitBreaker
}

// New returns an enumerator for the current platform
func New() *Enumerator {
	return newEnumerator(inetConnections, resolveProcessName, newPlatformFallback())
}

func newEnumerator(conns connectionsFunc, name processNameFunc, fallback *commandFallback) *Enumerator {
	return &Enumerator{
		connections: conns,
		processName: name,
		fallback:    fallback,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "socket-table",
			MaxRequests: 1,
			Timeout:     breakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Debug().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("breaker state changed")
			},
		}),
	}
}

func inetConnections(ctx context.Context) ([]psnet.ConnectionStat, error) {
	return psnet.ConnectionsWithContext(ctx, "inet")
}

func resolveProcessName(ctx context.Context, pid int32) (string, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}

// Scan returns listening sockets in OS enumeration order. Sockets whose owner
// exited or cannot be inspected are skipped one by one.
func (e *Enumerator) Scan(ctx context.Context, includeSystem bool) []Port {
	conns, err := e.listConnections(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error scanning ports, using fallback command")
		return e.fallback.Scan(ctx, includeSystem)
	}

	ports := make([]Port, 0, len(conns))
	for _, conn := range conns {
		port, err := e.toPort(ctx, conn, includeSystem)
		if err != nil {
			if !errors.Is(err, errNotListening) && !errors.Is(err, errSystemPort) {
				log.Debug().Err(err).Int32("pid", conn.Pid).Uint32("port", conn.Laddr.Port).Msg("skipping socket")
			}
			continue
		}
		ports = append(ports, port)
	}

	return ports
}

func (e *Enumerator) listConnections(ctx context.Context) ([]psnet.ConnectionStat, error) {
	res, err := e.breaker.Execute(func() (interface{}, error) {
		return e.connections(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.([]psnet.ConnectionStat), nil
}

func (e *Enumerator) toPort(ctx context.Context, conn psnet.ConnectionStat, includeSystem bool) (Port, error) {
	if conn.Status != statusListen || conn.Laddr.Port == 0 {
		return Port{}, errNotListening
	}

	port := int(conn.Laddr.Port)
	if !allowed(port, includeSystem) {
		return Port{}, errSystemPort
	}
	if conn.Pid <= 0 {
		return Port{}, errNoOwner
	}

	name, err := e.processName(ctx, conn.Pid)
	if err != nil {
		return Port{}, fmt.Errorf("resolve process %d: %w", conn.Pid, err)
	}
	if name == "" {
		name = UnknownProcess
	}

	proto := UDP
	if conn.Type == syscall.SOCK_STREAM {
		proto = TCP
	}

	var remote string
	if conn.Raddr.IP != "" && conn.Raddr.Port != 0 {
		remote = formatAddr(conn.Raddr)
	}

	return Port{
		Port:          port,
		Protocol:      proto,
		PID:           int(conn.Pid),
		Process:       name,
		LocalAddress:  formatAddr(conn.Laddr),
		RemoteAddress: remote,
	}, nil
}

func formatAddr(addr psnet.Addr) string {
	return net.JoinHostPort(addr.IP, strconv.FormatUint(uint64(addr.Port), 10))
}
