package scanner

import (
	"context"
	"errors"
	"os/exec"
	"syscall"
	"testing"
	"time"

	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenConn(port uint32, pid int32, sockType uint32) psnet.ConnectionStat {
	return psnet.ConnectionStat{
		Type:   sockType,
		Laddr:  psnet.Addr{IP: "0.0.0.0", Port: port},
		Status: "LISTEN",
		Pid:    pid,
	}
}

func staticConns(conns ...psnet.ConnectionStat) connectionsFunc {
	return func(context.Context) ([]psnet.ConnectionStat, error) {
		return conns, nil
	}
}

func namesByPID(names map[int32]string) processNameFunc {
	return func(_ context.Context, pid int32) (string, error) {
		name, ok := names[pid]
		if !ok {
			return "", process.ErrorProcessNotRunning
		}
		return name, nil
	}
}

// fakeFallback returns a command fallback that replays output without running anything
func fakeFallback(output string, err error, calls *int) *commandFallback {
	return &commandFallback{
		name:  "netstat",
		args:  []string{"-tulpn"},
		parse: parseNetstatOutput,
		run: func(context.Context, string, ...string) ([]byte, error) {
			if calls != nil {
				*calls++
			}
			return []byte(output), err
		},
	}
}

func TestEnumerator_ListeningOnly(t *testing.T) {
	established := listenConn(5000, 10, syscall.SOCK_STREAM)
	established.Status = "ESTABLISHED"
	established.Raddr = psnet.Addr{IP: "10.0.0.1", Port: 443}

	e := newEnumerator(
		staticConns(
			listenConn(8080, 10, syscall.SOCK_STREAM),
			established,
			listenConn(5353, 11, syscall.SOCK_DGRAM),
		),
		namesByPID(map[int32]string{10: "api", 11: "mdns"}),
		fakeFallback("", nil, nil),
	)

	ports := e.Scan(context.Background(), false)

	require.Len(t, ports, 2)
	assert.Equal(t, Port{Port: 8080, Protocol: TCP, PID: 10, Process: "api", LocalAddress: "0.0.0.0:8080"}, ports[0])
	assert.Equal(t, UDP, ports[1].Protocol)
	assert.Equal(t, "mdns", ports[1].Process)
}

func TestEnumerator_SystemPortFilter(t *testing.T) {
	conns := staticConns(
		listenConn(22, 1, syscall.SOCK_STREAM),
		listenConn(80, 2, syscall.SOCK_STREAM),
		listenConn(1023, 3, syscall.SOCK_STREAM),
		listenConn(1024, 4, syscall.SOCK_STREAM),
		listenConn(3000, 5, syscall.SOCK_STREAM),
	)
	names := namesByPID(map[int32]string{1: "sshd", 2: "nginx", 3: "x", 4: "y", 5: "node"})

	for _, includeSystem := range []bool{false, true} {
		e := newEnumerator(conns, names, fakeFallback("", nil, nil))
		ports := e.Scan(context.Background(), includeSystem)

		for _, p := range ports {
			if !includeSystem {
				assert.GreaterOrEqual(t, p.Port, SystemPortLimit)
			}
		}
		if includeSystem {
			assert.Len(t, ports, 5)
		} else {
			assert.Len(t, ports, 2)
		}
	}
}

func TestEnumerator_SkipsVanishedAndHiddenOwners(t *testing.T) {
	e := newEnumerator(
		staticConns(
			listenConn(3000, 100, syscall.SOCK_STREAM), // exited mid-scan
			listenConn(3001, 0, syscall.SOCK_STREAM),   // owner not visible
			listenConn(3002, 102, syscall.SOCK_STREAM),
		),
		namesByPID(map[int32]string{102: "web"}),
		fakeFallback("", nil, nil),
	)

	ports := e.Scan(context.Background(), false)

	require.Len(t, ports, 1)
	assert.Equal(t, 3002, ports[0].Port)
}

func TestEnumerator_PermissionDeniedSkipsRecord(t *testing.T) {
	names := func(_ context.Context, pid int32) (string, error) {
		if pid == 1 {
			return "", syscall.EACCES
		}
		return "ok", nil
	}
	e := newEnumerator(
		staticConns(listenConn(4000, 1, syscall.SOCK_STREAM), listenConn(4001, 2, syscall.SOCK_STREAM)),
		names,
		fakeFallback("", nil, nil),
	)

	ports := e.Scan(context.Background(), false)

	require.Len(t, ports, 1)
	assert.Equal(t, 4001, ports[0].Port)
}

func TestEnumerator_EmptyNameIsUnknown(t *testing.T) {
	e := newEnumerator(
		staticConns(listenConn(4000, 1, syscall.SOCK_STREAM)),
		namesByPID(map[int32]string{1: ""}),
		fakeFallback("", nil, nil),
	)

	ports := e.Scan(context.Background(), false)

	require.Len(t, ports, 1)
	assert.Equal(t, UnknownProcess, ports[0].Process)
}

func TestEnumerator_IPv6Address(t *testing.T) {
	conn := listenConn(5432, 7, syscall.SOCK_STREAM)
	conn.Laddr.IP = "::1"
	e := newEnumerator(staticConns(conn), namesByPID(map[int32]string{7: "postgres"}), fakeFallback("", nil, nil))

	ports := e.Scan(context.Background(), false)

	require.Len(t, ports, 1)
	assert.Equal(t, "[::1]:5432", ports[0].LocalAddress)
	assert.Empty(t, ports[0].RemoteAddress)
}

func TestEnumerator_FallbackOnSystemicFailure(t *testing.T) {
	calls := 0
	failing := func(context.Context) ([]psnet.ConnectionStat, error) {
		return nil, errors.New("proc not mounted")
	}
	output := netstatHeader +
		"tcp        0      0 0.0.0.0:8080  0.0.0.0:*        LISTEN  1234/myserver\n"

	e := newEnumerator(failing, namesByPID(nil), fakeFallback(output, nil, &calls))
	ports := e.Scan(context.Background(), false)

	require.Len(t, ports, 1)
	assert.Equal(t, "myserver", ports[0].Process)
	assert.Equal(t, 1, calls)
}

func TestEnumerator_FallbackFailureIsEmpty(t *testing.T) {
	failing := func(context.Context) ([]psnet.ConnectionStat, error) {
		return nil, errors.New("unavailable")
	}

	e := newEnumerator(failing, namesByPID(nil), fakeFallback("", exec.ErrNotFound, nil))
	ports := e.Scan(context.Background(), true)

	assert.NotNil(t, ports)
	assert.Empty(t, ports)
}

func TestEnumerator_NoFallbackOnPlatform(t *testing.T) {
	failing := func(context.Context) ([]psnet.ConnectionStat, error) {
		return nil, errors.New("unavailable")
	}

	e := newEnumerator(failing, namesByPID(nil), nil)

	assert.Empty(t, e.Scan(context.Background(), true))
}

func TestEnumerator_BreakerSkipsPrimaryAfterRepeatedFailures(t *testing.T) {
	primaryCalls := 0
	failing := func(context.Context) ([]psnet.ConnectionStat, error) {
		primaryCalls++
		return nil, errors.New("unavailable")
	}
	fallbackCalls := 0

	e := newEnumerator(failing, namesByPID(nil), fakeFallback(netstatHeader, nil, &fallbackCalls))
	for i := 0; i < breakerFailures+2; i++ {
		e.Scan(context.Background(), false)
	}

	assert.Equal(t, breakerFailures, primaryCalls)
	assert.Equal(t, breakerFailures+2, fallbackCalls)
}

func TestCommandFallback_Timeout(t *testing.T) {
	f := &commandFallback{
		name:    "netstat",
		timeout: 20 * time.Millisecond,
		parse:   parseNetstatOutput,
		run: func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	start := time.Now()
	ports := f.Scan(context.Background(), false)

	assert.Empty(t, ports)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCommandFallback_PassesCommand(t *testing.T) {
	var gotName string
	var gotArgs []string
	f := &commandFallback{
		name:  "netstat",
		args:  []string{"-tulpn"},
		parse: parseNetstatOutput,
		run: func(_ context.Context, name string, args ...string) ([]byte, error) {
			gotName, gotArgs = name, args
			return nil, nil
		},
	}

	f.Scan(context.Background(), false)

	assert.Equal(t, "netstat", gotName)
	assert.Equal(t, []string{"-tulpn"}, gotArgs)
}
