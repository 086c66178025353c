package scanner

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	errNotListening = errors.New("not a listening socket")
	errFieldCount   = errors.New("too few fields")
	errSystemPort   = errors.New("system port filtered")
)

// parseNetstatOutput parses `netstat -tulpn` output.
//
//	Active Internet connections (only servers)
//	Proto Recv-Q Send-Q Local Address   Foreign Address  State   PID/Program name
//	tcp        0      0 0.0.0.0:8080    0.0.0.0:*        LISTEN  1234/myserver
//
// Rows that fail to parse are skipped one at a time.
func parseNetstatOutput(output []byte, includeSystem bool) []Port {
	var ports []Port

	scanner := bufio.NewScanner(bytes.NewReader(output))
	// Skip the two header lines
	for i := 0; i < 2 && scanner.Scan(); i++ {
	}

	for scanner.Scan() {
		port, err := parseNetstatLine(scanner.Text(), includeSystem)
		if err != nil {
			if !errors.Is(err, errNotListening) && !errors.Is(err, errSystemPort) {
				log.Debug().Err(err).Str("line", scanner.Text()).Msg("skipping netstat line")
			}
			continue
		}
		ports = append(ports, port)
	}

	return ports
}

func parseNetstatLine(line string, includeSystem bool) (Port, error) {
	if !strings.Contains(line, "LISTEN") {
		return Port{}, errNotListening
	}

	fields := strings.Fields(line)
	if len(fields) < 7 {
		return Port{}, fmt.Errorf("%w: %d", errFieldCount, len(fields))
	}

	proto, ok := ParseProtocol(fields[0])
	if !ok {
		return Port{}, fmt.Errorf("unknown protocol %q", fields[0])
	}

	localAddr := fields[3]
	port, err := parseAddrPort(localAddr)
	if err != nil {
		return Port{}, err
	}
	if !allowed(port, includeSystem) {
		return Port{}, errSystemPort
	}

	// PID/Program name, "-" when the owner is not visible to us
	pid := 0
	process := UnknownProcess
	if pidStr, name, found := strings.Cut(fields[6], "/"); found {
		pid, err = strconv.Atoi(pidStr)
		if err != nil {
			return Port{}, fmt.Errorf("invalid pid %q: %w", pidStr, err)
		}
		if name != "" {
			process = name
		}
	}

	return Port{
		Port:         port,
		Protocol:     proto,
		PID:          pid,
		Process:      process,
		LocalAddress: localAddr,
	}, nil
}

// parseAddrPort extracts the port from "ip:port", using the last colon so
// IPv6 forms like ":::8080" or "[::1]:3000" work
func parseAddrPort(addr string) (int, error) {
	idx := strings.LastIndex(addr, ":")
	if idx == -1 {
		return 0, fmt.Errorf("address %q has no port", addr)
	}

	port, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}

	return port, nil
}
