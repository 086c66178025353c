package scanner

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

// parseNetstatAnoOutput parses Windows `netstat -ano` output:
//
//	Proto  Local Address          Foreign Address        State           PID
//	TCP    0.0.0.0:3000           0.0.0.0:0              LISTENING       1234
//
// netstat does not report process names there.
func parseNetstatAnoOutput(output []byte, includeSystem bool) []Port {
	var ports []Port

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, "LISTENING") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}

		proto, ok := ParseProtocol(fields[0])
		if !ok {
			continue
		}

		localAddr := fields[1]
		port, err := parseAddrPort(localAddr)
		if err != nil || !allowed(port, includeSystem) {
			continue
		}

		pid, err := strconv.Atoi(fields[4])
		if err != nil {
			continue
		}

		ports = append(ports, Port{
			Port:         port,
			Protocol:     proto,
			PID:          pid,
			Process:      UnknownProcess,
			LocalAddress: localAddr,
		})
	}

	return ports
}
