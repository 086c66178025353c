package scanner

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// NAME column, e.g. "127.0.0.1:3000", "*:8080" or "[::1]:3000"
var lsofAddrRegex = regexp.MustCompile(`^(\*|\[?[^\]]+\]?):(\d+)`)

// parseLsofOutput parses `lsof -iTCP -sTCP:LISTEN -P -n` output.
// lsof only reports TCP here, so every row is tagged TCP.
func parseLsofOutput(output []byte, includeSystem bool) []Port {
	var ports []Port
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	// Skip header line
	scanner.Scan()

	for scanner.Scan() {
		line := scanner.Text()
		// COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME [(LISTEN)]
		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}

		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			log.Debug().Str("line", line).Msg("skipping lsof line with invalid pid")
			continue
		}

		// NAME is the 9th field, the last one may be "(LISTEN)"
		matches := lsofAddrRegex.FindStringSubmatch(fields[8])
		if matches == nil {
			continue
		}

		port, err := strconv.Atoi(matches[2])
		if err != nil || !allowed(port, includeSystem) {
			continue
		}

		// The same socket shows up once per fd sharing it
		key := fields[8] + ":" + strconv.Itoa(pid)
		if seen[key] {
			continue
		}
		seen[key] = true

		host := matches[1]
		if host == "*" {
			host = "0.0.0.0"
		}

		ports = append(ports, Port{
			Port:         port,
			Protocol:     TCP,
			PID:          pid,
			Process:      unescapeProcessName(fields[0]),
			LocalAddress: host + ":" + matches[2],
		})
	}

	return ports
}

// unescapeProcessName undoes lsof escaping, e.g. "Code\x20Helper" -> "Code Helper"
func unescapeProcessName(name string) string {
	name = strings.ReplaceAll(name, "\\x20", " ")
	return strings.ReplaceAll(name, "\\x2d", "-")
}
