// Package query narrows a port list down to what the user typed.
package query

import (
	"strconv"
	"strings"

	"github.com/productdevbook/portkiller/internal/scanner"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"
)

// MaxResults caps how many ports are handed to a front end
const MaxResults = 15

// Filter keeps ports whose number contains q, or whose process name or
// protocol contains q case-insensitively. An empty q keeps everything.
func Filter(ports []scanner.Port, q string) []scanner.Port {
	q = strings.TrimSpace(q)
	if q == "" {
		return ports
	}

	fold := cases.Fold()
	needle := fold.String(q)

	var matched []scanner.Port
	for _, p := range ports {
		if strings.Contains(strconv.Itoa(p.Port), q) ||
			strings.Contains(fold.String(p.Process), needle) ||
			strings.Contains(fold.String(string(p.Protocol)), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Limit truncates ports to MaxResults
func Limit(ports []scanner.Port) []scanner.Port {
	if len(ports) > MaxResults {
		return ports[:MaxResults]
	}
	return ports
}

// Apply filters and truncates in one step
func Apply(ports []scanner.Port, q string) []scanner.Port {
	return Limit(Filter(ports, q))
}

// source adapts ports to fuzzy.Source
type source []scanner.Port

func (s source) String(i int) string {
	p := s[i]
	return strconv.Itoa(p.Port) + " " + string(p.Protocol) + " " + p.Process
}

func (s source) Len() int { return len(s) }

// Rank orders ports by fuzzy match quality against "<port> <protocol> <process>",
// dropping ports that do not match at all. An empty q keeps the input order.
func Rank(ports []scanner.Port, q string) []scanner.Port {
	q = strings.TrimSpace(q)
	if q == "" {
		return ports
	}

	matches := fuzzy.FindFrom(q, source(ports))
	ranked := make([]scanner.Port, 0, len(matches))
	for _, m := range matches {
		ranked = append(ranked, ports[m.Index])
	}
	return ranked
}
