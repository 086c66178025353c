package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/productdevbook/portkiller/internal/scanner"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// format resolves --json and --output into one output format
func format() (string, error) {
	if jsonOutput {
		return formatJSON, nil
	}
	switch outputFormat {
	case formatTable, "default", "":
		return formatTable, nil
	case formatJSON, formatYAML:
		return outputFormat, nil
	}
	return "", fmt.Errorf("unknown output format %q (use table, json or yaml)", outputFormat)
}

func printStructured(w io.Writer, format string, v interface{}) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPorts(w io.Writer, format string, ports []scanner.Port, favorite func(int) bool) error {
	if format != formatTable {
		if ports == nil {
			ports = []scanner.Port{}
		}
		return printStructured(w, format, ports)
	}

	if len(ports) == 0 {
		fmt.Fprintln(w, "No listening ports found.")
		return nil
	}

	return printTable(w, ports, favorite)
}

func printTable(w io.Writer, ports []scanner.Port, favorite func(int) bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tPROTO\tPID\tPROCESS\tADDRESS")
	fmt.Fprintln(tw, "----\t-----\t---\t-------\t-------")

	for _, p := range ports {
		port := fmt.Sprintf("%d", p.Port)
		if favorite != nil && favorite(p.Port) {
			port += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", port, p.Protocol, p.PID, p.Process, p.LocalAddress)
	}

	return tw.Flush()
}
