package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/productdevbook/portkiller/internal/killer"
	"github.com/productdevbook/portkiller/internal/scanner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	forceKill  bool
	killMethod string
	killPID    int
	waitExit   time.Duration
)

var killCmd = &cobra.Command{
	Use:   "kill [port]",
	Short: "Kill process listening on a port",
	Long: `Kill the process that is listening on the specified port, or the process given with --pid.

Uses the configured killMethod (SIGTERM by default), SIGKILL with --force.
A single signal is sent; --wait only watches for the process to exit.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("pid") {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runKill,
}

func init() {
	killCmd.Flags().BoolVarP(&forceKill, "force", "f", false, "Force kill with SIGKILL")
	killCmd.Flags().StringVarP(&killMethod, "method", "m", "", "Signal to send (SIGTERM or SIGKILL)")
	killCmd.Flags().IntVarP(&killPID, "pid", "p", 0, "Kill this process ID instead of looking up a port")
	killCmd.Flags().DurationVarP(&waitExit, "wait", "w", 0, "Wait up to this long for the process to exit")
	killCmd.Flags().Lookup("wait").NoOptDefVal = "5s"
}

func runKill(cmd *cobra.Command, args []string) error {
	outFormat, err := format()
	if err != nil {
		return err
	}

	a := newApp(cmd)
	method := resolveMethod(cmd, a)

	pid := killPID
	if !cmd.Flags().Changed("pid") {
		port, err := strconv.Atoi(args[0])
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port number: %s", args[0])
		}

		// Find the process on this port, system ports included
		target := findPort(a.ports.Scan(cmd.Context(), true), port)
		if target == nil {
			return fmt.Errorf("no process found listening on port %d", port)
		}
		pid = target.PID
	}

	outcome := a.term.Terminate(cmd.Context(), pid, method)

	if outcome.Success && waitExit > 0 {
		if err := a.term.WaitForExit(cmd.Context(), pid, waitExit); err != nil {
			if !errors.Is(err, killer.ErrStillRunning) {
				return err
			}
			outcome.Message = fmt.Sprintf("%s, but it is still running after %s", outcome.Message, waitExit)
		}
	}

	if outFormat != formatTable {
		if err := printStructured(cmd.OutOrStdout(), outFormat, outcome); err != nil {
			return err
		}
	} else if outcome.Success {
		fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
	}

	if !outcome.Success {
		return errors.New(outcome.Message)
	}
	return nil
}

// resolveMethod picks the signal: --force, then --method, then the stored preference
func resolveMethod(cmd *cobra.Command, a *app) killer.Method {
	if forceKill {
		return killer.Force
	}
	if cmd.Flags().Changed("method") {
		m, err := killer.ParseMethod(killMethod)
		if err != nil {
			log.Warn().Err(err).Msg("invalid --method")
		}
		return m
	}
	return a.cfg.Method()
}

func findPort(ports []scanner.Port, port int) *scanner.Port {
	for i := range ports {
		if ports[i].Port == port {
			return &ports[i]
		}
	}
	return nil
}
