package cmd

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/productdevbook/portkiller/internal/logging"
	"github.com/productdevbook/portkiller/internal/tui"
	"github.com/spf13/cobra"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactively pick a port to kill",
	Long: `Open an interactive list of listening ports. Type to filter, use the arrow
keys to select and press enter to kill the owning process with the configured method.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	pickCmd.Flags().BoolVarP(&forceKill, "force", "f", false, "Force kill with SIGKILL")
	pickCmd.Flags().StringVarP(&killMethod, "method", "m", "", "Signal to send (SIGTERM or SIGKILL)")
}

func runPick(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return errors.New("pick needs an interactive terminal, use `portkiller list` instead")
	}

	a := newApp(cmd)
	method := resolveMethod(cmd, a)

	// stderr belongs to the UI from here on
	if !debugMode {
		logging.Silence()
	}

	return tui.Run(a.ports, a.term, tui.Options{
		IncludeSystem: a.includeSystem,
		Method:        method,
		Favorite:      a.cfg.IsFavorite,
	})
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
