package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/productdevbook/portkiller/internal/killer"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change preferences",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outFormat, err := format()
		if err != nil {
			return err
		}
		if outFormat == formatTable {
			outFormat = formatYAML
		}
		return printStructured(cmd.OutOrStdout(), outFormat, newApp(cmd).cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a preference (system, method)",
	Long: `Set a preference:

  system  true|false       include ports below 1024
  method  SIGTERM|SIGKILL  signal used by kill and pick`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	a := newApp(cmd)
	key, value := strings.ToLower(args[0]), args[1]

	switch key {
	case "system", "showsystemports":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for system: %s", value)
		}
		a.cfg.ShowSystemPorts = b
	case "method", "killmethod":
		// Reject typos here instead of silently falling back later
		m, err := killer.ParseMethod(value)
		if err != nil {
			return err
		}
		a.cfg.KillMethod = m.String()
	default:
		return fmt.Errorf("unknown preference %q", args[0])
	}

	if err := a.store.Save(a.cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
