package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:     "favorite",
	Aliases: []string{"fav"},
	Short:   "Manage favorite ports",
	Long:    `Favorite ports are listed first and marked with * in list output.`,
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add <port>",
	Short: "Add a port to favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateFavorites(cmd, args[0], true)
	},
}

var favoriteRemoveCmd = &cobra.Command{
	Use:     "remove <port>",
	Aliases: []string{"rm"},
	Short:   "Remove a port from favorites",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateFavorites(cmd, args[0], false)
	},
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outFormat, err := format()
		if err != nil {
			return err
		}

		a := newApp(cmd)
		if outFormat != formatTable {
			return printStructured(cmd.OutOrStdout(), outFormat, a.cfg.Favorites)
		}
		if len(a.cfg.Favorites) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No favorite ports.")
			return nil
		}
		for _, p := range a.cfg.Favorites {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	favoriteCmd.AddCommand(favoriteAddCmd, favoriteRemoveCmd, favoriteListCmd)
}

func updateFavorites(cmd *cobra.Command, arg string, add bool) error {
	port, err := strconv.Atoi(arg)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %s", arg)
	}

	a := newApp(cmd)
	if add {
		a.cfg.AddFavorite(port)
	} else {
		a.cfg.RemoveFavorite(port)
	}

	if err := a.store.Save(a.cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
