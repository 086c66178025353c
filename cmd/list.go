package cmd

import (
	"slices"
	"sort"
	"strings"

	"github.com/productdevbook/portkiller/internal/query"
	"github.com/productdevbook/portkiller/internal/scanner"
	"github.com/spf13/cobra"
)

var fuzzyRank bool

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List listening ports",
	Long: `List TCP and UDP ports currently in LISTEN state with their owning processes.

The optional query keeps ports whose number contains it, or whose process name
or protocol contains it (case-insensitive). At most 15 ports are shown.`,
	Args: cobra.ArbitraryArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&fuzzyRank, "fuzzy", false, "Rank by fuzzy match instead of substring filtering")
}

func runList(cmd *cobra.Command, args []string) error {
	outFormat, err := format()
	if err != nil {
		return err
	}

	a := newApp(cmd)
	ports := a.ports.Scan(cmd.Context(), a.includeSystem)

	q := strings.Join(args, " ")
	if fuzzyRank {
		ports = query.Rank(ports, q)
	} else {
		ports = sortPorts(query.Filter(ports, q), a.cfg.IsFavorite)
	}

	return printPorts(cmd.OutOrStdout(), outFormat, query.Limit(ports), a.cfg.IsFavorite)
}

// sortPorts returns a copy ordered favorites first, then by port number
func sortPorts(ports []scanner.Port, favorite func(int) bool) []scanner.Port {
	ports = slices.Clone(ports)
	sort.SliceStable(ports, func(i, j int) bool {
		fi, fj := favorite(ports[i].Port), favorite(ports[j].Port)
		if fi != fj {
			return fi
		}
		return ports[i].Port < ports[j].Port
	})
	return ports
}
