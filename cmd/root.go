package cmd

import (
	"os"

	"github.com/productdevbook/portkiller/internal/config"
	"github.com/productdevbook/portkiller/internal/killer"
	"github.com/productdevbook/portkiller/internal/logging"
	"github.com/productdevbook/portkiller/internal/portcache"
	"github.com/productdevbook/portkiller/internal/scanner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	version        = "0.2.0"
	jsonOutput     bool
	outputFormat   string
	includeSystem  bool
	debugMode      bool
	structuredLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "portkiller",
	Short: "A fast port killer for developers",
	Long: `portkiller lists processes listening on network ports and kills the one you pick.

Ports below 1024 are hidden unless --system is given or showSystemPorts is set
in ~/.portkiller/config.json.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(debugMode, structuredLogs)
	},
	RunE: runList,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatTable, "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&includeSystem, "system", "s", false, "Include system ports below 1024")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&structuredLogs, "structured-logs", false, "Log JSON lines to stderr")
	rootCmd.Flags().BoolVar(&fuzzyRank, "fuzzy", false, "Rank by fuzzy match instead of substring filtering")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.Version = version
}

// app wires the core for one command invocation
type app struct {
	store         config.Store
	cfg           *config.Config
	ports         *portcache.Cache
	term          *killer.Terminator
	includeSystem bool
}

func newApp(cmd *cobra.Command) *app {
	store := config.NewStore()
	cfg, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load config, using defaults")
		cfg = config.Default()
	}

	system := cfg.ShowSystemPorts
	if cmd.Flags().Changed("system") {
		system = includeSystem
	}

	return &app{
		store:         store,
		cfg:           cfg,
		ports:         portcache.New(scanner.New(), portcache.DefaultWindow),
		term:          killer.New(),
		includeSystem: system,
	}
}
