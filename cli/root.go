package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/coreybb/itemgate/aggregator"
	"github.com/coreybb/itemgate/config"
	"github.com/coreybb/itemgate/datastore"
	"github.com/spf13/cobra"
)

// CLI Constants
const (
	CmdServe       = "serve"
	CmdFetch       = "fetch"
	FlagConfig     = "config"
	FlagEnvFile    = "env-file"
	FlagPort       = "port"
	FlagLogLevel   = "log-level"
	DefaultEnvFile = ".env"
)

// options holds the persistent flags shared by every command.
type options struct {
	configFile string
	envFile    string
	port       string
	logLevel   string
}

// NewRootCommand builds the itemgate command tree. Running the root command
// without a subcommand starts the server.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "itemgate",
		Short: "Serve every item from two data sources through one endpoint",
		Long: `itemgate answers POST <base-path>/getAllItems by reading the items
collection of two independently configured data sources, concatenating
source A's items before source B's, and returning them as JSON.

A source that cannot be reached or queried contributes no items; the
request still succeeds with whatever the other source returned.

Sources are configured with SOURCE_A_URL and SOURCE_B_URL (MONGO_URL_1 and
MONGO_URL_2 are accepted too), a YAML file passed with --config, or a
dotenv file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, FlagConfig, "c", "", "YAML configuration file")
	flags.StringVar(&opts.envFile, FlagEnvFile, DefaultEnvFile, "dotenv file merged into the environment if present")
	flags.StringVarP(&opts.port, FlagPort, "p", "", "HTTP listen port (overrides PORT)")
	flags.StringVar(&opts.logLevel, FlagLogLevel, "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(newServeCommand(opts), newFetchCommand(opts))
	return rootCmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig resolves the configuration for a command, applies flag
// overrides, validates it and installs the default logger.
func loadConfig(opts *options) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
	})
	if err != nil {
		return config.Config{}, err
	}

	if opts.port != "" {
		cfg.Port = opts.port
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel) // validated above
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

// buildAggregator creates both sources from the configuration.
func buildAggregator(cfg config.Config) (*aggregator.Aggregator, error) {
	sourceA, err := datastore.NewSource(cfg.SourceA.Name, cfg.SourceA.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure source A: %w", err)
	}
	sourceB, err := datastore.NewSource(cfg.SourceB.Name, cfg.SourceB.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure source B: %w", err)
	}
	return aggregator.New(sourceA, sourceB, aggregator.WithFetchTimeout(cfg.FetchTimeout)), nil
}
