package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/dexview/internal/config"
	"github.com/Sternrassler/dexview/pkg/catalog"
	"github.com/Sternrassler/dexview/pkg/logging"
)

// rootOptions carries the global flags and the configuration resolved from
// them before any subcommand runs.
type rootOptions struct {
	configFile string
	envFile    string
	logLevel   string
	logPretty  bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dexview",
		Short: "Browse Pokémon from the public catalog by ID range",
		Long: `dexview fetches a contiguous range of Pokémon (at most 151 at a time) from
the public catalog and lets you sort them by ID, weight, height or base
experience and filter them by type.

Run "dexview serve" for the browser viewer or "dexview fetch" for a table
on stdout.`,
		SilenceUsage:      true,
		PersistentPreRunE: opts.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "path to a .env file (ignored when missing)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.logPretty, "log-pretty", false, "human-readable console logs instead of JSON")

	cmd.AddCommand(
		newServeCmd(opts),
		newFetchCmd(opts),
		newTypesCmd(opts),
	)

	return cmd
}

// setup loads the configuration, applies flag overrides and configures
// logging.
func (o *rootOptions) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Options{ConfigFile: o.configFile, EnvFile: o.envFile})
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		level, err := logging.ParseLevel(o.logLevel)
		if err != nil {
			return err
		}
		cfg.Log.Level = string(level)
	}
	if cmd.Flags().Changed("log-pretty") {
		cfg.Log.Pretty = o.logPretty
	}

	logCfg := cfg.Log.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Setup(logCfg)

	log.Debug().
		Str("command", cmd.Name()).
		Str("catalog_url", cfg.Catalog.BaseURL).
		Msg("Configuration loaded")

	o.cfg = cfg
	return nil
}

func (o *rootOptions) catalogClient() (*catalog.Client, error) {
	client, err := catalog.New(o.cfg.Catalog.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create catalog client: %w", err)
	}
	return client, nil
}
