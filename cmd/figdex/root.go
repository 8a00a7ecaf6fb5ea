package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/figdex/internal/config"
	logpkg "github.com/kailas-cloud/figdex/internal/logger"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	env        string
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "figdex",
		Short: "Figure collection search backend",
		Long: `figdex answers autocomplete, substring and multi-term searches over a
user's figure collection, through a managed full-text index or a
fallback scorer over the primary store.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.env, "env", config.GetEnv(),
		"environment: local, dev, docker, prod, test")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "",
		"config file (default: config/<env>.yaml)")

	rootCmd.AddCommand(
		newServeCmd(flags),
		newResyncCmd(flags),
		newSearchCmd(flags),
		newVersionCmd(),
	)
	return rootCmd
}

// load reads the configuration and builds the logger for flags.
func (f *globalFlags) load() (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load(f.env)
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(f.env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
