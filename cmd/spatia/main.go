// Command spatia evaluates sketches and builds point indexes from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/spatia/internal/config"
)

// cli carries the settings resolved by the root command's persistent flags.
type cli struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: config.Default(), logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "spatia",
		Short: "Spatial indexing and sketch evaluation",
		Long: `spatia builds octree point indexes and evaluates Lisp sketches that
declare indexes, selections and solids, without starting the IDE.`,
		Version:           "0.1.0",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = c.logger.Sync() },
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a spatia YAML config")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(c.newEvalCmd(), c.newIndexCmd())
	return root
}

// setup loads the config file and builds the logger before any subcommand runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logger, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
