package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"graphtrust/internal/platform/config"
	"graphtrust/internal/platform/logger"
)

// app carries what every subcommand needs once the root command has loaded
// configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "graphtrust",
		Short: "Graph-based trust scoring for marketplace users",
		Long: `graphtrust builds a relationship graph from marketplace events and
scores users with a random-forest trust model.

Configuration comes from defaults, the YAML file named by GRAPHTRUST_CONFIG,
then environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.logger = logger.New(cfg.Log)
			return nil
		},
	}
	root.AddCommand(
		newServeCmd(a),
		newTrainCmd(a),
		newModelsCmd(a),
		newPredictCmd(a),
		newPublishCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
