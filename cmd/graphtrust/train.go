package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"graphtrust/internal/model"
)

func newTrainCmd(a *app) *cobra.Command {
	var (
		samples int
		seed    uint64
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit a model on synthetic data and make it active",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be, err := openBackend(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer be.close()

			if !cmd.Flags().Changed("samples") {
				samples = a.cfg.Model.SampleCount
			}
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.Model.Seed
			}

			trainer, err := model.NewTrainer(be.registry,
				model.WithForestConfig(forestConfig(a.cfg.Model)),
				model.WithTrainerLogger(a.logger),
			)
			if err != nil {
				return err
			}
			v, err := trainer.Train(ctx, model.TrainOptions{SampleCount: samples, Seed: seed})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().IntVar(&samples, "samples", model.DefaultSampleCount, "number of synthetic training rows")
	cmd.Flags().Uint64Var(&seed, "seed", model.DefaultSeed, "random seed for data generation and bagging")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
