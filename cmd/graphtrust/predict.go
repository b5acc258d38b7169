package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"graphtrust/internal/features"
	"graphtrust/internal/model"
	"graphtrust/internal/scoring"
)

type prediction struct {
	Features features.Vector `json:"features"`
	Score    float64         `json:"trust_score"`
	Tier     scoring.Tier    `json:"risk_tier"`
	Source   model.Source    `json:"source"`
	Version  string          `json:"model_version,omitempty"`
}

func newPredictCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <degree> <device-links> <flagged-links>",
		Short: "Score a raw feature vector with the active model",
		Args:  cobra.ExactArgs(features.Dimensions),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]float64, len(args))
			for i, arg := range args {
				v, err := features.ParseCount(arg)
				if err != nil {
					return fmt.Errorf("feature %d: %w", i, err)
				}
				values[i] = v
			}

			be, err := openBackend(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer be.close()

			predictor, err := model.NewPredictor(be.registry, model.WithPredictorLogger(a.logger))
			if err != nil {
				return err
			}
			vec := features.FromValues(values)
			p := predictor.Predict(cmd.Context(), vec)
			score := model.Round2(model.Clamp(p.Score))

			thresholds := scoring.Thresholds{HighBelow: a.cfg.Risk.HighBelow, MediumBelow: a.cfg.Risk.MediumBelow}
			out := prediction{
				Features: vec,
				Score:    score,
				Tier:     thresholds.Classify(score),
				Source:   p.Source,
			}
			if p.Source == model.SourceModel {
				out.Version = p.Version.String()
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}
