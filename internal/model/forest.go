package model

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"graphtrust/internal/features"
)

// ForestConfig controls the regression forest.
type ForestConfig struct {
	Trees       int
	MaxDepth    int
	MinLeaf     int
	MaxFeatures int // 0 means every feature is considered at each split
}

// DefaultForestConfig mirrors a small random forest: tens of trees, deep
// enough to capture the clamped linear rule.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		Trees:    50,
		MaxDepth: 12,
		MinLeaf:  1,
	}
}

func (c ForestConfig) normalized() ForestConfig {
	d := DefaultForestConfig()
	if c.Trees <= 0 {
		c.Trees = d.Trees
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.MinLeaf <= 0 {
		c.MinLeaf = d.MinLeaf
	}
	return c
}

// Forest is a bagged ensemble of regression trees.
type Forest struct {
	trees []*tree
}

// TreeCount returns the ensemble size.
func (f *Forest) TreeCount() int { return len(f.trees) }

// FitForest trains a forest on samples. Each tree gets a bootstrap resample
// and its own seed drawn up front from seed, so the result does not depend on
// goroutine scheduling.
func FitForest(ctx context.Context, samples []Sample, cfg ForestConfig, seed uint64) (*Forest, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no training samples")
	}
	cfg = cfg.normalized()

	x := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = s.Features.Values()
		y[i] = Clamp(s.Label)
	}

	base := newRand(seed)
	seeds := make([]uint64, cfg.Trees)
	for i := range seeds {
		seeds[i] = base.Uint64()
	}

	params := treeParams{maxDepth: cfg.MaxDepth, minLeaf: cfg.MinLeaf, maxFeatures: cfg.MaxFeatures}
	trees := make([]*tree, cfg.Trees)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := newRand(seeds[i])
			idx := make([]int, len(samples))
			for k := range idx {
				idx[k] = rng.IntN(len(samples))
			}
			trees[i] = fitTree(x, y, idx, params, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Forest{trees: trees}, nil
}

// Predict averages the trees and clamps to the score range.
func (f *Forest) Predict(v features.Vector) float64 {
	x := v.Values()
	sum := 0.0
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return Clamp(sum / float64(len(f.trees)))
}
