package model

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// treeNode is one node of a flattened regression tree. Children always sit
// after their parent in the slice; leaves have Left == Right == -1.
type treeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

func (n treeNode) leaf() bool { return n.Left < 0 }

// tree is a CART regression tree split on squared-error reduction.
type tree struct {
	nodes []treeNode
}

type treeParams struct {
	maxDepth    int
	minLeaf     int
	maxFeatures int
}

type treeBuilder struct {
	x      [][]float64
	y      []float64
	params treeParams
	rng    *rand.Rand
	nodes  []treeNode
}

func fitTree(x [][]float64, y []float64, idx []int, params treeParams, rng *rand.Rand) *tree {
	b := &treeBuilder{x: x, y: y, params: params, rng: rng}
	b.build(idx, 0)
	return &tree{nodes: b.nodes}
}

func (b *treeBuilder) build(idx []int, depth int) int {
	ys := make([]float64, len(idx))
	for i, j := range idx {
		ys[i] = b.y[j]
	}
	pos := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{Left: -1, Right: -1, Value: stat.Mean(ys, nil)})

	if depth >= b.params.maxDepth || len(idx) < 2*b.params.minLeaf || stat.Variance(ys, nil) == 0 {
		return pos
	}

	feature, threshold, ok := b.bestSplit(idx)
	if !ok {
		return pos
	}

	var left, right []int
	for _, j := range idx {
		if b.x[j][feature] <= threshold {
			left = append(left, j)
		} else {
			right = append(right, j)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[pos].Feature = feature
	b.nodes[pos].Threshold = threshold
	b.nodes[pos].Left = l
	b.nodes[pos].Right = r
	return pos
}

// bestSplit maximizes sumL²/nL + sumR²/nR, which is equivalent to minimizing
// the children's summed squared error.
func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	ys := make([]float64, len(idx))
	for i, j := range idx {
		ys[i] = b.y[j]
	}
	total := floats.Sum(ys)
	n := float64(len(idx))
	bestGain := total * total / n
	bestFeature, bestThreshold, found := -1, 0.0, false

	sorted := slices.Clone(idx)
	for _, f := range b.candidateFeatures() {
		slices.SortFunc(sorted, func(a, c int) int {
			if d := cmp.Compare(b.x[a][f], b.x[c][f]); d != 0 {
				return d
			}
			return cmp.Compare(a, c)
		})

		sumLeft := 0.0
		for i := 0; i < len(sorted)-1; i++ {
			sumLeft += b.y[sorted[i]]
			nLeft := i + 1
			nRight := len(sorted) - nLeft
			if nLeft < b.params.minLeaf || nRight < b.params.minLeaf {
				continue
			}
			cur, next := b.x[sorted[i]][f], b.x[sorted[i+1]][f]
			if cur == next {
				continue
			}
			sumRight := total - sumLeft
			gain := sumLeft*sumLeft/float64(nLeft) + sumRight*sumRight/float64(nRight)
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func (b *treeBuilder) candidateFeatures() []int {
	d := len(b.x[0])
	if b.params.maxFeatures <= 0 || b.params.maxFeatures >= d {
		all := make([]int, d)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := b.rng.Perm(d)[:b.params.maxFeatures]
	slices.Sort(perm)
	return perm
}

func (t *tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.leaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
