package forecast

import (
	"golang.org/x/exp/rand"
)

// GradientBoosting is a stagewise ensemble of shallow regression trees, each
// fit to the residuals of the running prediction.
type GradientBoosting struct {
	initial      float64
	learningRate float64
	trees        []*regressionTree
}

// GradientBoostingParams configure the booster.
type GradientBoostingParams struct {
	NumTrees     int
	MaxDepth     int
	MinLeaf      int
	LearningRate float64
	Seed         uint64
}

// DefaultBoostingParams mirror a conventional 100-estimator, depth-3,
// 0.1-learning-rate configuration.
func DefaultBoostingParams() GradientBoostingParams {
	return GradientBoostingParams{NumTrees: 100, MaxDepth: 3, MinLeaf: 2, LearningRate: 0.1, Seed: 42}
}

// FitGradientBoosting trains the booster on scaled features X against target y.
func FitGradientBoosting(X [][]float64, y []float64, params GradientBoostingParams) *GradientBoosting {
	rng := rand.New(rand.NewSource(params.Seed))
	n := len(y)

	var sum float64
	for _, v := range y {
		sum += v
	}
	g := &GradientBoosting{
		initial:      sum / float64(n),
		learningRate: params.LearningRate,
		trees:        make([]*regressionTree, 0, params.NumTrees),
	}

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = g.initial
	}
	residual := make([]float64, n)
	for t := 0; t < params.NumTrees; t++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		tree := fitTree(X, residual, treeParams{
			maxDepth: params.MaxDepth,
			minLeaf:  params.MinLeaf,
			rng:      rng,
		})
		g.trees = append(g.trees, tree)
		for i := range pred {
			pred[i] += g.learningRate * tree.predict(X[i])
		}
	}
	return g
}

// Predict returns the boosted prediction for one row.
func (g *GradientBoosting) Predict(row []float64) float64 {
	out := g.initial
	for _, t := range g.trees {
		out += g.learningRate * t.predict(row)
	}
	return out
}
