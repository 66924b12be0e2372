package forecast

import (
	"golang.org/x/exp/rand"
)

// RandomForest is a bagging ensemble of regression trees: each tree trains on
// a bootstrap sample with a random feature subset per split, predictions are
// averaged.
type RandomForest struct {
	trees []*regressionTree
}

// RandomForestParams configure the bagging ensemble.
type RandomForestParams struct {
	NumTrees int
	MaxDepth int
	MinLeaf  int
	Seed     uint64
}

// DefaultForestParams mirror a conventional 100-estimator configuration.
func DefaultForestParams() RandomForestParams {
	return RandomForestParams{NumTrees: 100, MaxDepth: 12, MinLeaf: 2, Seed: 42}
}

// FitRandomForest trains the forest on scaled features X against target y.
func FitRandomForest(X [][]float64, y []float64, params RandomForestParams) *RandomForest {
	rng := rand.New(rand.NewSource(params.Seed))
	n := len(y)
	maxFeat := len(X[0]) / 3
	if maxFeat < 1 {
		maxFeat = 1
	}

	f := &RandomForest{trees: make([]*regressionTree, 0, params.NumTrees)}
	for t := 0; t < params.NumTrees; t++ {
		// bootstrap sample with replacement
		bx := make([][]float64, n)
		by := make([]float64, n)
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			bx[i] = X[j]
			by[i] = y[j]
		}
		tree := fitTree(bx, by, treeParams{
			maxDepth:    params.MaxDepth,
			minLeaf:     params.MinLeaf,
			maxFeatures: maxFeat,
			rng:         rng,
		})
		f.trees = append(f.trees, tree)
	}
	return f
}

// Predict averages the predictions of all trees for one row.
func (f *RandomForest) Predict(row []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(row)
	}
	return sum / float64(len(f.trees))
}
