package forecast

import (
	"sort"

	"golang.org/x/exp/rand"
)

// regressionTree is a CART-style regressor splitting on variance reduction.
// It is the base learner for both the bagging forest and the booster.
type regressionTree struct {
	root *treeNode
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

type treeParams struct {
	maxDepth    int
	minLeaf     int
	maxFeatures int // 0 means all features
	rng         *rand.Rand
}

func fitTree(X [][]float64, y []float64, p treeParams) *regressionTree {
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	return &regressionTree{root: growNode(X, y, idx, 0, p)}
}

func growNode(X [][]float64, y []float64, idx []int, depth int, p treeParams) *treeNode {
	if len(idx) == 0 {
		return &treeNode{leaf: true}
	}
	mean, sse := meanSSE(y, idx)
	if depth >= p.maxDepth || len(idx) < 2*p.minLeaf || sse == 0 {
		return &treeNode{leaf: true, value: mean}
	}

	nFeatures := len(X[0])
	candidates := featureCandidates(nFeatures, p)

	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0
	sorted := make([]int, len(idx))
	for _, f := range candidates {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		// prefix sums let every split point be scored in one pass
		var sumL, sqL float64
		sumT, sqT := 0.0, 0.0
		for _, i := range sorted {
			sumT += y[i]
			sqT += y[i] * y[i]
		}
		n := float64(len(sorted))
		for k := 0; k < len(sorted)-1; k++ {
			i := sorted[k]
			sumL += y[i]
			sqL += y[i] * y[i]
			if X[sorted[k]][f] == X[sorted[k+1]][f] {
				continue // cannot split between equal values
			}
			nl := float64(k + 1)
			nr := n - nl
			if int(nl) < p.minLeaf || int(nr) < p.minLeaf {
				continue
			}
			sseL := sqL - sumL*sumL/nl
			sumR := sumT - sumL
			sseR := (sqT - sqL) - sumR*sumR/nr
			gain := sse - (sseL + sseR)
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (X[sorted[k]][f] + X[sorted[k+1]][f]) / 2
			}
		}
	}

	if bestFeature < 0 {
		return &treeNode{leaf: true, value: mean}
	}

	leftIdx := make([]int, 0, len(idx))
	rightIdx := make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][bestFeature] <= bestThreshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return &treeNode{leaf: true, value: mean}
	}

	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      growNode(X, y, leftIdx, depth+1, p),
		right:     growNode(X, y, rightIdx, depth+1, p),
	}
}

func featureCandidates(nFeatures int, p treeParams) []int {
	if p.maxFeatures <= 0 || p.maxFeatures >= nFeatures || p.rng == nil {
		all := make([]int, nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := p.rng.Perm(nFeatures)
	return perm[:p.maxFeatures]
}

func meanSSE(y []float64, idx []int) (mean, sse float64) {
	var sum, sq float64
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	n := float64(len(idx))
	mean = sum / n
	sse = sq - sum*sum/n
	if sse < 0 {
		sse = 0
	}
	return mean, sse
}

func (t *regressionTree) predict(row []float64) float64 {
	node := t.root
	for node != nil && !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	if node == nil {
		return 0
	}
	return node.value
}
