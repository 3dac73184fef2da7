package classifier

import (
	"math"
	"math/rand"
	"sort"
)

// Node is a decision tree node. Leaves have Feature == -1.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
}

// Tree is a binary decision tree stored as a flat node slice rooted at 0.
type Tree struct {
	Nodes []Node
}

// Predict walks the tree for a single row.
func (t *Tree) Predict(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// treeParams controls tree growth. MaxDepth <= 0 grows until leaves are pure
// or too small, MaxFeatures <= 0 considers every feature at each split.
type treeParams struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
}

// treeBuilder grows CART trees by weighted variance reduction. For 0/1
// targets the weighted variance is half the Gini impurity, so the same
// criterion serves classification and regression.
type treeBuilder struct {
	rows   [][]float64
	target []float64
	weight []float64
	params treeParams
	rng    *rand.Rand
	// leaf computes the value stored in a leaf holding the sample indices.
	leaf func(idx []int) float64
	tree *Tree
}

const minImpurityDecrease = 1e-12

func (b *treeBuilder) build(idx []int) *Tree {
	b.tree = &Tree{}
	b.grow(idx, 0)
	return b.tree
}

func (b *treeBuilder) grow(idx []int, depth int) int {
	pos := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{Feature: -1})

	if b.splittable(idx, depth) {
		if feat, thr, ok := b.bestSplit(idx); ok {
			left := make([]int, 0, len(idx))
			right := make([]int, 0, len(idx))
			for _, i := range idx {
				if b.rows[i][feat] <= thr {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			l := b.grow(left, depth+1)
			r := b.grow(right, depth+1)
			b.tree.Nodes[pos] = Node{Feature: feat, Threshold: thr, Left: l, Right: r}
			return pos
		}
	}
	b.tree.Nodes[pos].Value = b.leaf(idx)
	return pos
}

func (b *treeBuilder) splittable(idx []int, depth int) bool {
	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return false
	}
	if len(idx) < b.params.MinSamplesSplit || len(idx) < 2*b.params.MinSamplesLeaf {
		return false
	}
	first := b.target[idx[0]]
	for _, i := range idx[1:] {
		if b.target[i] != first {
			return true
		}
	}
	return false
}

func (b *treeBuilder) features() []int {
	width := len(b.rows[0])
	if b.params.MaxFeatures <= 0 || b.params.MaxFeatures >= width {
		all := make([]int, width)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return b.rng.Perm(width)[:b.params.MaxFeatures]
}

// impurity returns the weighted sum of squared deviations.
func impurity(w, wy, wyy float64) float64 {
	if w <= 0 {
		return 0
	}
	return wyy - wy*wy/w
}

func (b *treeBuilder) bestSplit(idx []int) (int, float64, bool) {
	var totW, totWY, totWYY float64
	for _, i := range idx {
		w, y := b.weight[i], b.target[i]
		totW += w
		totWY += w * y
		totWYY += w * y * y
	}
	parent := impurity(totW, totWY, totWYY)

	bestGain := minImpurityDecrease
	bestFeat, bestThr, found := -1, 0.0, false
	sorted := make([]int, len(idx))
	minLeaf := b.params.MinSamplesLeaf
	if minLeaf < 1 {
		minLeaf = 1
	}
	for _, f := range b.features() {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool { return b.rows[sorted[a]][f] < b.rows[sorted[c]][f] })
		var lW, lWY, lWYY float64
		for k := 0; k < len(sorted)-1; k++ {
			i := sorted[k]
			w, y := b.weight[i], b.target[i]
			lW += w
			lWY += w * y
			lWYY += w * y * y
			cur, next := b.rows[i][f], b.rows[sorted[k+1]][f]
			if cur == next {
				continue
			}
			if k+1 < minLeaf || len(sorted)-k-1 < minLeaf {
				continue
			}
			gain := parent - impurity(lW, lWY, lWYY) - impurity(totW-lW, totWY-lWY, totWYY-lWYY)
			if gain > bestGain {
				bestGain = gain
				bestFeat = f
				bestThr = cur + (next-cur)/2
				if bestThr == next || math.IsInf(bestThr, 0) {
					bestThr = cur
				}
				found = true
			}
		}
	}
	return bestFeat, bestThr, found
}

// weightedMean is the leaf value of classification trees: the weighted share
// of class 1 among the samples.
func weightedMean(target, weight []float64) func(idx []int) float64 {
	return func(idx []int) float64 {
		var w, wy float64
		for _, i := range idx {
			w += weight[i]
			wy += weight[i] * target[i]
		}
		if w == 0 {
			return 0
		}
		return wy / w
	}
}
