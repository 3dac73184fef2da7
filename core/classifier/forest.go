package classifier

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// ForestConfig holds the random forest hyperparameters.
type ForestConfig struct {
	NEstimators     int `json:"n_estimators"`
	MaxDepth        int `json:"max_depth"`
	MinSamplesSplit int `json:"min_samples_split"`
	MinSamplesLeaf  int `json:"min_samples_leaf"`
	// MaxFeatures is "sqrt", "log2", "all" or a feature count.
	MaxFeatures string `json:"max_features"`
	Bootstrap   bool   `json:"bootstrap"`
	// ClassWeight is "balanced_subsample", "balanced" or empty for none.
	ClassWeight string `json:"class_weight"`
	RandomState int64  `json:"random_state"`
}

func (c ForestConfig) validate() error {
	if c.NEstimators < 1 {
		return fmt.Errorf("n_estimators must be positive, got %d", c.NEstimators)
	}
	switch c.ClassWeight {
	case "", "balanced", "balanced_subsample":
	default:
		return fmt.Errorf("unsupported class_weight %q", c.ClassWeight)
	}
	if c.MinSamplesSplit < 2 {
		return fmt.Errorf("min_samples_split must be at least 2, got %d", c.MinSamplesSplit)
	}
	if c.MinSamplesLeaf < 1 {
		return fmt.Errorf("min_samples_leaf must be positive, got %d", c.MinSamplesLeaf)
	}
	if _, err := maxFeatures(c.MaxFeatures, 1); err != nil {
		return err
	}
	return nil
}

// maxFeatures resolves the per-split feature budget for width columns.
func maxFeatures(spec string, width int) (int, error) {
	switch spec {
	case "sqrt":
		return max(1, int(math.Sqrt(float64(width)))), nil
	case "log2":
		return max(1, int(math.Log2(float64(width)))), nil
	case "all", "", "None":
		return 0, nil
	}
	n, err := strconv.Atoi(spec)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("unsupported max_features %q", spec)
	}
	return n, nil
}

// RandomForest averages the class-1 leaf shares of bagged CART trees.
type RandomForest struct {
	Config ForestConfig
	Trees  []*Tree
	Width  int
}

// NewRandomForest returns an unfitted forest.
func NewRandomForest(cfg ForestConfig) (*RandomForest, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &RandomForest{Config: cfg}, nil
}

func (f *RandomForest) Method() Method { return MethodRandomForest }

func (f *RandomForest) Fit(x mat.Matrix, y []int) error {
	rows, err := checkFitInput(x, y)
	if err != nil {
		return err
	}
	_, width := x.Dims()
	mf, err := maxFeatures(f.Config.MaxFeatures, width)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(f.Config.RandomState))
	target := make([]float64, len(y))
	for i, v := range y {
		target[i] = float64(v)
	}
	var globalCW [2]float64
	if f.Config.ClassWeight == "balanced" {
		globalCW = balancedWeights(y, nil)
	}

	params := treeParams{
		MaxDepth:        f.Config.MaxDepth,
		MinSamplesSplit: f.Config.MinSamplesSplit,
		MinSamplesLeaf:  f.Config.MinSamplesLeaf,
		MaxFeatures:     mf,
	}
	n := len(rows)
	f.Trees = make([]*Tree, f.Config.NEstimators)
	for t := range f.Trees {
		counts := make([]float64, n)
		if f.Config.Bootstrap {
			for i := 0; i < n; i++ {
				counts[rng.Intn(n)]++
			}
		} else {
			for i := range counts {
				counts[i] = 1
			}
		}
		var cw [2]float64
		switch f.Config.ClassWeight {
		case "balanced_subsample":
			cw = balancedWeights(y, counts)
		case "balanced":
			cw = globalCW
		default:
			cw = [2]float64{1, 1}
		}
		weight := make([]float64, n)
		idx := make([]int, 0, n)
		for i, c := range counts {
			if c == 0 {
				continue
			}
			weight[i] = c * cw[y[i]]
			idx = append(idx, i)
		}
		b := &treeBuilder{
			rows:   rows,
			target: target,
			weight: weight,
			params: params,
			rng:    rng,
			leaf:   weightedMean(target, weight),
		}
		f.Trees[t] = b.build(idx)
	}
	f.Width = width
	return nil
}

// balancedWeights returns n / (classes * count) per class, counting each
// sample counts[i] times when counts is given.
func balancedWeights(y []int, counts []float64) [2]float64 {
	var per [2]float64
	var total float64
	for i, v := range y {
		c := 1.0
		if counts != nil {
			c = counts[i]
		}
		per[v] += c
		total += c
	}
	var present float64
	for _, p := range per {
		if p > 0 {
			present++
		}
	}
	var w [2]float64
	for k, p := range per {
		if p > 0 {
			w[k] = total / (present * p)
		}
	}
	return w
}

func (f *RandomForest) PredictProba(x mat.Matrix) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrNotFitted
	}
	rows, err := checkPredictInput(x, f.Width)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		var s float64
		for _, t := range f.Trees {
			s += t.Predict(row)
		}
		out[i] = s / float64(len(f.Trees))
	}
	return out, nil
}
