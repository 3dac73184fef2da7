package classifier

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// GBDTConfig holds the gradient boosting hyperparameters.
type GBDTConfig struct {
	NEstimators     int     `json:"n_estimators"`
	LearningRate    float64 `json:"learning_rate"`
	MaxDepth        int     `json:"max_depth"`
	MinSamplesSplit int     `json:"min_samples_split"`
	MinSamplesLeaf  int     `json:"min_samples_leaf"`
	// Subsample is the share of rows drawn without replacement per stage.
	Subsample   float64 `json:"subsample"`
	MaxFeatures string  `json:"max_features"`
	RandomState int64   `json:"random_state"`
}

func (c GBDTConfig) validate() error {
	if c.NEstimators < 1 {
		return fmt.Errorf("n_estimators must be positive, got %d", c.NEstimators)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive, got %v", c.LearningRate)
	}
	if c.Subsample <= 0 || c.Subsample > 1 {
		return fmt.Errorf("subsample must be in (0, 1], got %v", c.Subsample)
	}
	if c.MinSamplesSplit < 2 {
		return fmt.Errorf("min_samples_split must be at least 2, got %d", c.MinSamplesSplit)
	}
	if c.MinSamplesLeaf < 1 {
		return fmt.Errorf("min_samples_leaf must be positive, got %d", c.MinSamplesLeaf)
	}
	_, err := maxFeatures(c.MaxFeatures, 1)
	return err
}

// GBDT is a binary gradient boosting classifier on the logistic loss.
// Each stage fits a regression tree to the residuals and stores Newton step
// leaf values.
type GBDT struct {
	Config GBDTConfig
	Init   float64
	Trees  []*Tree
	Width  int
}

// NewGBDT returns an unfitted booster.
func NewGBDT(cfg GBDTConfig) (*GBDT, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &GBDT{Config: cfg}, nil
}

func (g *GBDT) Method() Method { return MethodGBDT }

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }

func (g *GBDT) Fit(x mat.Matrix, y []int) error {
	rows, err := checkFitInput(x, y)
	if err != nil {
		return err
	}
	_, width := x.Dims()
	mf, err := maxFeatures(g.Config.MaxFeatures, width)
	if err != nil {
		return err
	}
	n := len(rows)
	rng := rand.New(rand.NewSource(g.Config.RandomState))

	var pos float64
	for _, v := range y {
		pos += float64(v)
	}
	prior := pos / float64(n)
	// clip so single-class data keeps a finite log-odds
	prior = math.Min(math.Max(prior, 1e-15), 1-1e-15)
	g.Init = math.Log(prior / (1 - prior))

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = g.Init
	}
	residual := make([]float64, n)
	prob := make([]float64, n)
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	params := treeParams{
		MaxDepth:        g.Config.MaxDepth,
		MinSamplesSplit: g.Config.MinSamplesSplit,
		MinSamplesLeaf:  g.Config.MinSamplesLeaf,
		MaxFeatures:     mf,
	}
	sampleSize := max(1, int(g.Config.Subsample*float64(n)))

	g.Trees = make([]*Tree, g.Config.NEstimators)
	for s := range g.Trees {
		for i := range raw {
			prob[i] = sigmoid(raw[i])
			residual[i] = float64(y[i]) - prob[i]
		}
		idx := rng.Perm(n)
		if sampleSize < n {
			idx = idx[:sampleSize]
		}
		b := &treeBuilder{
			rows:   rows,
			target: residual,
			weight: ones,
			params: params,
			rng:    rng,
			leaf:   newtonStep(residual, prob),
		}
		tree := b.build(idx)
		for i, row := range rows {
			raw[i] += g.Config.LearningRate * tree.Predict(row)
		}
		g.Trees[s] = tree
	}
	g.Width = width
	return nil
}

// newtonStep is the log-loss leaf value sum(r) / sum(p(1-p)).
func newtonStep(residual, prob []float64) func(idx []int) float64 {
	return func(idx []int) float64 {
		var num, den float64
		for _, i := range idx {
			num += residual[i]
			den += prob[i] * (1 - prob[i])
		}
		if math.Abs(den) < 1e-150 {
			return 0
		}
		return num / den
	}
}

func (g *GBDT) PredictProba(x mat.Matrix) ([]float64, error) {
	if len(g.Trees) == 0 {
		return nil, ErrNotFitted
	}
	rows, err := checkPredictInput(x, g.Width)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		v := g.Init
		for _, t := range g.Trees {
			v += g.Config.LearningRate * t.Predict(row)
		}
		out[i] = sigmoid(v)
	}
	return out, nil
}
