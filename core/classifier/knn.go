package classifier

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KNNConfig holds the k-nearest neighbours hyperparameters.
type KNNConfig struct {
	NNeighbors int `json:"n_neighbors"`
	// Weights is "uniform" or "distance".
	Weights string `json:"weights"`
	// P is the Minkowski power: 1 is Manhattan, 2 Euclidean.
	P float64 `json:"p"`
}

func (c KNNConfig) validate() error {
	if c.NNeighbors < 1 {
		return fmt.Errorf("n_neighbors must be positive, got %d", c.NNeighbors)
	}
	if c.Weights != "uniform" && c.Weights != "distance" {
		return fmt.Errorf("unsupported weights %q", c.Weights)
	}
	return checkMinkowski(c.P)
}

// KNN is a brute-force k-nearest neighbours classifier.
type KNN struct {
	Config KNNConfig
	Rows   [][]float64
	Labels []int
}

// NewKNN returns an unfitted classifier.
func NewKNN(cfg KNNConfig) (*KNN, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &KNN{Config: cfg}, nil
}

func (k *KNN) Method() Method { return MethodKNN }

func (k *KNN) Fit(x mat.Matrix, y []int) error {
	rows, err := checkFitInput(x, y)
	if err != nil {
		return err
	}
	k.Rows = rows
	k.Labels = append([]int(nil), y...)
	return nil
}

type neighbour struct {
	dist  float64
	label int
}

func (k *KNN) PredictProba(x mat.Matrix) ([]float64, error) {
	if len(k.Rows) == 0 {
		return nil, ErrNotFitted
	}
	if k.Config.NNeighbors > len(k.Rows) {
		return nil, fmt.Errorf("n_neighbors=%d exceeds %d fitted samples", k.Config.NNeighbors, len(k.Rows))
	}
	rows, err := checkPredictInput(x, len(k.Rows[0]))
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	nb := make([]neighbour, len(k.Rows))
	for i, row := range rows {
		for j, ref := range k.Rows {
			nb[j] = neighbour{dist: floats.Distance(row, ref, k.Config.P), label: k.Labels[j]}
		}
		sort.SliceStable(nb, func(a, b int) bool { return nb[a].dist < nb[b].dist })
		out[i] = k.vote(nb[:k.Config.NNeighbors])
	}
	return out, nil
}

func (k *KNN) vote(nearest []neighbour) float64 {
	if k.Config.Weights == "distance" {
		// exact matches take all the weight
		var exact, exactPos float64
		for _, n := range nearest {
			if n.dist == 0 {
				exact++
				exactPos += float64(n.label)
			}
		}
		if exact > 0 {
			return exactPos / exact
		}
		var total, pos float64
		for _, n := range nearest {
			w := 1 / n.dist
			total += w
			pos += w * float64(n.label)
		}
		return pos / total
	}
	var pos float64
	for _, n := range nearest {
		pos += float64(n.label)
	}
	return pos / float64(len(nearest))
}
