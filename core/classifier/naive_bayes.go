package classifier

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// NaiveBayesConfig holds the Gaussian naive Bayes hyperparameters.
type NaiveBayesConfig struct {
	// VarSmoothing is the share of the largest feature variance added to
	// every per-class variance.
	VarSmoothing float64 `json:"var_smoothing"`
	// Priors overrides the class priors estimated from the labels.
	Priors []float64 `json:"priors"`
}

// GaussianNB is a Gaussian naive Bayes classifier.
type GaussianNB struct {
	Config NaiveBayesConfig
	// Theta and Var are per-class feature means and variances.
	Theta   [2][]float64
	Var     [2][]float64
	Prior   [2]float64
	Present [2]bool
	Width   int
}

// NewGaussianNB returns an unfitted classifier.
func NewGaussianNB(cfg NaiveBayesConfig) *GaussianNB { return &GaussianNB{Config: cfg} }

func (nb *GaussianNB) Method() Method { return MethodNaiveBayes }

func (nb *GaussianNB) Fit(x mat.Matrix, y []int) error {
	rows, err := checkFitInput(x, y)
	if err != nil {
		return err
	}
	_, width := x.Dims()

	col := make([]float64, len(rows))
	var maxVar float64
	for j := 0; j < width; j++ {
		for i := range rows {
			col[i] = rows[i][j]
		}
		if _, v := stat.PopMeanVariance(col, nil); v > maxVar {
			maxVar = v
		}
	}
	eps := nb.Config.VarSmoothing * maxVar
	if eps == 0 {
		// constant features would otherwise give zero variances
		eps = 1e-9
	}

	var counts [2]float64
	for _, v := range y {
		counts[v]++
	}
	for c := 0; c < 2; c++ {
		nb.Present[c] = counts[c] > 0
		nb.Theta[c] = make([]float64, width)
		nb.Var[c] = make([]float64, width)
		if !nb.Present[c] {
			continue
		}
		vals := make([]float64, 0, int(counts[c]))
		for j := 0; j < width; j++ {
			vals = vals[:0]
			for i, row := range rows {
				if y[i] == c {
					vals = append(vals, row[j])
				}
			}
			nb.Theta[c][j], nb.Var[c][j] = stat.PopMeanVariance(vals, nil)
			nb.Var[c][j] += eps
		}
	}
	if len(nb.Config.Priors) == 2 {
		nb.Prior = [2]float64{nb.Config.Priors[0], nb.Config.Priors[1]}
	} else {
		n := float64(len(y))
		nb.Prior = [2]float64{counts[0] / n, counts[1] / n}
	}
	nb.Width = width
	return nil
}

func (nb *GaussianNB) PredictProba(x mat.Matrix) ([]float64, error) {
	if nb.Width == 0 {
		return nil, ErrNotFitted
	}
	rows, err := checkPredictInput(x, nb.Width)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		switch {
		case !nb.Present[1]:
			out[i] = 0
		case !nb.Present[0]:
			out[i] = 1
		default:
			jll := []float64{nb.jointLogLikelihood(0, row), nb.jointLogLikelihood(1, row)}
			out[i] = math.Exp(jll[1] - floats.LogSumExp(jll))
		}
	}
	return out, nil
}

func (nb *GaussianNB) jointLogLikelihood(c int, row []float64) float64 {
	ll := math.Log(nb.Prior[c])
	for j, v := range row {
		d := v - nb.Theta[c][j]
		ll -= 0.5 * math.Log(2*math.Pi*nb.Var[c][j])
		ll -= 0.5 * d * d / nb.Var[c][j]
	}
	return ll
}
