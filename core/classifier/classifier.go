package classifier

import (
	"encoding/gob"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Method names a classifier variant.
type Method string

const (
	MethodRandomForest Method = "RandomForest"
	MethodGBDT         Method = "GBDT"
	MethodKNN          Method = "KNN"
	MethodNaiveBayes   Method = "NaiveBayes"
)

var (
	// ErrUnknownMethod is returned for method names without a registered variant.
	ErrUnknownMethod = errors.New("unknown classifier method")
	// ErrNotFitted is returned when predicting with an unfitted classifier.
	ErrNotFitted = errors.New("classifier is not fitted")
)

// Classifier is a binary probabilistic classifier.
type Classifier interface {
	// Fit trains on the rows of x with labels y in {0, 1}.
	Fit(x mat.Matrix, y []int) error
	// PredictProba returns the class-1 probability of every row of x.
	PredictProba(x mat.Matrix) ([]float64, error)
	// Method reports the variant name.
	Method() Method
}

func init() {
	gob.Register(&GaussianNB{})
	gob.Register(&KNN{})
	gob.Register(&RandomForest{})
	gob.Register(&GBDT{})
}

// rowsOf copies the rows of x.
func rowsOf(x mat.Matrix) [][]float64 {
	r, _ := x.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, x)
	}
	return rows
}

func checkFitInput(x mat.Matrix, y []int) ([][]float64, error) {
	if x == nil {
		return nil, errors.New("nil training matrix")
	}
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return nil, errors.New("empty training matrix")
	}
	if r != len(y) {
		return nil, fmt.Errorf("matrix has %d rows but %d labels", r, len(y))
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, fmt.Errorf("label %d at row %d is not binary", v, i)
		}
	}
	return rowsOf(x), nil
}

func checkPredictInput(x mat.Matrix, width int) ([][]float64, error) {
	if x == nil {
		return nil, errors.New("nil input matrix")
	}
	_, c := x.Dims()
	if c != width {
		return nil, fmt.Errorf("input has %d features, classifier was fitted with %d", c, width)
	}
	return rowsOf(x), nil
}
