package evaluation

import "fmt"

// Scores are binary classification metrics with class 1 as the positive
// class. Undefined ratios are reported as zero.
type Scores struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Map returns the scores keyed by metric name.
func (s Scores) Map() map[string]float64 {
	return map[string]float64{
		"accuracy":  s.Accuracy,
		"precision": s.Precision,
		"recall":    s.Recall,
		"f1":        s.F1,
	}
}

// BinaryScores compares predictions against the true labels.
func BinaryScores(yTrue, yPred []int) (Scores, error) {
	if len(yTrue) != len(yPred) {
		return Scores{}, fmt.Errorf("labels and predictions differ in length: %d != %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return Scores{}, fmt.Errorf("no samples to score")
	}
	var tp, fp, fn, correct float64
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			tp++
		case yPred[i] == 1:
			fp++
		case yTrue[i] == 1:
			fn++
		}
	}
	s := Scores{Accuracy: correct / float64(len(yTrue))}
	if tp+fp > 0 {
		s.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		s.Recall = tp / (tp + fn)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s, nil
}
