package evaluation

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoThreshold is returned when no operating point satisfies the recall
// floor.
var ErrNoThreshold = errors.New("no threshold satisfies the recall floor")

// Curve is a precision-recall curve. Thresholds are the distinct scores in
// ascending order; Precision and Recall hold one entry per threshold plus a
// final (1, 0) point that has no threshold.
type Curve struct {
	Precision  []float64
	Recall     []float64
	Thresholds []float64
}

// PrecisionRecallCurve computes the curve for binary labels and class-1
// scores. When there are no positive labels recall is reported as 1 at every
// threshold.
func PrecisionRecallCurve(yTrue []int, scores []float64) (Curve, error) {
	if len(yTrue) != len(scores) {
		return Curve{}, fmt.Errorf("labels and scores differ in length: %d != %d", len(yTrue), len(scores))
	}
	if len(scores) == 0 {
		return Curve{}, errors.New("empty scores")
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	var tps, fps, thr []float64
	var tp, fp float64
	for i, idx := range order {
		if yTrue[idx] == 1 {
			tp++
		} else {
			fp++
		}
		if i == len(order)-1 || scores[order[i+1]] != scores[idx] {
			tps = append(tps, tp)
			fps = append(fps, fp)
			thr = append(thr, scores[idx])
		}
	}

	m := len(thr)
	c := Curve{
		Precision:  make([]float64, m+1),
		Recall:     make([]float64, m+1),
		Thresholds: make([]float64, m),
	}
	total := tps[m-1]
	for i := 0; i < m; i++ {
		j := m - 1 - i
		if tps[j]+fps[j] > 0 {
			c.Precision[i] = tps[j] / (tps[j] + fps[j])
		}
		if total > 0 {
			c.Recall[i] = tps[j] / total
		} else {
			c.Recall[i] = 1
		}
		c.Thresholds[i] = thr[j]
	}
	c.Precision[m] = 1
	c.Recall[m] = 0
	return c, nil
}

// SelectThreshold returns the highest threshold attaining the best precision
// among operating points whose recall is at least floor. The final (1, 0)
// point takes part in the search; when it attains the best precision there
// is no threshold to return and ErrNoThreshold is reported.
func SelectThreshold(c Curve, floor float64) (float64, error) {
	best := -1.0
	for i := range c.Precision {
		if i < len(c.Recall) && c.Recall[i] >= floor && c.Precision[i] > best {
			best = c.Precision[i]
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("%w: recall >= %v", ErrNoThreshold, floor)
	}
	for i := len(c.Precision) - 1; i >= 0; i-- {
		if i >= len(c.Recall) || c.Recall[i] < floor || c.Precision[i] != best {
			continue
		}
		if i >= len(c.Thresholds) {
			return 0, fmt.Errorf("%w: best precision %v is only reached without a threshold", ErrNoThreshold, best)
		}
		return c.Thresholds[i], nil
	}
	return 0, ErrNoThreshold
}
