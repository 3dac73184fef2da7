package classifier

import (
	"fmt"
	"math"
)

func checkMinkowski(p float64) error {
	if p < 1 || math.IsInf(p, 0) || math.IsNaN(p) {
		return fmt.Errorf("minkowski power must be a finite value >= 1, got %v", p)
	}
	return nil
}
