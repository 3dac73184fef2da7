package evaluation

import (
	"fmt"
	"math/rand"
)

// Split shuffles the indices 0..n-1 and returns the first n-size of them as
// rest and the remaining size as held.
func Split(n, size int, rng *rand.Rand) (rest, held []int, err error) {
	if size < 0 || size > n {
		return nil, nil, fmt.Errorf("split size %d out of range for %d rows", size, n)
	}
	perm := rng.Perm(n)
	return perm[:n-size], perm[n-size:], nil
}

// SubsetIndices maps positions of a previous split back to row indices.
func SubsetIndices(idx, positions []int) []int {
	out := make([]int, len(positions))
	for i, p := range positions {
		out[i] = idx[p]
	}
	return out
}
