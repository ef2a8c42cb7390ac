package app

import (
	"fmt"
	"math/rand/v2"

	"listing_seeder/internal/domain"
)

var ErrInvalidRange = &domain.CodedError{Code: "invalid_range", Msg: "invalid subset range"}

// RandomSubset returns between minCount and maxCount distinct elements of items
// in random order. The size is uniform in [minCount, maxCount]; items is not modified.
func RandomSubset[T any](rng *rand.Rand, items []T, minCount, maxCount int) ([]T, error) {
	if minCount > maxCount {
		return nil, fmt.Errorf("%w: min %d > max %d", ErrInvalidRange, minCount, maxCount)
	}
	if minCount < 0 || maxCount > len(items) {
		return nil, fmt.Errorf("%w: [%d,%d] outside [0,%d]", ErrInvalidRange, minCount, maxCount, len(items))
	}

	size := minCount + rng.IntN(maxCount-minCount+1)
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:size:size], nil
}
