// Package gaussian implements samplers of the discrete Gaussian distribution over the integers:
// Knuth-Yao and Peikert base samplers with an arbitrary center, a zero-centered sampler
// switching to Karney's algorithm for large standard deviations, and a generic sampler
// for arbitrary centers and standard deviations built on a set of base samplers.
package gaussian

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxDiscreteGaussianLevels is the number of levels of the generic sampler,
	// the base sampler followed by MaxDiscreteGaussianLevels-1 combiners.
	MaxDiscreteGaussianLevels = 4

	// KarneyThreshold is the standard deviation from which DiscreteGaussian
	// switches from the Peikert table to Karney's algorithm.
	KarneyThreshold = 300.0

	// Precision is the number of bits of precision of the centers handled by the generic sampler.
	Precision = 53

	// BernoulliFlips is the number of random bits flipped to round a center.
	BernoulliFlips = 23

	// Acc is the tail probability cut from the support of the base samplers.
	Acc = 1e-17

	// MaxLogStdDev is the log2 of the largest supported standard deviation.
	MaxLogStdDev = 59

	// peikertTailCut is sqrt(-2 ln(5e-32)), which cuts a tail of probability about 2^-100.
	peikertTailCut = 12.00610553538285
)

var (
	// ErrStdDevTooLarge is returned when the standard deviation exceeds 2^MaxLogStdDev.
	ErrStdDevTooLarge = errors.New("standard deviation too large")

	// ErrInvalidStdDev is returned when the standard deviation is not a positive finite number.
	ErrInvalidStdDev = errors.New("invalid standard deviation")
)

// IntegerSampler is an interface for samplers of integers.
type IntegerSampler interface {
	// GenerateInteger returns a new sample.
	GenerateInteger() int64
	// RandomBit returns a uniform random bit.
	RandomBit() uint8
}

func checkStdDev(stdDev float64) error {
	if math.IsNaN(stdDev) || math.IsInf(stdDev, 0) || stdDev <= 0 {
		return fmt.Errorf("%f: %w", stdDev, ErrInvalidStdDev)
	}
	if math.Log2(stdDev) > MaxLogStdDev {
		return fmt.Errorf("%f > 2^%d: %w", stdDev, MaxLogStdDev, ErrStdDevTooLarge)
	}
	return nil
}

// tailCut returns the bound fin = ceil(stdDev * sqrt(-2 ln Acc)) of the support [-fin, fin].
func tailCut(stdDev float64) int {
	return int(math.Ceil(stdDev * math.Sqrt(-2*math.Log(Acc))))
}
