package gaussian

import (
	"fmt"
	"math"
	"sort"

	"github.com/latticore/latticore/utils/sampling"
)

// maxParamsAttempts bounds the rejection loop of GenerateIntegerWithParams.
const maxParamsAttempts = 10000

// DiscreteGaussian samples the zero-centered discrete Gaussian distribution.
//
// Below KarneyThreshold, it samples from a precomputed symmetric table of the
// cumulative distribution (Peikert's inversion method) using a single uniform
// variate for both sign and magnitude. From KarneyThreshold on, it uses Karney's
// algorithm, which needs no precomputation.
type DiscreteGaussian struct {
	prng sampling.PRNG
	bg   *BitGenerator

	stdDev  float64
	peikert bool

	// probability of zero
	a float64
	// values[x-1] = a * sum_{i=1}^{x} rho(i)
	values []float64
}

// NewDiscreteGaussian creates a new DiscreteGaussian of the given standard deviation,
// reading its randomness from prng.
func NewDiscreteGaussian(prng sampling.PRNG, stdDev float64) (dg *DiscreteGaussian, err error) {
	dg = &DiscreteGaussian{
		prng: prng,
		bg:   NewBitGenerator(prng),
	}
	if err = dg.SetStdDev(stdDev); err != nil {
		return nil, fmt.Errorf("cannot NewDiscreteGaussian: %w", err)
	}
	return
}

// StdDev returns the standard deviation of the sampler.
func (dg *DiscreteGaussian) StdDev() float64 {
	return dg.stdDev
}

// SetStdDev sets the standard deviation of the sampler and recomputes its table.
// It returns ErrStdDevTooLarge if stdDev is larger than 2^MaxLogStdDev.
func (dg *DiscreteGaussian) SetStdDev(stdDev float64) (err error) {

	if err = checkStdDev(stdDev); err != nil {
		return
	}

	dg.stdDev = stdDev
	dg.peikert = stdDev < KarneyThreshold
	dg.values = dg.values[:0]

	if dg.peikert {
		dg.initialize()
	}

	return
}

func (dg *DiscreteGaussian) initialize() {

	fin := int(math.Ceil(dg.stdDev * peikertTailCut))
	twoVar := 2 * dg.stdDev * dg.stdDev

	dg.values = make([]float64, fin)

	var sum float64
	for x := 1; x <= fin; x++ {
		sum += math.Exp(-float64(x*x) / twoVar)
		dg.values[x-1] = sum
	}

	dg.a = 1 / (2*sum + 1)

	for i := range dg.values {
		dg.values[i] *= dg.a
	}
}

// GenerateInteger returns a new sample.
func (dg *DiscreteGaussian) GenerateInteger() int64 {

	if !dg.peikert {
		return dg.GenerateIntegerKarney(0, dg.stdDev)
	}

	for attempt := 0; attempt < sampling.MaxRejectionAttempts; attempt++ {

		u := sampling.ReadFloat64(dg.prng) - 0.5

		tmp := math.Abs(u) - dg.a/2

		if tmp <= 0 {
			return 0
		}

		i := sort.SearchFloat64s(dg.values, tmp)

		// tail beyond the table
		if i == len(dg.values) {
			continue
		}

		if u > 0 {
			return int64(i + 1)
		}

		return -int64(i + 1)
	}

	panic(fmt.Errorf("cannot GenerateInteger: sampling exceeded %d attempts", sampling.MaxRejectionAttempts))
}

// GenerateIntegers returns n new samples.
func (dg *DiscreteGaussian) GenerateIntegers(n int) (samples []int64) {
	samples = make([]int64, n)
	for i := range samples {
		samples[i] = dg.GenerateInteger()
	}
	return
}

// RandomBit returns a uniform random bit.
func (dg *DiscreteGaussian) RandomBit() uint8 {
	return dg.bg.Generate()
}

// GenerateIntegerWithParams returns a sample of the discrete Gaussian distribution of
// the given mean and standard deviation by rejection sampling on the interval
// [floor(mean - t), ceil(mean + t)] with t = log2(n) * stdDev, where n is the ring dimension.
// It panics if the parameters are invalid or after 10000 rejections.
func (dg *DiscreteGaussian) GenerateIntegerWithParams(mean, stdDev float64, n int) int64 {

	if n < 1 {
		panic(fmt.Errorf("cannot GenerateIntegerWithParams: invalid ring dimension %d", n))
	}

	if err := checkStdDev(stdDev); err != nil {
		panic(fmt.Errorf("cannot GenerateIntegerWithParams: %w", err))
	}

	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		panic(fmt.Errorf("cannot GenerateIntegerWithParams: invalid mean %f", mean))
	}

	t := math.Log2(float64(n)) * stdDev

	lo := int64(math.Floor(mean - t))
	hi := int64(math.Ceil(mean + t))

	sigmaFactor := -1 / (2 * stdDev * stdDev)

	for attempt := 0; attempt < maxParamsAttempts; attempt++ {

		x := lo + int64(sampling.ReadUint64N(dg.prng, uint64(hi-lo+1)))

		d := float64(x) - mean

		if sampling.ReadFloat64(dg.prng) <= math.Exp(sigmaFactor*d*d) {
			return x
		}
	}

	panic(fmt.Errorf("cannot GenerateIntegerWithParams: rejection sampling exceeded %d attempts", maxParamsAttempts))
}
