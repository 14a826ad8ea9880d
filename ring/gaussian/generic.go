package gaussian

import (
	"fmt"
	"math"
)

// DiscreteGaussianGeneric samples the discrete Gaussian distribution of any
// mean and any standard deviation larger than the one of its base samplers,
// following Micciancio and Walter, "Gaussian sampling over the integers:
// efficient, generic, constant-time", CRYPTO 2017.
//
// A wide sampler, obtained by combining MaxDiscreteGaussianLevels-1 times the
// first base sampler, provides the bulk of the variance. The fractional part
// of the scaled center is then rounded with the 2^logBase base samplers,
// whose means are i/2^logBase, one base-2^logBase digit at a time.
type DiscreteGaussianGeneric struct {
	baseSamplers []*BaseSampler
	wideSampler  IntegerSampler
	combiners    []*Combiner

	baseVariance    float64
	wideVariance    float64
	samplerVariance float64

	k       int
	logBase int
	shift   uint
	mask    int64
}

// NewDiscreteGaussianGeneric creates a new DiscreteGaussianGeneric from the
// 2^logBase base samplers of standard deviation stdDev and means i/2^logBase
// (see NewBaseSamplers), and the smoothing parameter n of the combiners.
func NewDiscreteGaussianGeneric(samplers []*BaseSampler, stdDev float64, logBase int, n float64) (dgg *DiscreteGaussianGeneric, err error) {

	if err = checkStdDev(stdDev); err != nil {
		return nil, fmt.Errorf("cannot NewDiscreteGaussianGeneric: %w", err)
	}

	if logBase < 1 || logBase > Precision-BernoulliFlips {
		return nil, fmt.Errorf("cannot NewDiscreteGaussianGeneric: logBase must be in [1, %d] but is %d", Precision-BernoulliFlips, logBase)
	}

	if len(samplers) != 1<<logBase {
		return nil, fmt.Errorf("cannot NewDiscreteGaussianGeneric: expected %d base samplers but got %d", 1<<logBase, len(samplers))
	}

	if !(n > 0) {
		return nil, fmt.Errorf("cannot NewDiscreteGaussianGeneric: invalid smoothing parameter %f", n)
	}

	dgg = &DiscreteGaussianGeneric{
		baseSamplers: samplers,
		baseVariance: stdDev * stdDev,
		logBase:      logBase,
		mask:         int64(1)<<logBase - 1,
	}

	dgg.wideVariance = dgg.baseVariance
	dgg.wideSampler = samplers[0]
	dgg.combiners = make([]*Combiner, MaxDiscreteGaussianLevels-1)

	t := 2 * n * n

	for i := range dgg.combiners {
		x1 := int64(math.Floor(math.Sqrt(dgg.wideVariance / t)))
		x2 := x1 - 1
		if x2 < 1 {
			x2 = 1
		}
		dgg.combiners[i] = NewCombiner(dgg.wideSampler, dgg.wideSampler, x1, x2)
		dgg.wideSampler = dgg.combiners[i]
		dgg.wideVariance *= float64(x1*x1 + x2*x2)
	}

	dgg.k = int(math.Ceil(float64(Precision-BernoulliFlips) / float64(logBase)))

	// aligns the Precision-BernoulliFlips bits of the center on the k digits
	dgg.shift = uint(dgg.k*logBase - (Precision - BernoulliFlips))

	// sum_{i<k} 2^{-2*logBase*i}
	s, sum := 1.0, 1.0
	for i := 1; i < dgg.k; i++ {
		s /= float64(uint64(1) << (2 * logBase))
		sum += s
	}

	dgg.samplerVariance = sum * dgg.baseVariance

	return
}

// WideVariance returns the variance of the wide sampler.
func (dgg *DiscreteGaussianGeneric) WideVariance() float64 {
	return dgg.wideVariance
}

// SamplerVariance returns the variance added by the rounding of the center.
// Requested standard deviations must have a larger variance.
func (dgg *DiscreteGaussianGeneric) SamplerVariance() float64 {
	return dgg.samplerVariance
}

// GenerateInteger returns a sample of the first base sampler.
func (dgg *DiscreteGaussianGeneric) GenerateInteger() int64 {
	return dgg.baseSamplers[0].GenerateInteger()
}

// RandomBit returns a uniform random bit.
func (dgg *DiscreteGaussianGeneric) RandomBit() uint8 {
	return dgg.baseSamplers[0].RandomBit()
}

// GenerateIntegerWithParams returns a sample of the discrete Gaussian distribution
// of the given mean and standard deviation.
// It panics if stdDev^2 is not larger than SamplerVariance.
func (dgg *DiscreteGaussianGeneric) GenerateIntegerWithParams(mean, stdDev float64) int64 {

	variance := stdDev * stdDev

	if !(variance > dgg.samplerVariance) {
		panic(fmt.Errorf("cannot GenerateIntegerWithParams: variance %f must be larger than %f", variance, dgg.samplerVariance))
	}

	x := float64(dgg.wideSampler.GenerateInteger())

	c := mean + x*math.Sqrt((variance-dgg.samplerVariance)/dgg.wideVariance)
	ci := math.Floor(c)

	return int64(ci) + dgg.flipAndRound(c-ci)
}

// flipAndRound rounds center in [0, 1) to a neighbouring integer with
// BernoulliFlips random bits, and samples around the result.
func (dgg *DiscreteGaussianGeneric) flipAndRound(center float64) int64 {

	c := int64(center * (1 << Precision))
	lo := (c >> BernoulliFlips) << dgg.shift
	hi := ((c >> BernoulliFlips) + 1) << dgg.shift

	for i := BernoulliFlips - 1; i >= 0; i-- {

		bit := dgg.RandomBit()
		t := uint8((c >> i) & 1)

		if bit > t {
			return dgg.sampleC(lo)
		}

		if bit < t {
			return dgg.sampleC(hi)
		}
	}

	return dgg.sampleC(hi)
}

// sampleC samples around center/2^(k*logBase), consuming one base-2^logBase
// digit of center per base sample.
func (dgg *DiscreteGaussianGeneric) sampleC(center int64) int64 {
	c := center
	for i := 0; i < dgg.k; i++ {
		sample := dgg.baseSamplers[dgg.mask&c].GenerateInteger()
		c = (c >> dgg.logBase) + sample
	}
	return c
}
