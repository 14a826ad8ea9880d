package gaussian

import (
	"fmt"
	"math"
	"math/big"
	"sort"

	"github.com/latticore/latticore/utils/bignum"
	"github.com/latticore/latticore/utils/sampling"
)

// BaseSamplerType selects the algorithm of a BaseSampler.
type BaseSamplerType int

const (
	// KnuthYao samples by walking a discrete distribution generating tree built
	// from the binary expansion of the probabilities.
	KnuthYao BaseSamplerType = iota
	// Peikert samples by inversion of the cumulative distribution function.
	Peikert
)

func (t BaseSamplerType) String() string {
	switch t {
	case KnuthYao:
		return "KnuthYao"
	case Peikert:
		return "Peikert"
	default:
		return fmt.Sprintf("BaseSamplerType(%d)", int(t))
	}
}

const (
	ddgInternal = -1
	ddgDead     = -2

	// depth of the tree, one level per bit of the fixed-point probabilities
	ddgDepth = 64

	// precision in bits of the probabilities of the Knuth-Yao matrix
	probabilityPrec = 128
)

// BaseSampler samples the discrete Gaussian distribution of a fixed mean and
// standard deviation, on the support [-fin, fin] + floor(mean) with
// fin = ceil(stdDev * sqrt(-2 ln Acc)).
type BaseSampler struct {
	samplerType BaseSamplerType
	mean        float64
	stdDev      float64

	prng sampling.PRNG
	bg   *BitGenerator

	fin    int
	offset int64

	// Knuth-Yao
	ddgTree  [][]int32
	errorRow int32

	// Peikert
	cdf []float64
}

// NewBaseSampler creates a new BaseSampler of the given mean and standard deviation,
// reading its randomness from prng.
func NewBaseSampler(prng sampling.PRNG, mean, stdDev float64, samplerType BaseSamplerType) (s *BaseSampler, err error) {

	if err = checkStdDev(stdDev); err != nil {
		return nil, fmt.Errorf("cannot NewBaseSampler: %w", err)
	}

	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, fmt.Errorf("cannot NewBaseSampler: invalid mean %f", mean)
	}

	floorMean := math.Floor(mean)
	center := mean - floorMean

	s = &BaseSampler{
		samplerType: samplerType,
		mean:        mean,
		stdDev:      stdDev,
		prng:        prng,
		bg:          NewBitGenerator(prng),
		fin:         tailCut(stdDev),
	}

	s.offset = int64(floorMean) - int64(s.fin)

	switch samplerType {
	case KnuthYao:
		s.genDDGTree(s.genProbabilityMatrix(center))
	case Peikert:
		s.genCDF(center)
	default:
		return nil, fmt.Errorf("cannot NewBaseSampler: invalid sampler type %s", samplerType)
	}

	return
}

// NewBaseSamplers creates the 2^logBase base samplers of standard deviation stdDev
// and means i/2^logBase used by DiscreteGaussianGeneric.
func NewBaseSamplers(prng sampling.PRNG, stdDev float64, logBase int, samplerType BaseSamplerType) (samplers []*BaseSampler, err error) {

	if logBase < 1 || logBase > Precision-BernoulliFlips {
		return nil, fmt.Errorf("cannot NewBaseSamplers: logBase must be in [1, %d] but is %d", Precision-BernoulliFlips, logBase)
	}

	samplers = make([]*BaseSampler, 1<<logBase)

	for i := range samplers {
		mean := float64(i) / float64(int(1)<<logBase)
		if samplers[i], err = NewBaseSampler(prng, mean, stdDev, samplerType); err != nil {
			return nil, fmt.Errorf("cannot NewBaseSamplers: %w", err)
		}
	}

	return
}

// Type returns the algorithm of the sampler.
func (s *BaseSampler) Type() BaseSamplerType {
	return s.samplerType
}

// Mean returns the mean of the sampled distribution.
func (s *BaseSampler) Mean() float64 {
	return s.mean
}

// StdDev returns the standard deviation of the sampled distribution.
func (s *BaseSampler) StdDev() float64 {
	return s.stdDev
}

// GenerateInteger returns a new sample.
func (s *BaseSampler) GenerateInteger() int64 {
	if s.samplerType == KnuthYao {
		return s.generateKnuthYao()
	}
	return s.generatePeikert()
}

// RandomBit returns a uniform random bit.
func (s *BaseSampler) RandomBit() uint8 {
	return s.bg.Generate()
}

// genProbabilityMatrix returns the probabilities of [-fin, fin] + center as 64-bit fixed-point
// values, followed by an error row holding the remaining mass so that the rows sum to 2^64.
func (s *BaseSampler) genProbabilityMatrix(center float64) (matrix []uint64) {

	prec := uint(probabilityPrec)
	size := 2*s.fin + 1

	twoVar := bignum.NewFloat(s.stdDev, prec)
	twoVar.Mul(twoVar, twoVar)
	twoVar.Mul(twoVar, bignum.NewFloat(2, prec))

	c := bignum.NewFloat(center, prec)
	sum := bignum.NewFloat(0, prec)
	rho := make([]*big.Float, size)

	for i := range rho {
		x := bignum.NewFloat(i-s.fin, prec)
		x.Sub(x, c)
		x.Mul(x, x)
		x.Quo(x, twoVar)
		x.Neg(x)
		rho[i] = bignum.Exp(x)
		sum.Add(sum, rho[i])
	}

	matrix = make([]uint64, size+1)

	var total uint64
	p := bignum.NewFloat(nil, prec)
	for i := range rho {
		p.Quo(rho[i], sum)
		p.SetMantExp(p, ddgDepth)
		matrix[i], _ = p.Uint64()
		total += matrix[i]
	}

	// 2^64 - total
	matrix[size] = -total

	return
}

// genDDGTree builds the discrete distribution generating tree of the matrix.
// At each depth, internal nodes come first and are followed by the terminal
// nodes, one per row having its bit of the matching weight set.
func (s *BaseSampler) genDDGTree(matrix []uint64) {

	s.errorRow = int32(len(matrix) - 1)
	s.ddgTree = s.ddgTree[:0]

	internal := 1

	for i := 0; i < ddgDepth && internal > 0; i++ {

		shift := uint(ddgDepth - 1 - i)

		level := make([]int32, internal<<1)

		var weight int
		for _, p := range matrix {
			weight += int((p >> shift) & 1)
		}

		next := len(level) - weight

		for j := range level {
			if j < next {
				level[j] = ddgInternal
			} else {
				level[j] = ddgDead
			}
		}

		j := next
		for row, p := range matrix {
			if (p>>shift)&1 == 1 && j < len(level) {
				if j >= 0 {
					level[j] = int32(row)
				}
				j++
			}
		}

		s.ddgTree = append(s.ddgTree, level)
		internal = next
	}
}

func (s *BaseSampler) generateKnuthYao() int64 {

	for attempt := 0; attempt < sampling.MaxRejectionAttempts; attempt++ {

		node := 0

		for _, level := range s.ddgTree {

			node = node<<1 | int(s.bg.Generate())

			if v := level[node]; v != ddgInternal {
				if v >= 0 && v != s.errorRow {
					return int64(v) + s.offset
				}
				// error row or dead node
				break
			}
		}
	}

	panic(fmt.Errorf("cannot GenerateInteger: Knuth-Yao sampling exceeded %d attempts", sampling.MaxRejectionAttempts))
}

func (s *BaseSampler) genCDF(center float64) {

	twoVar := 2 * s.stdDev * s.stdDev

	s.cdf = make([]float64, 2*s.fin+1)

	var sum float64
	for i := range s.cdf {
		x := float64(i-s.fin) - center
		sum += math.Exp(-x * x / twoVar)
		s.cdf[i] = sum
	}

	for i := range s.cdf {
		s.cdf[i] /= sum
	}
}

func (s *BaseSampler) generatePeikert() int64 {
	u := sampling.ReadFloat64(s.prng)
	i := sort.SearchFloat64s(s.cdf, u)
	if i == len(s.cdf) {
		i--
	}
	return int64(i) + s.offset
}
