package gaussian

import (
	"fmt"
	"math"

	"github.com/latticore/latticore/utils/sampling"
)

// GenerateIntegerKarney returns a sample of the discrete Gaussian distribution of the
// given mean and standard deviation using Karney's algorithm D.
//
// See C. F. F. Karney, "Sampling exactly from the normal distribution", 2016.
func (dg *DiscreteGaussian) GenerateIntegerKarney(mean, stdDev float64) int64 {

	ceilStdDev := uint64(math.Ceil(stdDev))

	for attempt := 0; attempt < sampling.MaxRejectionAttempts; attempt++ {

		// D1: k with probability exp(-k/2)(1 - exp(-1/2))
		k := dg.algorithmG()

		// D2: accept k with probability exp(-k(k-1)/2)
		if !dg.algorithmP(k * (k - 1)) {
			continue
		}

		// D3
		s := int64(1)
		if dg.RandomBit() == 0 {
			s = -1
		}

		// D4
		di0 := stdDev*float64(k) + float64(s)*mean
		i0 := math.Ceil(di0)
		x0 := (i0 - di0) / stdDev
		j := sampling.ReadUint64N(dg.prng, ceilStdDev)

		// D5
		x := x0 + float64(j)/stdDev

		if !(x < 1) || (x == 0 && s < 0 && k == 0) {
			continue
		}

		// D6: accept with probability exp(-x(2k+x)/2), as k+1 trials of B
		h := k + 1
		for h != 0 && dg.algorithmB(k, x) {
			h--
		}

		if h != 0 {
			continue
		}

		// D7
		return s * (int64(i0) + int64(j))
	}

	panic(fmt.Errorf("cannot GenerateIntegerKarney: sampling exceeded %d attempts", sampling.MaxRejectionAttempts))
}

func (dg *DiscreteGaussian) uniform() float64 {
	return sampling.ReadFloat64(dg.prng)
}

// algorithmG returns the number of consecutive successes of algorithm H.
func (dg *DiscreteGaussian) algorithmG() (n int) {
	for dg.algorithmH() {
		n++
		if n == sampling.MaxRejectionAttempts {
			panic(fmt.Errorf("cannot algorithmG: exceeded %d attempts", sampling.MaxRejectionAttempts))
		}
	}
	return
}

// algorithmH returns true with probability exp(-1/2).
func (dg *DiscreteGaussian) algorithmH() bool {

	ha := dg.uniform()

	if !(ha < 0.5) {
		return true
	}

	for i := 0; i < sampling.MaxRejectionAttempts; i++ {

		hb := dg.uniform()

		if !(hb < ha) {
			return false
		}

		ha = dg.uniform()

		if !(ha < hb) {
			return true
		}
	}

	panic(fmt.Errorf("cannot algorithmH: exceeded %d attempts", sampling.MaxRejectionAttempts))
}

// algorithmP returns true with probability exp(-n/2), as n successes of H.
func (dg *DiscreteGaussian) algorithmP(n int) bool {
	for ; n != 0; n-- {
		if !dg.algorithmH() {
			return false
		}
	}
	return true
}

// algorithmB returns true with probability exp(-x(2k+x)/(2k+2)).
func (dg *DiscreteGaussian) algorithmB(k int, x float64) bool {

	y := x
	m := float64(2*k + 2)
	bound := (2*float64(k) + x) / m

	var n int
	for ; n < sampling.MaxRejectionAttempts; n++ {

		z := dg.uniform()

		if !(z < y) {
			break
		}

		if !(dg.uniform() < bound) {
			break
		}

		y = z
	}

	if n == sampling.MaxRejectionAttempts {
		panic(fmt.Errorf("cannot algorithmB: exceeded %d attempts", sampling.MaxRejectionAttempts))
	}

	return n&1 == 0
}
