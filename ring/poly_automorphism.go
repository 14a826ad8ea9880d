package ring

import (
	"fmt"

	"github.com/latticore/latticore/utils"
)

// AutomorphismIndex returns the permutation applied by the automorphism X -> X^k
// on polynomials in Evaluation format: the i-th entry of the result is the
// index[i]-th entry of the input. k must be odd.
func AutomorphismIndex(params ElementParams, k uint64) (index []uint64) {

	if k&1 == 0 {
		panic(fmt.Errorf("cannot AutomorphismIndex: k=%d is even", k))
	}

	N := params.RingDimension()
	logN := params.LogN()
	mask := uint64(params.cyclotomicOrder - 1)

	index = make([]uint64, N)

	for i := range index {
		tmp1 := 2*utils.BitReverse64(i, logN) + 1
		tmp2 := ((k * tmp1 & mask) - 1) >> 1
		index[i] = utils.BitReverse64(tmp2, logN)
	}

	return
}

// AutomorphismTransform returns the image of p by the automorphism X -> X^k. k must be odd.
func (p *Poly) AutomorphismTransform(k uint64) *Poly {

	if k&1 == 0 {
		panic(fmt.Errorf("cannot AutomorphismTransform: k=%d is even", k))
	}

	if p.format == Evaluation {
		return p.AutomorphismTransformPrecompute(k, AutomorphismIndex(p.params, k))
	}

	res := p.CloneEmpty()

	N := uint64(p.Len())
	mask := N - 1
	logN := uint64(p.params.LogN())
	q := p.params.modulus

	in, out := p.values.coeffs, res.values.coeffs

	for j := uint64(0); j < N; j++ {

		raw := j * k
		index := raw & mask

		// X^N = -1
		if (raw>>logN)&1 == 1 && in[j] != 0 {
			out[index] = q - in[j]
		} else {
			out[index] = in[j]
		}
	}

	return res
}

// AutomorphismTransformPrecompute returns the image of p by the automorphism X -> X^k
// using the index returned by AutomorphismIndex(p.Params(), k).
// p must be in Evaluation format.
func (p *Poly) AutomorphismTransformPrecompute(k uint64, index []uint64) *Poly {

	if p.format != Evaluation {
		panic(fmt.Errorf("cannot AutomorphismTransformPrecompute: polynomial must be in %s format", Evaluation))
	}

	if len(index) != p.Len() {
		panic(fmt.Errorf("cannot AutomorphismTransformPrecompute: index length %d != %d", len(index), p.Len()))
	}

	res := p.CloneEmpty()

	in, out := p.values.coeffs, res.values.coeffs

	for i := range out {
		out[i] = in[index[i]]
	}

	return res
}

// Transpose returns the image of p by the automorphism X -> X^-1 = X^(2N-1).
func (p *Poly) Transpose() *Poly {
	return p.AutomorphismTransform(uint64(p.params.cyclotomicOrder - 1))
}
