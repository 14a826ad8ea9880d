package ring

import (
	"fmt"
	"math/bits"
)

func numWindows(modulus uint64, baseBits int) int {
	if baseBits < 1 || baseBits > MaxLogStep {
		panic(fmt.Errorf("invalid base bit-size %d: must be in [1, %d]", baseBits, MaxLogStep))
	}
	return (bits.Len64(modulus) + baseBits - 1) / baseBits
}

// BaseDecompose decomposes p in base 2^baseBits: the j-th coefficient of the
// i-th returned polynomial is the i-th digit of the j-th entry of p, so that
// p = sum_i digits[i] * 2^(i*baseBits). The digits are returned in Evaluation
// format if evalModeAnswer is true, in Coefficient format otherwise.
func (p *Poly) BaseDecompose(baseBits int, evalModeAnswer bool) (digits []*Poly, err error) {

	windows := numWindows(p.params.modulus, baseBits)
	mask := uint64(1)<<baseBits - 1

	values := p.values.Values()

	digits = make([]*Poly, windows)

	for i := range digits {

		digits[i] = p.ctx.NewPoly(p.params, Coefficient)

		shift := uint(i * baseBits)

		for j, v := range values {
			digits[i].values.Set(j, (v>>shift)&mask)
		}

		if evalModeAnswer {
			if err = digits[i].SwitchFormat(); err != nil {
				return nil, fmt.Errorf("cannot BaseDecompose: %w", err)
			}
		}
	}

	return
}

// PowersOfBase returns [p, p*2^baseBits, p*2^(2*baseBits), ...], with as many
// polynomials as returned by BaseDecompose.
func (p *Poly) PowersOfBase(baseBits int) (powers []*Poly) {

	windows := numWindows(p.params.modulus, baseBits)

	powers = make([]*Poly, windows)

	q := p.params.modulus
	bredconstant := p.values.bredconstant

	// 2^(i*baseBits) mod q
	pow := uint64(1)
	base := BRedAdd(uint64(1)<<baseBits, q, bredconstant)

	for i := range powers {
		powers[i] = p.MulScalar(pow)
		pow = BRed(pow, base, q, bredconstant)
	}

	return
}
