package ring

import (
	"math/big"
	"math/bits"
)

//============================
//=== MONTGOMERY REDUCTION ===
//============================

// MForm returns a*2^64 mod q.
func MForm(a, q uint64, bredconstant [2]uint64) (r uint64) {
	mhi, _ := bits.Mul64(a, bredconstant[1])
	r = -(a*bredconstant[0] + mhi) * q
	if r >= q {
		r -= q
	}
	return
}

// IMForm returns a*(1/2^64) mod q.
func IMForm(a, q, mredconstant uint64) (r uint64) {
	r, _ = bits.Mul64(a*mredconstant, q)
	r = q - r
	if r >= q {
		r -= q
	}
	return
}

// GenMRedConstant computes the constant qInv = (q^-1) mod 2^64 required for MRed.
// q must be odd.
func GenMRedConstant(q uint64) (qInv uint64) {
	qInv = 1
	for i := 0; i < 63; i++ {
		qInv *= q
		q *= q
	}
	return
}

// MRed computes x * y * (1/2^64) mod q.
func MRed(x, y, q, mredconstant uint64) (r uint64) {
	mhi, mlo := bits.Mul64(x, y)
	hhi, _ := bits.Mul64(mlo*mredconstant, q)
	r = mhi - hhi + q
	if r >= q {
		r -= q
	}
	return
}

// MRedLazy computes x * y * (1/2^64) mod q with the output in the range [0, 2q-1].
func MRedLazy(x, y, q, mredconstant uint64) (r uint64) {
	ahi, alo := bits.Mul64(x, y)
	H, _ := bits.Mul64(alo*mredconstant, q)
	r = ahi - H + q
	return
}

//==========================
//=== BARRETT REDUCTION  ===
//==========================

// GenBRedConstant computes the constant for the BRed algorithm.
// Returns ((2^128)/q)/(2^64) and (2^128)/q mod 2^64.
func GenBRedConstant(q uint64) [2]uint64 {
	bigR := new(big.Int).Lsh(big.NewInt(1), 128)
	bigR.Quo(bigR, new(big.Int).SetUint64(q))

	mhi := new(big.Int).Rsh(bigR, 64).Uint64()
	mlo := bigR.Uint64()

	return [2]uint64{mhi, mlo}
}

// BRedAdd computes a mod q.
func BRedAdd(a, q uint64, bredconstant [2]uint64) (r uint64) {
	mhi, _ := bits.Mul64(a, bredconstant[0])
	r = a - mhi*q
	if r >= q {
		r -= q
	}
	return
}

// BRed computes x*y mod q, the 128-bit product being reduced
// with the constant floor(2^128/q).
func BRed(x, y, q uint64, bredconstant [2]uint64) (r uint64) {

	var lhi, mhi, mlo, s0, s1, carry uint64

	ahi, alo := bits.Mul64(x, y)

	// (alo*ulo)>>64
	lhi, _ = bits.Mul64(alo, bredconstant[1])

	// ((ahi*ulo + alo*uhi) + (alo*ulo))>>64
	mhi, mlo = bits.Mul64(alo, bredconstant[0])

	s0, carry = bits.Add64(mlo, lhi, 0)

	s1 = mhi + carry

	mhi, mlo = bits.Mul64(ahi, bredconstant[1])

	_, carry = bits.Add64(mlo, s0, 0)

	lhi = mhi + carry

	// (ahi*uhi) + (((ahi*ulo + alo*uhi) + (alo*ulo))>>64)
	s0 = ahi*bredconstant[0] + s1 + lhi

	r = alo - s0*q

	if r >= q {
		r -= q
	}

	return
}

//===============================
//==== CONDITIONAL REDUCTION ====
//===============================

// CRed reduce returns a mod q, where
// a is required to be in the range [0, 2q-1].
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}

//=====================
//==== MODULAR OPS ====
//=====================

// ModExp performs the modular exponentiation x^e mod q.
// x and q must be smaller than 2^64.
func ModExp(x, e, q uint64) (result uint64) {
	bredconstant := GenBRedConstant(q)
	result = 1 % q
	x = BRedAdd(x, q, bredconstant)
	for i := e; i > 0; i >>= 1 {
		if i&1 == 1 {
			result = BRed(result, x, q, bredconstant)
		}
		x = BRed(x, x, q, bredconstant)
	}
	return
}

// ModExpMontgomery performs the modular exponentiation x^e mod q,
// where x is in Montgomery form, and returns x^e in Montgomery form.
func ModExpMontgomery(x, e, q, mredconstant uint64, bredconstant [2]uint64) (result uint64) {
	result = MForm(1, q, bredconstant)
	for i := e; i > 0; i >>= 1 {
		if i&1 == 1 {
			result = MRed(result, x, q, mredconstant)
		}
		x = MRed(x, x, q, mredconstant)
	}
	return
}

// ModInverse returns x^-1 mod q for a prime q, by Fermat's little theorem.
// It returns 0 if x = 0 mod q.
func ModInverse(x, q uint64) uint64 {
	return ModExp(x, q-2, q)
}
