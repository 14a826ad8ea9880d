package factorization

import (
	"fmt"
	"math/big"

	"github.com/latticore/latticore/utils/sampling"
)

// Weierstrass is an elliptic curve y^2 = x^3 + ax + b mod N.
// N is not required to be prime: the group law is only used to
// expose non-invertible denominators, which reveal factors of N.
type Weierstrass struct {
	A, B, N *big.Int
}

// Point represents an elliptic curve point in standard coordinates.
// The point at infinity is represented by X == nil.
type Point struct {
	X, Y *big.Int
}

// IsInfinity returns true if P is the point at infinity.
func (P Point) IsInfinity() bool {
	return P.X == nil
}

// Add adds two Weierstrass points together with respect
// to the underlying Weierstrass curve.
// If a denominator of the group law is not invertible modulo N,
// the computation stops and the returned divisor is gcd(denominator, N).
// This method does not check if the points lie on the underlying curve.
func (w *Weierstrass) Add(P, Q Point) (R Point, divisor *big.Int) {

	if P.IsInfinity() {
		return Q, nil
	}

	if Q.IsInfinity() {
		return P, nil
	}

	N := w.N

	xP, yP := P.X, P.Y
	xQ, yQ := Q.X, Q.Y

	num, den := new(big.Int), new(big.Int)

	if xP.Cmp(xQ) != 0 {
		// S = (yQ-yP)/(xQ-xP)
		num.Sub(yQ, yP)
		den.Sub(xQ, xP)
	} else {

		if num.Add(yP, yQ).Mod(num, N).Sign() == 0 {
			return Point{}, nil
		}

		// S = (3*(xP^2) + a)/(2*yP)
		num.Mul(xP, xP)
		num.Mul(num, big.NewInt(3))
		num.Add(num, w.A)
		den.Add(yP, yP)
	}

	den.Mod(den, N)

	if g := new(big.Int).GCD(nil, nil, den, N); g.Cmp(big.NewInt(1)) != 0 {
		return Point{}, g
	}

	S := num.Mul(num, den.ModInverse(den, N))
	S.Mod(S, N)

	// s^2 - xP - xQ
	xR := new(big.Int).Mul(S, S)
	xR.Sub(xR, xP)
	xR.Sub(xR, xQ)
	xR.Mod(xR, N)

	// s*(xP-xR)-yP
	yR := new(big.Int).Sub(xP, xR)
	yR.Mul(yR, S)
	yR.Sub(yR, yP)
	yR.Mod(yR, N)

	return Point{X: xR, Y: yR}, nil
}

// ScalarMul returns k*P using double-and-add.
// It stops early and returns the divisor if Add exposes one.
func (w *Weierstrass) ScalarMul(P Point, k uint64) (R Point, divisor *big.Int) {

	R = Point{}

	for k > 0 {

		if k&1 == 1 {
			if R, divisor = w.Add(R, P); divisor != nil {
				return
			}
		}

		if P, divisor = w.Add(P, P); divisor != nil {
			return
		}

		k >>= 1
	}

	return
}

// NewRandomWeierstrassCurve generates a new random Weierstrass curve modulo N,
// along with a random point that lies on the curve.
func NewRandomWeierstrassCurve(N *big.Int) (Weierstrass, Point) {

	var A, B, xG, yG *big.Int

	for i := 0; i < maxAttempts; i++ {

		// Select random values for A, xG and yG
		A = sampling.RandInt(N)
		xG = sampling.RandInt(N)
		yG = sampling.RandInt(N)

		// Deduces B from Y^2 = X^3 + A * X + B evaluated at point (xG, yG)
		yGpow2 := new(big.Int).Mul(yG, yG)
		yGpow2.Mod(yGpow2, N)

		xGpow3 := new(big.Int).Mul(xG, xG)
		xGpow3.Add(xGpow3, A)
		xGpow3.Mul(xGpow3, xG)
		xGpow3.Mod(xGpow3, N)

		B = new(big.Int).Sub(yGpow2, xGpow3) // B = yG^2 - xG*(xG^2 + A)
		B.Mod(B, N)

		// Checks that gcd(4A^3 + 27B^2, N) = 1
		fourACube := new(big.Int).Mul(A, A)
		fourACube.Mul(fourACube, A)
		fourACube.Mul(fourACube, big.NewInt(4))

		twentySevenBSquare := new(big.Int).Mul(B, B)
		twentySevenBSquare.Mul(twentySevenBSquare, big.NewInt(27))

		disc := new(big.Int).Add(fourACube, twentySevenBSquare)
		disc.Mod(disc, N)

		if disc.Sign() != 0 && new(big.Int).GCD(nil, nil, N, disc).Cmp(big.NewInt(1)) == 0 {
			return Weierstrass{
				A: A,
				B: B,
				N: N,
			}, Point{X: xG, Y: yG}
		}
	}

	panic(fmt.Errorf("cannot NewRandomWeierstrassCurve: no valid curve after %d attempts", maxAttempts))
}
