package ring

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/latticore/latticore/utils"
	"github.com/latticore/latticore/utils/factorization"
	"github.com/latticore/latticore/utils/sampling"
)

// ErrNoRootOfUnity is returned when a root of unity of the requested order does not exist.
var ErrNoRootOfUnity = errors.New("no root of unity")

// IsPrime applies the Baillie-PSW, which is 100% accurate for numbers below 2^64.
func IsPrime(x uint64) bool {
	return factorization.IsPrime(new(big.Int).SetUint64(x))
}

// Factors returns the distinct prime factors of n, sorted in increasing order.
func Factors(n uint64) (factors []uint64) {
	factorsBig := factorization.GetFactors(new(big.Int).SetUint64(n))
	factors = make([]uint64, len(factorsBig))
	for i := range factors {
		factors[i] = factorsBig[i].Uint64()
	}
	return
}

// Totient returns Euler's totient function of n, computed from the prime factorization of n.
func Totient(n uint64) (phi uint64) {

	if n == 0 {
		return 0
	}

	phi = n
	for _, p := range Factors(n) {
		phi = phi / p * (p - 1)
	}

	return
}

// IsGenerator returns true if g generates the multiplicative group of Z_q,
// given the distinct prime factors of q-1: g^((q-1)/r) != 1 for every factor r.
func IsGenerator(g, q uint64, factors []uint64) bool {

	if g%q == 0 {
		return false
	}

	for _, r := range factors {
		if ModExp(g, (q-1)/r, q) == 1 {
			return false
		}
	}

	return true
}

// FindGenerator returns a random generator of the multiplicative group of Z_q.
// q must be prime. The search panics if no generator is found after a bounded
// number of attempts, which can only happen with a defective source of randomness.
func FindGenerator(q uint64) (g uint64, err error) {

	if q < 3 || !IsPrime(q) {
		return 0, fmt.Errorf("cannot FindGenerator: %d is not an odd prime", q)
	}

	prng, err := sampling.NewPRNG()
	if err != nil {
		return 0, fmt.Errorf("cannot FindGenerator: %w", err)
	}

	return findGenerator(prng, q), nil
}

func findGenerator(prng sampling.PRNG, q uint64) (g uint64) {

	factors := Factors(q - 1)

	for i := 0; i < maxGeneratorAttempts; i++ {
		// g is uniform in [2, q-1], or 2 for q=3
		g = 2 + sampling.ReadUint64N(prng, q-2)
		if IsGenerator(g, q, factors) {
			return
		}
	}

	panic(fmt.Errorf("cannot FindGenerator: no generator of Z_%d found after %d attempts", q, maxGeneratorAttempts))
}

// RootOfUnity returns the smallest primitive order-th root of unity modulo q.
// q must be prime and equal to 1 mod order.
// The result does not depend on the generator found during the search,
// as every primitive order-th root is a power, coprime to order, of any other.
func RootOfUnity(order, q uint64) (root uint64, err error) {

	if order == 0 {
		return 0, fmt.Errorf("cannot RootOfUnity: order is zero")
	}

	if !IsPrime(q) {
		return 0, fmt.Errorf("cannot RootOfUnity: modulus %d is not prime", q)
	}

	if (q-1)%order != 0 {
		return 0, fmt.Errorf("cannot RootOfUnity: %d != 1 mod %d: %w", q, order, ErrNoRootOfUnity)
	}

	if order == 1 {
		return 1, nil
	}

	var g uint64
	if g, err = FindGenerator(q); err != nil {
		return 0, fmt.Errorf("cannot RootOfUnity: %w", err)
	}

	candidate := ModExp(g, (q-1)/order, q)

	bredconstant := GenBRedConstant(q)

	root = candidate
	power := candidate
	for e := uint64(2); e < order; e++ {
		power = BRed(power, candidate, q, bredconstant)
		if utils.GCD(e, order) == 1 && power < root {
			root = power
		}
	}

	return root, nil
}

// IsPrimitiveRootOfUnity returns true if root has exactly multiplicative order `order` mod q,
// where order is a power of two.
func IsPrimitiveRootOfUnity(root, order, q uint64) bool {
	if !utils.IsPowerOfTwo(order) {
		return false
	}
	if order == 1 {
		return root%q == 1
	}
	return ModExp(root, order>>1, q) == q-1
}

// NextPrime returns the smallest prime of the form q + k*step with k >= 1.
// An error is returned if the search overflows 64 bits.
func NextPrime(q, step uint64) (uint64, error) {

	if step == 0 {
		return 0, fmt.Errorf("cannot NextPrime: step is zero")
	}

	for {

		var carry uint64
		if q, carry = bits.Add64(q, step, 0); carry != 0 {
			return 0, fmt.Errorf("cannot NextPrime: overflow, no prime found")
		}

		if IsPrime(q) {
			return q, nil
		}
	}
}

// PreviousPrime returns the largest prime of the form q - k*step with k >= 1.
// An error is returned if the search goes below step.
func PreviousPrime(q, step uint64) (uint64, error) {

	if step == 0 {
		return 0, fmt.Errorf("cannot PreviousPrime: step is zero")
	}

	for q > step {

		q -= step

		if q > 1 && IsPrime(q) {
			return q, nil
		}
	}

	return 0, fmt.Errorf("cannot PreviousPrime: underflow, no prime found")
}
