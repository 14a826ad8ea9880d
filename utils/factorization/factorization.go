// Package factorization implements various algorithms for efficient factoring integers of small to medium size.
package factorization

import (
	"math/big"
	"sort"

	"github.com/latticore/latticore/utils"
	"github.com/latticore/latticore/utils/sampling"
)

const (
	// bound on the number of random restarts of the randomized algorithms.
	maxAttempts = 1 << 10

	// smoothness bound of the ECM stage 1.
	ecmBound = 2048

	// trial division bound.
	trialBound = 1 << 10
)

// IsPrime applies the Baillie-PSW test, which is 100% accurate for numbers below 2^64.
func IsPrime(m *big.Int) bool {
	return m.ProbablyPrime(0)
}

// GetFactors returns the distinct prime factors of n, sorted in increasing order.
func GetFactors(n *big.Int) (factors []*big.Int) {

	m := new(big.Int).Set(n)

	one := big.NewInt(1)

	set := map[string]*big.Int{}

	// Strips small factors by trial division.
	for _, p := range smallPrimes(trialBound) {

		bp := new(big.Int).SetUint64(p)

		if m.Cmp(bp) < 0 {
			break
		}

		for new(big.Int).Mod(m, bp).Sign() == 0 {
			set[bp.String()] = bp
			m.Quo(m, bp)
		}
	}

	var split func(m *big.Int)

	split = func(m *big.Int) {

		if m.Cmp(one) == 0 {
			return
		}

		if IsPrime(m) {
			set[m.String()] = new(big.Int).Set(m)
			return
		}

		d := GetFactorPollardRho(m)

		if d.Cmp(m) == 0 {
			d = GetFactorECM(m)
		}

		split(d)
		split(new(big.Int).Quo(m, d))
	}

	split(m)

	byValue := map[uint64]*big.Int{}
	var large []*big.Int

	for _, f := range set {
		if f.IsUint64() {
			byValue[f.Uint64()] = f
		} else {
			large = append(large, f)
		}
	}

	for _, k := range utils.GetSortedKeys(byValue) {
		factors = append(factors, byValue[k])
	}

	sort.Slice(large, func(i, j int) bool { return large[i].Cmp(large[j]) < 0 })

	return append(factors, large...)
}

// GetFactorPollardRho returns a factor of m using Pollard's rho algorithm
// with Floyd cycle detection. It returns m if no factor was found.
func GetFactorPollardRho(m *big.Int) (d *big.Int) {

	if m.Bit(0) == 0 {
		return big.NewInt(2)
	}

	one := big.NewInt(1)

	f := func(x, c *big.Int) *big.Int {
		x.Mul(x, x)
		x.Add(x, c)
		return x.Mod(x, m)
	}

	tmp := new(big.Int)

	for attempt := 0; attempt < maxAttempts; attempt++ {

		x := sampling.RandInt(m)
		y := new(big.Int).Set(x)
		c := sampling.RandInt(m)

		d = big.NewInt(1)

		for i := 0; i < 1<<20 && d.Cmp(one) == 0; i++ {
			f(x, c)
			f(f(y, c), c)
			d.GCD(nil, nil, tmp.Abs(tmp.Sub(x, y)), m)
		}

		if d.Cmp(one) != 0 && d.Cmp(m) != 0 {
			return
		}
	}

	return new(big.Int).Set(m)
}

// GetFactorECM returns a factor of m using Lenstra's elliptic curve method (stage 1 only).
// It returns m if no factor was found.
func GetFactorECM(m *big.Int) (d *big.Int) {

	if m.Bit(0) == 0 {
		return big.NewInt(2)
	}

	primes := smallPrimes(ecmBound)

	for attempt := 0; attempt < maxAttempts; attempt++ {

		w, P := NewRandomWeierstrassCurve(m)

		for _, p := range primes {

			pk := p
			for pk*p <= ecmBound {
				pk *= p
			}

			if P, d = w.ScalarMul(P, pk); d != nil {
				break
			}

			if P.IsInfinity() {
				break
			}
		}

		if d != nil && d.Cmp(m) != 0 {
			return
		}
	}

	return new(big.Int).Set(m)
}

// smallPrimes returns the primes smaller than or equal to bound.
func smallPrimes(bound uint64) (primes []uint64) {
	sieve := make([]bool, bound+1)
	for i := uint64(2); i <= bound; i++ {
		if !sieve[i] {
			primes = append(primes, i)
			for j := i * i; j <= bound; j += i {
				sieve[j] = true
			}
		}
	}
	return
}
