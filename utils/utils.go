// Package utils implements various helper functions.
package utils

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Max returns the maximum value of the input values.
func Max[V constraints.Ordered](a, b V) (r V) {
	if a >= b {
		return a
	}
	return b
}

// GCD computes the greatest common divisor between a and b.
func GCD[V constraints.Integer](a, b V) V {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// IsPowerOfTwo returns true if x is a power of two.
func IsPowerOfTwo[V constraints.Unsigned | constraints.Signed](x V) bool {
	return x > 0 && x&(x-1) == 0
}

// BitReverse64 returns the bit-reverse value of the input value, within a context of 2^bitLen.
func BitReverse64[V uint64 | uint32 | int | int64](index V, bitLen int) uint64 {
	if bitLen == 0 {
		return 0
	}
	return bits.Reverse64(uint64(index)) >> (64 - bitLen)
}
