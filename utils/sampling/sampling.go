// Package sampling implements secure sampling of bytes and integers.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
)

// RandInt generates a random Int in [0, max-1].
func RandInt(max *big.Int) (n *big.Int) {
	var err error
	if n, err = rand.Int(rand.Reader, max); err != nil {
		panic(err)
	}
	return
}

// ReadUint64 reads 8 bytes from r and returns them as a little-endian uint64.
// It panics if r fails.
func ReadUint64(r io.Reader) uint64 {
	b := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	if _, err := io.ReadFull(r, b); err != nil {
		panic(fmt.Errorf("cannot ReadUint64: %w", err))
	}
	return binary.LittleEndian.Uint64(b)
}

// ReadFloat64 returns a uniform float64 in [0, 1) with 53 bits of randomness read from r.
func ReadFloat64(r io.Reader) float64 {
	return float64(ReadUint64(r)>>11) * 0x1p-53
}

// MaxRejectionAttempts bounds every rejection loop of the package.
// Reaching it means that the underlying reader is defective.
const MaxRejectionAttempts = 1 << 16

// ReadUint64N returns a uniform value in [0, n) read from r by rejection sampling.
// n must be non-zero.
func ReadUint64N(r io.Reader, n uint64) uint64 {
	if n == 0 {
		panic("cannot ReadUint64N: n is zero")
	}

	// 2^64 mod n
	threshold := -n % n

	for i := 0; i < MaxRejectionAttempts; i++ {
		if x := ReadUint64(r); x >= threshold {
			return x % n
		}
	}

	panic(fmt.Errorf("cannot ReadUint64N: rejection sampling exceeded %d attempts", MaxRejectionAttempts))
}
