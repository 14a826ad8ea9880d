package gaussian

import (
	"encoding/binary"
	"fmt"

	"github.com/latticore/latticore/utils/sampling"
)

// BitGenerator generates uniform random bits, reading 32 bits at a time from a PRNG.
type BitGenerator struct {
	prng     sampling.PRNG
	sequence uint32
	counter  int
}

// NewBitGenerator creates a new BitGenerator reading from prng.
func NewBitGenerator(prng sampling.PRNG) *BitGenerator {
	return &BitGenerator{prng: prng}
}

// Generate returns a uniform random bit.
func (bg *BitGenerator) Generate() uint8 {
	if bg.counter == 0 {
		var buf [4]byte
		if _, err := bg.prng.Read(buf[:]); err != nil {
			panic(fmt.Errorf("cannot Generate: %w", err))
		}
		bg.sequence = binary.BigEndian.Uint32(buf[:])
		bg.counter = 32
	}
	bg.counter--
	return uint8((bg.sequence >> bg.counter) & 1)
}
