package sampling_test

import (
	"testing"

	"github.com/latticore/latticore/utils/sampling"
	"github.com/stretchr/testify/require"
)

func Test_PRNG(t *testing.T) {

	t.Run("PRNG", func(t *testing.T) {

		key := []byte{0x49, 0x0a, 0x42, 0x3d, 0x97, 0x9d, 0xc1, 0x07, 0xa1, 0xd7, 0xe9, 0x7b, 0x3b, 0xce, 0xa1, 0xdb,
			0x42, 0xf3, 0xa6, 0xd5, 0x75, 0xd2, 0x0c, 0x92, 0xb7, 0x35, 0xce, 0x0c, 0xee, 0x09, 0x7c, 0x98}

		Ha, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)
		Hb, err := sampling.NewKeyedPRNG(key)
		require.NoError(t, err)

		require.Equal(t, key, Ha.Key())

		sum0 := make([]byte, 512)
		sum1 := make([]byte, 512)

		for i := 0; i < 128; i++ {
			Hb.Read(sum1)
		}

		Hb.Reset()

		Ha.Read(sum0)
		Hb.Read(sum1)

		require.Equal(t, sum0, sum1)
	})

	t.Run("KeyTooLong", func(t *testing.T) {
		_, err := sampling.NewKeyedPRNG(make([]byte, 65))
		require.Error(t, err)
	})

	t.Run("FromSeed", func(t *testing.T) {
		Ha, err := sampling.NewKeyedPRNGFromSeed([]byte("ring"), make([]byte, 1024))
		require.NoError(t, err)
		Hb, err := sampling.NewKeyedPRNGFromSeed([]byte("ring"), make([]byte, 1024))
		require.NoError(t, err)
		Hc, err := sampling.NewKeyedPRNGFromSeed([]byte("rin"), append([]byte("g"), make([]byte, 1023)...))
		require.NoError(t, err)

		require.Len(t, Ha.Key(), 32)
		require.Equal(t, Ha.Key(), Hb.Key())
		require.NotEqual(t, Ha.Key(), Hc.Key())
	})
}

func TestRead(t *testing.T) {

	prng, err := sampling.NewKeyedPRNGFromSeed([]byte("read"))
	require.NoError(t, err)

	for i := 0; i < 1024; i++ {
		f := sampling.ReadFloat64(prng)
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)

		require.Less(t, sampling.ReadUint64N(prng, 17), uint64(17))
		require.Less(t, sampling.ReadUint64N(prng, 16), uint64(16))
	}

	// 2^64 mod 3 = 1, so a zero draw is always rejected
	require.Panics(t, func() { sampling.ReadUint64N(constantReader(0x00), 3) })
	require.Equal(t, uint64(0), sampling.ReadUint64N(constantReader(0x00), 16))
	require.Panics(t, func() { sampling.ReadUint64N(prng, 0) })
}

// constantReader fills every read with the same byte.
type constantReader byte

func (r constantReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}
