package gaussian

import (
	"fmt"
	"math"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/require"

	"github.com/latticore/latticore/utils/sampling"
)

func testString(opname string, mean, stdDev float64) string {
	return fmt.Sprintf("%s/mean=%g/sigma=%g", opname, mean, stdDev)
}

func newTestPRNG(t *testing.T) sampling.PRNG {
	prng, err := sampling.NewKeyedPRNG([]byte{'g', 'a', 'u', 's', 's'})
	require.NoError(t, err)
	return prng
}

// requireMoments draws n samples and checks their empirical mean and standard deviation.
func requireMoments(t *testing.T, gen func() int64, n int, mean, stdDev, deltaMean, deltaStdDev float64) {

	data := make(stats.Float64Data, n)
	for i := range data {
		data[i] = float64(gen())
	}

	m, err := stats.Mean(data)
	require.NoError(t, err)
	require.InDelta(t, mean, m, deltaMean)

	s, err := stats.StandardDeviationSample(data)
	require.NoError(t, err)
	require.InDelta(t, stdDev, s, deltaStdDev)
}

func TestBitGenerator(t *testing.T) {
	bg := NewBitGenerator(newTestPRNG(t))
	var ones int
	for i := 0; i < 1<<14; i++ {
		b := bg.Generate()
		require.LessOrEqual(t, b, uint8(1))
		ones += int(b)
	}
	require.InDelta(t, 1<<13, ones, 400)
}

func TestBaseSampler(t *testing.T) {

	prng := newTestPRNG(t)

	for _, samplerType := range []BaseSamplerType{KnuthYao, Peikert} {

		t.Run(testString(samplerType.String(), 0, 3.2), func(t *testing.T) {
			s, err := NewBaseSampler(prng, 0, 3.2, samplerType)
			require.NoError(t, err)
			require.Equal(t, samplerType, s.Type())
			requireMoments(t, s.GenerateInteger, 100000, 0, 3.2, 0.05, 0.05)
		})

		t.Run(testString(samplerType.String(), 10.3, 2), func(t *testing.T) {
			s, err := NewBaseSampler(prng, 10.3, 2, samplerType)
			require.NoError(t, err)
			fin := int64(tailCut(2))
			for i := 0; i < 1000; i++ {
				x := s.GenerateInteger()
				require.GreaterOrEqual(t, x, 10-fin)
				require.LessOrEqual(t, x, 10+fin)
			}
			requireMoments(t, s.GenerateInteger, 20000, 10.3, 2, 0.1, 0.1)
		})
	}

	t.Run("DDGTree", func(t *testing.T) {

		s, err := NewBaseSampler(prng, 0.25, 4, KnuthYao)
		require.NoError(t, err)

		matrix := s.genProbabilityMatrix(0.25)

		var total uint64
		for _, p := range matrix {
			total += p
		}

		// rows sum to 2^64
		require.Zero(t, total)

		require.LessOrEqual(t, len(s.ddgTree), ddgDepth)
		for _, v := range s.ddgTree[len(s.ddgTree)-1] {
			require.NotEqual(t, int32(ddgInternal), v)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := NewBaseSampler(prng, 0, math.Ldexp(1, 60), Peikert)
		require.ErrorIs(t, err, ErrStdDevTooLarge)
		_, err = NewBaseSampler(prng, 0, -1, Peikert)
		require.ErrorIs(t, err, ErrInvalidStdDev)
		_, err = NewBaseSampler(prng, 0, 3.2, BaseSamplerType(7))
		require.Error(t, err)
	})
}

func TestDiscreteGaussian(t *testing.T) {

	prng := newTestPRNG(t)

	t.Run(testString("Peikert", 0, 3.2), func(t *testing.T) {
		dg, err := NewDiscreteGaussian(prng, 3.2)
		require.NoError(t, err)
		require.Equal(t, 3.2, dg.StdDev())
		requireMoments(t, dg.GenerateInteger, 100000, 0, 3.2, 0.05, 0.05)
		require.Len(t, dg.GenerateIntegers(16), 16)
	})

	t.Run(testString("Karney", 0, 500), func(t *testing.T) {
		dg, err := NewDiscreteGaussian(prng, 500)
		require.NoError(t, err)
		requireMoments(t, dg.GenerateInteger, 20000, 0, 500, 20, 15)
	})

	t.Run(testString("Karney", 1000.5, 350), func(t *testing.T) {
		dg, err := NewDiscreteGaussian(prng, 350)
		require.NoError(t, err)
		requireMoments(t, func() int64 { return dg.GenerateIntegerKarney(1000.5, 350) }, 20000, 1000.5, 350, 15, 10)
	})

	t.Run(testString("WithParams", 5, 3), func(t *testing.T) {
		dg, err := NewDiscreteGaussian(prng, 3.2)
		require.NoError(t, err)
		requireMoments(t, func() int64 { return dg.GenerateIntegerWithParams(5, 3, 1024) }, 20000, 5, 3, 0.15, 0.1)
		require.Panics(t, func() { dg.GenerateIntegerWithParams(5, 3, 0) })
		requirePanicsErrorIs(t, ErrInvalidStdDev, func() { dg.GenerateIntegerWithParams(5, 0, 1024) })
		requirePanicsErrorIs(t, ErrInvalidStdDev, func() { dg.GenerateIntegerWithParams(5, math.NaN(), 1024) })
		require.Panics(t, func() { dg.GenerateIntegerWithParams(math.Inf(1), 3, 1024) })
	})

	t.Run("SetStdDev", func(t *testing.T) {
		dg, err := NewDiscreteGaussian(prng, 3.2)
		require.NoError(t, err)
		require.ErrorIs(t, dg.SetStdDev(math.Ldexp(1, 60)), ErrStdDevTooLarge)
		require.NoError(t, dg.SetStdDev(KarneyThreshold))
		require.False(t, dg.peikert)
		require.NoError(t, dg.SetStdDev(4))
		require.True(t, dg.peikert)

		_, err = NewDiscreteGaussian(prng, math.Ldexp(1, 60))
		require.ErrorIs(t, err, ErrStdDevTooLarge)
	})
}

// constantReader fills every read with the same byte.
type constantReader byte

func (r constantReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}

// requirePanicsErrorIs checks that f panics with an error wrapping target.
func requirePanicsErrorIs(t *testing.T, target error, f func()) {
	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		require.ErrorIs(t, err, target)
	}()
	f()
}

func TestRetryCeilings(t *testing.T) {

	for _, b := range []byte{0x00, 0xff} {

		t.Run(fmt.Sprintf("Karney/byte=%#x", b), func(t *testing.T) {
			dg, err := NewDiscreteGaussian(constantReader(b), 500)
			require.NoError(t, err)
			require.Panics(t, func() { dg.GenerateInteger() })
		})

		t.Run(fmt.Sprintf("Peikert/byte=%#x", b), func(t *testing.T) {
			dg, err := NewDiscreteGaussian(constantReader(b), 3.2)
			require.NoError(t, err)
			// |u| = 1/2 always falls beyond a one-entry table
			dg.values = dg.values[:1]
			require.Panics(t, func() { dg.GenerateInteger() })
		})

		t.Run(fmt.Sprintf("KnuthYao/byte=%#x", b), func(t *testing.T) {
			// every leaf is the error row
			s := &BaseSampler{
				samplerType: KnuthYao,
				bg:          NewBitGenerator(constantReader(b)),
				ddgTree:     [][]int32{{0, 0}},
				errorRow:    0,
			}
			require.Panics(t, func() { s.GenerateInteger() })
		})
	}
}

type sequenceSampler struct {
	values []int64
	next   int
}

func (s *sequenceSampler) GenerateInteger() (x int64) {
	x = s.values[s.next%len(s.values)]
	s.next++
	return
}

func (s *sequenceSampler) RandomBit() uint8 {
	return 1
}

func TestCombiner(t *testing.T) {
	s := &sequenceSampler{values: []int64{2, -3}}
	c := NewCombiner(s, s, 5, 4)
	x1, x2 := c.Coefficients()
	require.Equal(t, int64(5), x1)
	require.Equal(t, int64(4), x2)
	require.Equal(t, int64(5*2+4*-3), c.GenerateInteger())
	require.Equal(t, uint8(1), c.RandomBit())

	// x1*a + x2*b on distinct samplers
	c = NewCombiner(&sequenceSampler{values: []int64{7}}, &sequenceSampler{values: []int64{-1}}, 3, 2)
	require.Equal(t, int64(3*7+2*-1), c.GenerateInteger())

	// variance of the combination of two independent samplers
	prng := newTestPRNG(t)
	a, err := NewBaseSampler(prng, 0, 3, Peikert)
	require.NoError(t, err)
	b, err := NewBaseSampler(prng, 0, 4, Peikert)
	require.NoError(t, err)
	c = NewCombiner(a, b, 2, 1)
	// sqrt(4*9 + 16)
	requireMoments(t, c.GenerateInteger, 40000, 0, math.Sqrt(52), 0.15, 0.15)
}

func TestDiscreteGaussianGeneric(t *testing.T) {

	prng := newTestPRNG(t)

	logBase := 2
	baseStdDev := 4.0

	for _, samplerType := range []BaseSamplerType{Peikert, KnuthYao} {

		samplers, err := NewBaseSamplers(prng, baseStdDev, logBase, samplerType)
		require.NoError(t, err)
		require.Len(t, samplers, 1<<logBase)
		for i, s := range samplers {
			require.Equal(t, float64(i)/4, s.Mean())
		}

		dgg, err := NewDiscreteGaussianGeneric(samplers, baseStdDev, logBase, 1)
		require.NoError(t, err)
		require.Len(t, dgg.combiners, MaxDiscreteGaussianLevels-1)
		require.Equal(t, 15, dgg.k)
		require.Greater(t, dgg.WideVariance(), baseStdDev*baseStdDev)
		require.Greater(t, dgg.SamplerVariance(), baseStdDev*baseStdDev)

		for _, p := range []struct{ mean, stdDev float64 }{{7.25, 20}, {-100.6, 50}} {
			t.Run(testString("Generic/"+samplerType.String(), p.mean, p.stdDev), func(t *testing.T) {
				requireMoments(t, func() int64 { return dgg.GenerateIntegerWithParams(p.mean, p.stdDev) }, 20000, p.mean, p.stdDev, p.stdDev/20, p.stdDev/20)
			})
		}

		require.Panics(t, func() { dgg.GenerateIntegerWithParams(0, 1) })
	}

	// 4 does not divide the 30 bits of the center
	t.Run(testString("Generic/logBase=4", 0.9, 5), func(t *testing.T) {
		samplers, err := NewBaseSamplers(prng, baseStdDev, 4, Peikert)
		require.NoError(t, err)

		dgg, err := NewDiscreteGaussianGeneric(samplers, baseStdDev, 4, 1)
		require.NoError(t, err)
		require.Equal(t, 8, dgg.k)
		require.Equal(t, uint(2), dgg.shift)

		requireMoments(t, func() int64 { return dgg.GenerateIntegerWithParams(0.9, 5) }, 50000, 0.9, 5, 0.1, 0.15)
	})

	t.Run("Invalid", func(t *testing.T) {
		samplers, err := NewBaseSamplers(prng, baseStdDev, logBase, Peikert)
		require.NoError(t, err)

		_, err = NewDiscreteGaussianGeneric(samplers, math.Ldexp(1, 60), logBase, 1)
		require.ErrorIs(t, err, ErrStdDevTooLarge)

		_, err = NewDiscreteGaussianGeneric(samplers[:3], baseStdDev, logBase, 1)
		require.Error(t, err)

		_, err = NewBaseSamplers(prng, baseStdDev, 0, Peikert)
		require.Error(t, err)
	})
}
