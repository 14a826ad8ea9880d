package ring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticore/latticore/utils"
	"github.com/latticore/latticore/utils/sampling"
)

func testString(opname string, params ElementParams) string {
	return fmt.Sprintf("%s/N=%d/q=%d", opname, params.RingDimension(), params.Modulus())
}

var testElementParams = []struct {
	cyclotomicOrder int
	bits            int
}{
	{8, 5},
	{1 << 5, 20},
	{1 << 11, 50},
	{1 << 12, MaxBitsInWord},
}

func genTestElementParams(t *testing.T) (params []ElementParams) {
	for _, p := range testElementParams {
		var pi ElementParams
		var err error
		if p.cyclotomicOrder == 8 {
			pi, err = NewElementParams(8, 17)
		} else {
			pi, err = NewElementParamsWithBits(p.cyclotomicOrder, p.bits)
		}
		require.NoError(t, err)
		params = append(params, pi)
	}
	return
}

func newTestPRNG(t *testing.T) sampling.PRNG {
	prng, err := sampling.NewKeyedPRNG([]byte{'l', 'a', 't', 't', 'i', 'c', 'e'})
	require.NoError(t, err)
	return prng
}

func TestNTT(t *testing.T) {

	prng := newTestPRNG(t)

	for _, params := range genTestElementParams(t) {

		table, err := NewNTTTable(params.Modulus(), params.RootOfUnity(), params.CyclotomicOrder())
		require.NoError(t, err)

		q, N := params.Modulus(), params.RingDimension()
		psi := params.RootOfUnity()

		t.Run(testString("NegacyclicRoundTrip", params), func(t *testing.T) {
			v := NewVecMod(q, N)
			v.Random(prng)
			w := v.CopyNew()
			table.ForwardVec(w)
			table.BackwardVec(w)
			require.True(t, v.Equal(w))
		})

		t.Run(testString("CyclicRoundTrip", params), func(t *testing.T) {
			v := NewVecMod(q, N)
			v.Random(prng)
			w := v.CopyNew()
			table.ForwardCyclicVec(w)
			table.BackwardCyclicVec(w)
			require.True(t, v.Equal(w))
		})

		if N > 64 {
			continue
		}

		t.Run(testString("NegacyclicEvaluation", params), func(t *testing.T) {

			v := NewVecMod(q, N)
			v.Random(prng)
			coeffs := v.Values()

			table.ForwardVec(v)

			logN := params.LogN()
			for i := 0; i < N; i++ {
				x := ModExp(psi, 2*utils.BitReverse64(i, logN)+1, q)
				require.Equal(t, evaluate(coeffs, x, q), v.Get(i))
			}
		})

		t.Run(testString("CyclicDFT", params), func(t *testing.T) {

			v := NewVecMod(q, N)
			v.Random(prng)
			coeffs := v.Values()

			table.ForwardCyclicVec(v)

			omega := ModExp(psi, 2, q)
			for k := 0; k < N; k++ {
				require.Equal(t, evaluate(coeffs, ModExp(omega, uint64(k), q), q), v.Get(k))
			}
		})
	}

	t.Run("InvalidTable", func(t *testing.T) {
		_, err := NewNTTTable(17, 3, 8)
		require.Error(t, err)
		_, err = NewNTTTable(17, 2, 12)
		require.Error(t, err)
		_, err = NewNTTTable(19, 2, 8)
		require.Error(t, err)
	})
}

// evaluate returns sum_j coeffs[j] * x^j mod q.
func evaluate(coeffs []uint64, x, q uint64) (y uint64) {
	bredconstant := GenBRedConstant(q)
	for j := len(coeffs) - 1; j >= 0; j-- {
		y = BRedAdd(BRed(y, x, q, bredconstant)+coeffs[j], q, bredconstant)
	}
	return
}

func TestNTTCache(t *testing.T) {

	params, err := NewElementParams(8, 17)
	require.NoError(t, err)

	t.Run("Get", func(t *testing.T) {
		cache := NewNTTCache()
		t1, err := cache.Get(params.Modulus(), params.RootOfUnity(), params.CyclotomicOrder())
		require.NoError(t, err)
		t2, err := cache.Get(params.Modulus(), params.RootOfUnity(), params.CyclotomicOrder())
		require.NoError(t, err)
		require.True(t, t1 == t2)
		require.Equal(t, 1, cache.Len())

		_, err = cache.Get(params.Modulus(), 3, params.CyclotomicOrder())
		require.Error(t, err)
		require.Equal(t, 1, cache.Len())
		require.False(t, cache.Poisoned())
	})

	t.Run("Poisoning", func(t *testing.T) {

		cache := NewNTTCache()
		cache.newTable = func(modulus, root uint64, cyclotomicOrder int) (*NTTTable, error) {
			panic("table generation failure")
		}

		require.Panics(t, func() {
			_, _ = cache.Get(params.Modulus(), params.RootOfUnity(), params.CyclotomicOrder())
		})

		require.True(t, cache.Poisoned())

		_, err := cache.Get(params.Modulus(), params.RootOfUnity(), params.CyclotomicOrder())
		require.ErrorIs(t, err, ErrCachePoisoned)

		ctx := &Context{ntt: cache}
		p := ctx.NewPoly(params, Coefficient)
		require.ErrorIs(t, p.SwitchFormat(), ErrCachePoisoned)

		cache.newTable = NewNTTTable
		cache.Reset()

		require.False(t, cache.Poisoned())
		require.NoError(t, p.SwitchFormat())
		require.Equal(t, Evaluation, p.Format())
	})

	t.Run("Concurrent", func(t *testing.T) {

		cache := NewNTTCache()

		big, err := NewElementParamsWithBits(1<<10, 40)
		require.NoError(t, err)

		tables := make(chan *NTTTable, 8)
		for i := 0; i < cap(tables); i++ {
			go func() {
				table, err := cache.Get(big.Modulus(), big.RootOfUnity(), big.CyclotomicOrder())
				if err != nil {
					tables <- nil
					return
				}
				tables <- table
			}()
		}

		first := <-tables
		require.NotNil(t, first)
		for i := 1; i < cap(tables); i++ {
			require.True(t, first == <-tables)
		}
	})
}
