package ring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticore/latticore/ring/gaussian"
	"github.com/latticore/latticore/utils/buffer"
)

// negacyclic returns a * b in Z_q[X]/(X^N+1) by schoolbook multiplication.
func negacyclic(a, b []uint64, q uint64) (c []uint64) {
	N := len(a)
	bredconstant := GenBRedConstant(q)
	c = make([]uint64, N)
	for i := 0; i < N; i++ {
		for j := 0; j < N; j++ {
			prod := BRed(a[i], b[j], q, bredconstant)
			if k := i + j; k < N {
				c[k] = CRed(c[k]+prod, q)
			} else {
				c[k-N] = CRed(c[k-N]+q-prod, q)
			}
		}
	}
	return
}

func TestPoly(t *testing.T) {

	prng := newTestPRNG(t)
	uniform := NewUniformSampler(prng)

	for _, params := range genTestElementParams(t) {

		newUniform := func(format Format) *Poly {
			p, err := uniform.ReadNew(params, format)
			require.NoError(t, err)
			return p
		}

		q := params.Modulus()

		t.Run(testString("Arithmetic", params), func(t *testing.T) {

			a, b := newUniform(Coefficient), newUniform(Coefficient)

			require.True(t, a.Add(b).Sub(b).Equal(a))
			require.True(t, a.Add(a.Neg()).Equal(NewPoly(params, Coefficient)))
			require.True(t, a.AddScalar(5).SubScalar(5).Equal(a))
			require.True(t, a.MulScalar(2).Equal(a.Add(a)))

			c := a.CopyNew()
			c.AddOne()
			require.True(t, c.Equal(a.AddScalar(1)))

			pMax := NewPolyMax(params, Coefficient)
			pMax.AddOne()
			require.True(t, pMax.Equal(NewPoly(params, Coefficient)))

			require.Panics(t, func() { a.Add(newUniform(Evaluation)) })
		})

		t.Run(testString("Mul", params), func(t *testing.T) {

			if params.RingDimension() > 256 {
				t.Skip("schoolbook reference too slow")
			}

			a, b := newUniform(Coefficient), newUniform(Coefficient)

			c, err := a.Mul(b)
			require.NoError(t, err)
			require.Equal(t, negacyclic(a.Values(), b.Values(), q), c.Values())

			aEval, bEval := a.CopyNew(), b.CopyNew()
			require.NoError(t, aEval.SetFormat(Evaluation))
			require.NoError(t, bEval.SetFormat(Evaluation))
			cEval, err := aEval.Mul(bEval)
			require.NoError(t, err)
			require.NoError(t, cEval.SetFormat(Coefficient))
			require.True(t, c.Equal(cEval))
		})

		t.Run(testString("Format", params), func(t *testing.T) {
			a := newUniform(Coefficient)
			b := a.CopyNew()
			require.NoError(t, b.SetFormat(Evaluation))
			require.Equal(t, Evaluation, b.Format())
			require.NoError(t, b.SetFormat(Evaluation))
			require.NoError(t, b.SwitchFormat())
			require.True(t, a.Equal(b))
		})

		t.Run(testString("Inverse", params), func(t *testing.T) {

			a := newUniform(Evaluation)
			for i := 0; i < a.Len(); i++ {
				if a.At(i) == 0 {
					a.Set(i, 1)
				}
			}

			inv, ok := a.Inverse()
			require.True(t, ok)
			one, err := a.Mul(inv)
			require.NoError(t, err)
			require.True(t, one.Equal(NewPoly(params, Evaluation).AddScalar(1)))

			a.Set(0, 0)
			inv, ok = a.Inverse()
			require.False(t, ok)
			require.Nil(t, inv)
		})

		t.Run(testString("Automorphism", params), func(t *testing.T) {

			order := uint64(params.CyclotomicOrder())
			k1, k2 := uint64(3)%order, uint64(5)%order
			if order == 8 {
				k1, k2 = 3, 7
			}

			a := newUniform(Coefficient)

			composed := a.AutomorphismTransform(k2).AutomorphismTransform(k1)
			require.True(t, composed.Equal(a.AutomorphismTransform(k1*k2%order)))

			aEval := a.CopyNew()
			require.NoError(t, aEval.SetFormat(Evaluation))

			composedEval := aEval.AutomorphismTransform(k2).AutomorphismTransform(k1)
			require.True(t, composedEval.Equal(aEval.AutomorphismTransform(k1*k2%order)))

			// both domains agree
			require.NoError(t, composedEval.SetFormat(Coefficient))
			require.True(t, composedEval.Equal(composed))

			index := AutomorphismIndex(params, k1)
			require.True(t, aEval.AutomorphismTransformPrecompute(k1, index).Equal(aEval.AutomorphismTransform(k1)))
			require.Panics(t, func() { a.AutomorphismTransformPrecompute(k1, index) })
			require.Panics(t, func() { a.AutomorphismTransform(2) })

			// X -> X^-1 is an involution
			require.True(t, a.Transpose().Transpose().Equal(a))

			// X^1 -> X^-1 = -X^(N-1)
			x := NewPoly(params, Coefficient)
			x.Set(1, 1)
			xT := x.Transpose()
			want := NewPoly(params, Coefficient)
			if params.RingDimension() > 1 {
				want.Set(params.RingDimension()-1, q-1)
			}
			require.True(t, xT.Equal(want))
		})

		t.Run(testString("BaseDecompose", params), func(t *testing.T) {

			a := newUniform(Coefficient)

			for _, baseBits := range []int{1, 7, 20} {

				digits, err := a.BaseDecompose(baseBits, false)
				require.NoError(t, err)

				powers := a.PowersOfBase(baseBits)
				require.Equal(t, len(digits), len(powers))

				// sum_i digits[i] * 2^(i*baseBits) = a
				acc := NewPoly(params, Coefficient)
				pow := uint64(1)
				for i := range digits {
					for j := 0; j < digits[i].Len(); j++ {
						require.Less(t, digits[i].At(j), uint64(1)<<baseBits)
					}
					acc = acc.Add(digits[i].MulScalar(pow))
					require.True(t, powers[i].Equal(a.MulScalar(pow)))
					pow = BRed(pow, uint64(1)<<baseBits%q, q, GenBRedConstant(q))
				}
				require.True(t, acc.Equal(a))

				digitsEval, err := a.BaseDecompose(baseBits, true)
				require.NoError(t, err)
				for i := range digitsEval {
					require.Equal(t, Evaluation, digitsEval[i].Format())
					require.NoError(t, digitsEval[i].SetFormat(Coefficient))
					require.True(t, digitsEval[i].Equal(digits[i]))
				}
			}

			require.Panics(t, func() { _, _ = a.BaseDecompose(0, false) })
		})

		t.Run(testString("Coefficients", params), func(t *testing.T) {

			N := params.RingDimension()
			values := make([]int64, N)
			for i := range values {
				values[i] = int64(i) - int64(N/2)
			}

			a := NewPolyFromSigned(params, Coefficient, values)
			require.Equal(t, uint64(N/2), a.Norm())

			mod2 := a.Mod2()
			for i := range values {
				require.Equal(t, uint64(values[i]&1), mod2.At(i))
			}

			mod3 := a.ModScalar(3)
			for i := range values {
				require.Equal(t, uint64(((values[i]%3)+3)%3), mod3.At(i))
			}

			sparse := a.CopyNew()
			sparse.MakeSparse(2)
			for i := range values {
				if i%2 == 1 {
					require.Zero(t, sparse.At(i))
				} else {
					require.Equal(t, a.At(i), sparse.At(i))
				}
			}

			doubled := a.MultiplyAndRound(2, 1)
			require.True(t, doubled.Equal(a.Add(a)))

			// round(v / 2), halves away from zero
			halved := a.DivideAndRound(2)
			for i, v := range values {
				want := v / 2
				if v%2 != 0 {
					if v > 0 {
						want++
					} else {
						want--
					}
				}
				require.Equal(t, want, halved.Centered(i))
			}

			if q > 1<<20 {
				require.True(t, a.MultiplyAndRound(3, 3).Equal(a))
			}
		})

		t.Run(testString("SwitchModulus", params), func(t *testing.T) {

			if params.RingDimension() < 16 {
				t.Skip("no second modulus")
			}

			params2, err := NewElementParamsWithBits(params.CyclotomicOrder(), 19)
			require.NoError(t, err)

			N := params.RingDimension()
			values := make([]int64, N)
			for i := range values {
				values[i] = int64(i*37%101) - 50
			}

			a := NewPolyFromSigned(params, Coefficient, values)
			b := a.CopyNew()

			b.SwitchModulus(params2.Modulus(), params2.RootOfUnity(), 0, 0)
			require.True(t, b.Params().Equal(params2))
			for i, v := range values {
				require.Equal(t, v, b.Centered(i))
			}

			c, err := b.Mul(b)
			require.NoError(t, err)
			require.Equal(t, params2.Modulus(), c.Modulus())

			b.SwitchModulus(params.Modulus(), params.RootOfUnity(), 0, 0)
			require.True(t, a.Equal(b))

			require.NoError(t, b.SetFormat(Evaluation))
			require.Panics(t, func() { b.SwitchModulus(params2.Modulus(), params2.RootOfUnity(), 0, 0) })

			// without a root of unity
			d := a.CopyNew()
			d.SwitchModulus(params2.Modulus(), 0, 0, 0)
			require.Zero(t, d.Params().RootOfUnity())
			buffer.RequireSerializerCorrect(t, d)
			require.Error(t, d.SwitchFormat())

			require.Panics(t, func() { a.CopyNew().SwitchModulus(params2.Modulus(), 1, 0, 0) })
		})

		t.Run(testString("Serialization", params), func(t *testing.T) {
			buffer.RequireSerializerCorrect(t, newUniform(Evaluation))
		})

		t.Run(testString("Context", params), func(t *testing.T) {
			ctx := NewContext()
			a := ctx.NewPoly(params, Coefficient)
			require.True(t, a.Context() == ctx)
			require.True(t, a.CloneEmpty().Context() == ctx)
			require.NoError(t, a.SwitchFormat())
			require.Equal(t, 1, ctx.NTTCache().Len())
			require.True(t, a.WithContext(DefaultContext()).Context() == DefaultContext())
		})
	}
}

func TestSamplers(t *testing.T) {

	prng := newTestPRNG(t)

	params, err := NewElementParamsWithBits(1<<11, 50)
	require.NoError(t, err)
	q := params.Modulus()

	t.Run(testString("Uniform", params), func(t *testing.T) {
		du := NewDiscreteUniform(prng)
		for i := 0; i < 64; i++ {
			require.Less(t, du.GenerateInteger(17), uint64(17))
		}
		v := du.GenerateVecMod(q, 128)
		require.Equal(t, 128, v.Len())
		require.Equal(t, q, v.Modulus())
	})

	t.Run(testString("Binary", params), func(t *testing.T) {
		p, err := NewBinarySampler(prng).ReadNew(params, Evaluation)
		require.NoError(t, err)
		require.Equal(t, Evaluation, p.Format())
		require.NoError(t, p.SetFormat(Coefficient))
		require.LessOrEqual(t, p.Norm(), uint64(1))
		for i := 0; i < p.Len(); i++ {
			require.Less(t, p.At(i), uint64(2))
		}
	})

	t.Run(testString("Gaussian", params), func(t *testing.T) {

		dg, err := gaussian.NewDiscreteGaussian(prng, 3.2)
		require.NoError(t, err)

		p, err := NewGaussianSampler(dg).ReadNew(params, Coefficient)
		require.NoError(t, err)
		require.Less(t, p.Norm(), uint64(42))

		noise, err := p.CloneWithNoise(dg, Evaluation)
		require.NoError(t, err)
		require.Equal(t, Evaluation, noise.Format())
		require.NoError(t, noise.SetFormat(Coefficient))
		require.Less(t, noise.Norm(), uint64(42))
	})
}
