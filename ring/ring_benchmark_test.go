package ring

import (
	"fmt"
	"testing"

	"github.com/latticore/latticore/ring/gaussian"
	"github.com/latticore/latticore/utils/sampling"
)

func BenchmarkNTT(b *testing.B) {
	for _, logN := range []int{10, 11, 12, 13, 14} {
		benchNTT(logN, b)
		benchINTT(logN, b)
	}
}

func benchPoly(logN int, format Format, b *testing.B) *Poly {

	params, err := NewElementParamsWithBits(2<<logN, MaxBitsInWord)
	if err != nil {
		b.Fatal(err)
	}

	prng, err := sampling.NewPRNG()
	if err != nil {
		b.Fatal(err)
	}

	p, err := NewUniformSampler(prng).ReadNew(params, format)
	if err != nil {
		b.Fatal(err)
	}

	return p
}

func benchNTT(logN int, b *testing.B) {
	b.Run(fmt.Sprintf("Forward/N=%d", 1<<logN), func(b *testing.B) {
		p := benchPoly(logN, Coefficient, b)
		table, err := p.Context().NTTTable(p.Params())
		if err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			table.ForwardVec(p.values)
		}
	})
}

func benchINTT(logN int, b *testing.B) {
	b.Run(fmt.Sprintf("Backward/N=%d", 1<<logN), func(b *testing.B) {
		p := benchPoly(logN, Evaluation, b)
		table, err := p.Context().NTTTable(p.Params())
		if err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			table.BackwardVec(p.values)
		}
	})
}

func BenchmarkPoly(b *testing.B) {

	logN := 12

	b.Run(fmt.Sprintf("Mul/Coefficient/N=%d", 1<<logN), func(b *testing.B) {
		p0, p1 := benchPoly(logN, Coefficient, b), benchPoly(logN, Coefficient, b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := p0.Mul(p1); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run(fmt.Sprintf("Mul/Evaluation/N=%d", 1<<logN), func(b *testing.B) {
		p0, p1 := benchPoly(logN, Evaluation, b), benchPoly(logN, Evaluation, b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := p0.Mul(p1); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run(fmt.Sprintf("Automorphism/N=%d", 1<<logN), func(b *testing.B) {
		p := benchPoly(logN, Evaluation, b)
		index := AutomorphismIndex(p.Params(), 5)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			p.AutomorphismTransformPrecompute(5, index)
		}
	})
}

func BenchmarkSampler(b *testing.B) {

	prng, err := sampling.NewKeyedPRNG(nil)
	if err != nil {
		b.Fatal(err)
	}

	for _, samplerType := range []gaussian.BaseSamplerType{gaussian.KnuthYao, gaussian.Peikert} {
		b.Run(fmt.Sprintf("BaseSampler/%s", samplerType), func(b *testing.B) {
			s, err := gaussian.NewBaseSampler(prng, 0, 3.2, samplerType)
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s.GenerateInteger()
			}
		})
	}

	b.Run("Gaussian/Poly/N=4096", func(b *testing.B) {
		dg, err := gaussian.NewDiscreteGaussian(prng, 3.2)
		if err != nil {
			b.Fatal(err)
		}
		p := benchPoly(12, Coefficient, b)
		s := NewGaussianSampler(dg)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := s.Read(p); err != nil {
				b.Fatal(err)
			}
		}
	})
}
