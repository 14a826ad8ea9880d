package ring

import (
	"fmt"

	"github.com/latticore/latticore/ring/gaussian"
	"github.com/latticore/latticore/utils/sampling"
)

// Sampler is an interface for random polynomial samplers.
type Sampler interface {
	// Read overwrites the entries of p with a fresh sample, keeping its format.
	Read(p *Poly) error
	// ReadNew returns a fresh sample bound to the DefaultContext.
	ReadNew(params ElementParams, format Format) (*Poly, error)
}

// readCoefficients samples the coefficients of p with gen and switches p back to its format.
func readCoefficients(p *Poly, gen func() int64) (err error) {

	format := p.format
	p.format = Coefficient

	for i := 0; i < p.Len(); i++ {
		p.SetSigned64(i, gen())
	}

	return p.SetFormat(format)
}

// DiscreteUniform samples integers uniformly modulo a given modulus.
type DiscreteUniform struct {
	prng sampling.PRNG
}

// NewDiscreteUniform creates a new DiscreteUniform reading its randomness from prng.
func NewDiscreteUniform(prng sampling.PRNG) *DiscreteUniform {
	return &DiscreteUniform{prng: prng}
}

// GenerateInteger returns a uniform value in [0, q).
func (d *DiscreteUniform) GenerateInteger(q uint64) uint64 {
	return sampling.ReadUint64N(d.prng, q)
}

// GenerateVecMod returns a VecMod of n uniform residues modulo q.
func (d *DiscreteUniform) GenerateVecMod(q uint64, n int) (v *VecMod) {
	v = NewVecMod(q, n)
	v.Random(d.prng)
	return
}

// UniformSampler samples polynomials with uniform entries.
// Uniform entries are uniform in both formats, so no transform is done.
type UniformSampler struct {
	*DiscreteUniform
}

// NewUniformSampler creates a new UniformSampler reading its randomness from prng.
func NewUniformSampler(prng sampling.PRNG) *UniformSampler {
	return &UniformSampler{DiscreteUniform: NewDiscreteUniform(prng)}
}

// Read overwrites the entries of p with uniform values.
func (s *UniformSampler) Read(p *Poly) error {
	p.values.Random(s.prng)
	return nil
}

// ReadNew returns a new polynomial with uniform entries.
func (s *UniformSampler) ReadNew(params ElementParams, format Format) (p *Poly, err error) {
	p = NewPoly(params, format)
	return p, s.Read(p)
}

// BinarySampler samples polynomials with coefficients uniform in {0, 1}.
type BinarySampler struct {
	bg *gaussian.BitGenerator
}

// NewBinarySampler creates a new BinarySampler reading its randomness from prng.
func NewBinarySampler(prng sampling.PRNG) *BinarySampler {
	return &BinarySampler{bg: gaussian.NewBitGenerator(prng)}
}

// Read overwrites the coefficients of p with uniform bits.
func (s *BinarySampler) Read(p *Poly) (err error) {
	if err = readCoefficients(p, func() int64 { return int64(s.bg.Generate()) }); err != nil {
		return fmt.Errorf("cannot Read: %w", err)
	}
	return
}

// ReadNew returns a new polynomial with coefficients uniform in {0, 1}.
func (s *BinarySampler) ReadNew(params ElementParams, format Format) (p *Poly, err error) {
	p = NewPoly(params, format)
	return p, s.Read(p)
}

// GaussianSampler samples polynomials whose coefficients are drawn from an integer sampler,
// typically a gaussian.DiscreteGaussian.
type GaussianSampler struct {
	sampler gaussian.IntegerSampler
}

// NewGaussianSampler creates a new GaussianSampler drawing from sampler.
func NewGaussianSampler(sampler gaussian.IntegerSampler) *GaussianSampler {
	return &GaussianSampler{sampler: sampler}
}

// Read overwrites the coefficients of p with samples.
func (s *GaussianSampler) Read(p *Poly) (err error) {
	if err = readCoefficients(p, s.sampler.GenerateInteger); err != nil {
		return fmt.Errorf("cannot Read: %w", err)
	}
	return
}

// ReadNew returns a new polynomial with sampled coefficients.
func (s *GaussianSampler) ReadNew(params ElementParams, format Format) (p *Poly, err error) {
	p = NewPoly(params, format)
	return p, s.Read(p)
}
