package gaussian

// Combiner combines draws of two samplers into x1*a + x2*b. When a and b
// sample independent centered distributions of variances va and vb, the
// result has variance x1^2*va + x2^2*vb.
type Combiner struct {
	a, b   IntegerSampler
	x1, x2 int64
}

// NewCombiner creates a new Combiner of the given samplers and coefficients.
// a and b can be the same sampler.
func NewCombiner(a, b IntegerSampler, x1, x2 int64) *Combiner {
	return &Combiner{a: a, b: b, x1: x1, x2: x2}
}

// Coefficients returns the coefficients x1 and x2 of the combiner.
func (c *Combiner) Coefficients() (x1, x2 int64) {
	return c.x1, c.x2
}

// GenerateInteger returns a new sample.
func (c *Combiner) GenerateInteger() int64 {
	return c.x1*c.a.GenerateInteger() + c.x2*c.b.GenerateInteger()
}

// RandomBit returns a uniform random bit of the first sampler.
func (c *Combiner) RandomBit() uint8 {
	return c.a.RandomBit()
}
