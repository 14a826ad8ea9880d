package ring

import (
	"fmt"
	"math/big"

	"github.com/latticore/latticore/ring/gaussian"
	"github.com/latticore/latticore/utils/bignum"
)

// Poly is an element of Z_q[X]/(X^N+1), stored either by its coefficients
// (Coefficient format) or by its evaluations at the primitive 2N-th roots of
// unity in bit-reversed order (Evaluation format).
//
// A Poly is bound to the Context whose NTTCache serves its format switches.
// Binary operations require both operands to share the same parameters and
// format, else they panic.
type Poly struct {
	ctx    *Context
	params ElementParams
	format Format
	values *VecMod
}

func newPoly(ctx *Context, params ElementParams, format Format) *Poly {
	return &Poly{
		ctx:    ctx,
		params: params,
		format: format,
		values: NewVecMod(params.modulus, params.RingDimension()),
	}
}

// NewPoly allocates a zero Poly bound to the DefaultContext.
func NewPoly(params ElementParams, format Format) *Poly {
	return DefaultContext().NewPoly(params, format)
}

// NewPolyMax allocates a Poly whose entries are all equal to q-1.
func NewPolyMax(params ElementParams, format Format) (p *Poly) {
	p = NewPoly(params, format)
	p.values.SubScalar(p.values, 1)
	return
}

// NewPolyFromValues allocates a Poly whose entries are the given values reduced mod q.
// It panics if the number of values is not the ring dimension.
func NewPolyFromValues(params ElementParams, format Format, values []uint64) (p *Poly) {
	p = NewPoly(params, format)
	p.values.SetValues(values)
	return
}

// NewPolyFromSigned allocates a Poly whose entries are the given signed values mod q.
// It panics if the number of values is not the ring dimension.
func NewPolyFromSigned(params ElementParams, format Format, values []int64) (p *Poly) {
	p = NewPoly(params, format)
	p.SetSigned(values)
	return
}

// Context returns the Context of the polynomial.
func (p *Poly) Context() *Context {
	return p.ctx
}

// WithContext returns a shallow copy of the polynomial bound to ctx.
// The returned polynomial shares its entries with p.
func (p *Poly) WithContext(ctx *Context) *Poly {
	return &Poly{ctx: ctx, params: p.params, format: p.format, values: p.values}
}

// Params returns the parameters of the polynomial.
func (p *Poly) Params() ElementParams {
	return p.params
}

// Format returns the format of the polynomial.
func (p *Poly) Format() Format {
	return p.format
}

// Len returns the number of entries, which is the ring dimension.
func (p *Poly) Len() int {
	return p.values.Len()
}

// Modulus returns the modulus q.
func (p *Poly) Modulus() uint64 {
	return p.params.modulus
}

// CyclotomicOrder returns the cyclotomic order 2N.
func (p *Poly) CyclotomicOrder() int {
	return p.params.cyclotomicOrder
}

// RingDimension returns N.
func (p *Poly) RingDimension() int {
	return p.params.RingDimension()
}

// Values returns a copy of the entries, in [0, q).
func (p *Poly) Values() []uint64 {
	return p.values.Values()
}

// SetValues sets the entries to the given values reduced mod q.
func (p *Poly) SetValues(values []uint64) {
	p.values.SetValues(values)
}

// SetSigned sets the entries to the given signed values mod q.
func (p *Poly) SetSigned(values []int64) {
	if len(values) != p.Len() {
		panic(fmt.Errorf("cannot SetSigned: length mismatch: %d != %d", len(values), p.Len()))
	}
	for i, v := range values {
		p.SetSigned64(i, v)
	}
}

// SetSigned64 sets the i-th entry to x mod q.
func (p *Poly) SetSigned64(i int, x int64) {
	q := p.params.modulus
	if x < 0 {
		p.values.Set(i, q-uint64(-x)%q)
	} else {
		p.values.Set(i, uint64(x))
	}
}

// At returns the i-th entry, in [0, q).
func (p *Poly) At(i int) uint64 {
	return p.values.Get(i)
}

// Set sets the i-th entry to x mod q.
func (p *Poly) Set(i int, x uint64) {
	p.values.Set(i, x)
}

// Centered returns the i-th entry as a signed value in (-q/2, q/2].
func (p *Poly) Centered(i int) int64 {
	return p.values.Centered(i)
}

// Vector returns a copy of the entries of the polynomial as a VecMod.
func (p *Poly) Vector() *VecMod {
	return p.values.CopyNew()
}

// Equal returns true if both polynomials have the same parameters, format and entries.
func (p *Poly) Equal(other *Poly) bool {
	return p.params.Equal(other.params) && p.format == other.format && p.values.Equal(other.values)
}

// CopyNew returns a deep copy of the polynomial.
func (p *Poly) CopyNew() *Poly {
	return &Poly{ctx: p.ctx, params: p.params, format: p.format, values: p.values.CopyNew()}
}

// CloneEmpty returns a zero polynomial with the same parameters, format and context.
func (p *Poly) CloneEmpty() *Poly {
	return p.ctx.NewPoly(p.params, p.format)
}

// CloneParameters returns a zero polynomial with the same parameters, format and context.
func (p *Poly) CloneParameters() *Poly {
	return p.CloneEmpty()
}

// CloneWithNoise returns a polynomial with the same parameters and context,
// whose coefficients are drawn from sampler, in the given format.
func (p *Poly) CloneWithNoise(sampler gaussian.IntegerSampler, format Format) (noise *Poly, err error) {

	noise = p.ctx.NewPoly(p.params, Coefficient)

	for i := 0; i < noise.Len(); i++ {
		noise.SetSigned64(i, sampler.GenerateInteger())
	}

	if err = noise.SetFormat(format); err != nil {
		return nil, fmt.Errorf("cannot CloneWithNoise: %w", err)
	}

	return
}

// Zero sets all the entries to zero.
func (p *Poly) Zero() {
	p.values.Zero()
}

func (p *Poly) mustMatch(other *Poly) {
	if !p.params.Equal(other.params) {
		panic(fmt.Errorf("parameters mismatch: %s != %s", p.params, other.params))
	}
	if p.format != other.format {
		panic(fmt.Errorf("format mismatch: %s != %s", p.format, other.format))
	}
}

func (p *Poly) withValues(values *VecMod) *Poly {
	return &Poly{ctx: p.ctx, params: p.params, format: p.format, values: values}
}

// Add returns p + other.
func (p *Poly) Add(other *Poly) *Poly {
	p.mustMatch(other)
	return p.withValues(new(VecMod).Add(p.values, other.values))
}

// Sub returns p - other.
func (p *Poly) Sub(other *Poly) *Poly {
	p.mustMatch(other)
	return p.withValues(new(VecMod).Sub(p.values, other.values))
}

// Neg returns -p.
func (p *Poly) Neg() *Poly {
	return p.withValues(new(VecMod).Neg(p.values))
}

// Mul returns p * other in the ring.
// In Evaluation format the product is computed entrywise. In Coefficient
// format both operands are transformed, multiplied and transformed back.
func (p *Poly) Mul(other *Poly) (res *Poly, err error) {

	p.mustMatch(other)

	if p.format == Evaluation {
		return p.withValues(new(VecMod).Mul(p.values, other.values)), nil
	}

	var table *NTTTable
	if table, err = p.ctx.NTTTable(p.params); err != nil {
		return nil, fmt.Errorf("cannot Mul: %w", err)
	}

	a, b := p.values.CopyNew(), other.values.CopyNew()

	table.ForwardVec(a)
	table.ForwardVec(b)
	a.Mul(a, b)
	table.BackwardVec(a)

	return p.withValues(a), nil
}

// AddScalar returns p + c, where c is added to every entry.
func (p *Poly) AddScalar(c uint64) *Poly {
	return p.withValues(new(VecMod).AddScalar(p.values, c))
}

// SubScalar returns p - c, where c is subtracted from every entry.
func (p *Poly) SubScalar(c uint64) *Poly {
	return p.withValues(new(VecMod).SubScalar(p.values, c))
}

// MulScalar returns c * p.
func (p *Poly) MulScalar(c uint64) *Poly {
	return p.withValues(new(VecMod).MulScalar(p.values, c))
}

// AddOne adds one to every entry of p.
func (p *Poly) AddOne() {
	p.values.AddScalar(p.values, 1)
}

// Inverse returns the entrywise inverse of p, which is its inverse in the
// ring when p is in Evaluation format. It returns (nil, false) if any entry is zero.
func (p *Poly) Inverse() (*Poly, bool) {
	inv, ok := p.values.InverseNew()
	if !ok {
		return nil, false
	}
	return p.withValues(inv), true
}

// SetFormat switches p to the given format, if it is not already in it.
func (p *Poly) SetFormat(format Format) error {
	if p.format == format {
		return nil
	}
	return p.SwitchFormat()
}

// SwitchFormat switches p from Coefficient to Evaluation format, or the reverse.
func (p *Poly) SwitchFormat() (err error) {

	var table *NTTTable
	if table, err = p.ctx.NTTTable(p.params); err != nil {
		return fmt.Errorf("cannot SwitchFormat: %w", err)
	}

	if p.format == Coefficient {
		table.ForwardVec(p.values)
		p.format = Evaluation
	} else {
		table.BackwardVec(p.values)
		p.format = Coefficient
	}

	return
}

// SwitchModulus switches p to the new modulus, keeping the signed value of each
// coefficient in (-q/2, q/2], and replaces the parameters' moduli and roots.
// p must be in Coefficient format.
func (p *Poly) SwitchModulus(modulus, root, bigModulus, bigRoot uint64) {

	if p.format != Coefficient {
		panic(fmt.Errorf("cannot SwitchModulus: polynomial must be in %s format", Coefficient))
	}

	p.params = p.params.withModulus(modulus, root, bigModulus, bigRoot)
	p.values.SwitchModulus(modulus)
}

// Norm returns the infinity norm of the centered entries.
func (p *Poly) Norm() (norm uint64) {
	for i := 0; i < p.Len(); i++ {
		v := p.values.Centered(i)
		if v < 0 {
			v = -v
		}
		if uint64(v) > norm {
			norm = uint64(v)
		}
	}
	return
}

// MakeSparse sets to zero every entry whose index is not a multiple of w.
func (p *Poly) MakeSparse(w int) {
	if w < 1 {
		panic(fmt.Errorf("cannot MakeSparse: invalid stride %d", w))
	}
	for i := range p.values.coeffs {
		if i%w != 0 {
			p.values.coeffs[i] = 0
		}
	}
}

// Mod2 returns the polynomial of the parities of the centered entries of p.
func (p *Poly) Mod2() *Poly {
	res := p.CloneEmpty()
	for i := 0; i < p.Len(); i++ {
		res.Set(i, uint64(p.values.Centered(i)&1))
	}
	return res
}

// ModScalar returns the polynomial whose entries are the centered entries of p reduced mod m, in [0, m).
func (p *Poly) ModScalar(m uint64) *Poly {

	if m == 0 {
		panic(fmt.Errorf("cannot ModScalar: modulus is zero"))
	}

	res := p.CloneEmpty()
	q := p.params.modulus

	for i := 0; i < p.Len(); i++ {
		v := p.values.Get(i)
		if v > q>>1 {
			// v - q = -(q - v)
			r := (q - v) % m
			if r != 0 {
				r = m - r
			}
			res.Set(i, r)
		} else {
			res.Set(i, v%m)
		}
	}

	return res
}

// MultiplyAndRound returns the polynomial whose entries are round(v * num / den) mod q,
// where v is the centered value of the entries of p.
func (p *Poly) MultiplyAndRound(num, den uint64) *Poly {

	if den == 0 {
		panic(fmt.Errorf("cannot MultiplyAndRound: denominator is zero"))
	}

	return p.scaleAndRound(new(big.Int).SetUint64(num), new(big.Int).SetUint64(den))
}

// DivideAndRound returns the polynomial whose entries are round(v / den) mod q,
// where v is the centered value of the entries of p.
func (p *Poly) DivideAndRound(den uint64) *Poly {

	if den == 0 {
		panic(fmt.Errorf("cannot DivideAndRound: denominator is zero"))
	}

	return p.scaleAndRound(big.NewInt(1), new(big.Int).SetUint64(den))
}

func (p *Poly) scaleAndRound(num, den *big.Int) *Poly {

	res := p.CloneEmpty()
	q := new(big.Int).SetUint64(p.params.modulus)

	v := new(big.Int)
	for i := 0; i < p.Len(); i++ {
		v.SetInt64(p.values.Centered(i))
		v.Mul(v, num)
		bignum.DivRound(v, den, v)
		v.Mod(v, q)
		res.values.Set(i, v.Uint64())
	}

	return res
}
