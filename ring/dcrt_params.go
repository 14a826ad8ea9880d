package ring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/go-cmp/cmp"
)

// ErrInvalidBuilderInput is wrapped by every error returned by DcrtElementParamsBuilder.Build
// on an invalid combination of inputs.
var ErrInvalidBuilderInput = errors.New("invalid dcrt element parameters builder input")

// DcrtElementParams is an ordered chain of ElementParams (limbs) sharing the same
// cyclotomic order, along with their composite modulus, the product of all the
// limb moduli.
type DcrtElementParams struct {
	cyclotomicOrder int
	limbs           []ElementParams
	modulus         *big.Int
}

// NewDcrtElementParams creates a new DcrtElementParams from the given limbs.
// All the limbs must share the same cyclotomic order.
func NewDcrtElementParams(limbs ...ElementParams) (p DcrtElementParams, err error) {

	if len(limbs) == 0 {
		return p, fmt.Errorf("cannot NewDcrtElementParams: no limb: %w", ErrInvalidParameters)
	}

	p.cyclotomicOrder = limbs[0].cyclotomicOrder
	p.limbs = make([]ElementParams, len(limbs))
	p.modulus = big.NewInt(1)

	for i, limb := range limbs {

		if limb.cyclotomicOrder != p.cyclotomicOrder {
			return DcrtElementParams{}, fmt.Errorf("cannot NewDcrtElementParams: limb %d has cyclotomic order %d != %d: %w", i, limb.cyclotomicOrder, p.cyclotomicOrder, ErrInvalidParameters)
		}

		p.limbs[i] = limb
		p.modulus.Mul(p.modulus, new(big.Int).SetUint64(limb.modulus))
	}

	return
}

// CyclotomicOrder returns the cyclotomic order shared by the limbs.
func (p DcrtElementParams) CyclotomicOrder() int {
	return p.cyclotomicOrder
}

// RingDimension returns the ring dimension shared by the limbs.
func (p DcrtElementParams) RingDimension() int {
	return p.cyclotomicOrder >> 1
}

// Len returns the number of limbs.
func (p DcrtElementParams) Len() int {
	return len(p.limbs)
}

// Limb returns the i-th limb.
func (p DcrtElementParams) Limb(i int) ElementParams {
	return p.limbs[i]
}

// Limbs returns a copy of the limbs.
func (p DcrtElementParams) Limbs() (limbs []ElementParams) {
	limbs = make([]ElementParams, len(p.limbs))
	copy(limbs, p.limbs)
	return
}

// Moduli returns the limb moduli.
func (p DcrtElementParams) Moduli() (moduli []uint64) {
	moduli = make([]uint64, len(p.limbs))
	for i := range p.limbs {
		moduli[i] = p.limbs[i].modulus
	}
	return
}

// CompositeModulus returns a copy of the product of the limb moduli.
func (p DcrtElementParams) CompositeModulus() *big.Int {
	if p.modulus == nil {
		return big.NewInt(1)
	}
	return new(big.Int).Set(p.modulus)
}

// PopFront removes the first limb and divides the composite modulus by its modulus.
// It panics if there is no limb left.
func (p *DcrtElementParams) PopFront() (limb ElementParams) {

	if len(p.limbs) == 0 {
		panic(fmt.Errorf("cannot PopFront: no limb left"))
	}

	limb = p.limbs[0]
	p.limbs = append([]ElementParams{}, p.limbs[1:]...)
	p.modulus = new(big.Int).Quo(p.modulus, new(big.Int).SetUint64(limb.modulus))

	return
}

// PopBack removes the last limb and divides the composite modulus by its modulus.
// It panics if there is no limb left.
func (p *DcrtElementParams) PopBack() (limb ElementParams) {

	if len(p.limbs) == 0 {
		panic(fmt.Errorf("cannot PopBack: no limb left"))
	}

	limb = p.limbs[len(p.limbs)-1]
	p.limbs = append([]ElementParams{}, p.limbs[:len(p.limbs)-1]...)
	p.modulus = new(big.Int).Quo(p.modulus, new(big.Int).SetUint64(limb.modulus))

	return
}

// CopyNew returns a deep copy of the object.
func (p DcrtElementParams) CopyNew() DcrtElementParams {
	return DcrtElementParams{
		cyclotomicOrder: p.cyclotomicOrder,
		limbs:           p.Limbs(),
		modulus:         p.CompositeModulus(),
	}
}

// Equal returns true if both objects have the same limbs in the same order.
func (p DcrtElementParams) Equal(other DcrtElementParams) bool {
	return p.cyclotomicOrder == other.cyclotomicOrder &&
		cmp.Equal(p.limbs, other.limbs, cmp.AllowUnexported(ElementParams{})) &&
		p.CompositeModulus().Cmp(other.CompositeModulus()) == 0
}

// DcrtElementParamsLiteral is a user-friendly struct to instantiate DcrtElementParams
// through the DcrtElementParamsBuilder. See DcrtElementParamsBuilder for the valid
// combinations of fields.
type DcrtElementParamsLiteral struct {
	CyclotomicOrder int
	Modulus         *big.Int `json:",omitempty"`
	Depth           int      `json:",omitempty"`
	Bits            int      `json:",omitempty"`
	Moduli          []uint64 `json:",omitempty"`
	RootsOfUnity    []uint64 `json:",omitempty"`
	BigModuli       []uint64 `json:",omitempty"`
	BigRootsOfUnity []uint64 `json:",omitempty"`
}

// Builder returns the DcrtElementParamsBuilder populated with the fields of the literal.
func (lit DcrtElementParamsLiteral) Builder() *DcrtElementParamsBuilder {
	b := NewDcrtElementParamsBuilder(lit.CyclotomicOrder)
	if lit.Modulus != nil {
		b.Modulus(lit.Modulus)
	}
	if lit.Depth != 0 {
		b.Depth(lit.Depth)
	}
	if lit.Bits != 0 {
		b.Bits(lit.Bits)
	}
	if lit.Moduli != nil {
		b.Moduli(lit.Moduli)
	}
	if lit.RootsOfUnity != nil {
		b.RootsOfUnity(lit.RootsOfUnity)
	}
	if lit.BigModuli != nil {
		b.BigModuli(lit.BigModuli)
	}
	if lit.BigRootsOfUnity != nil {
		b.BigRootsOfUnity(lit.BigRootsOfUnity)
	}
	return b
}

// ParametersLiteral returns the DcrtElementParamsLiteral listing explicitly
// every limb modulus and root of unity.
func (p DcrtElementParams) ParametersLiteral() DcrtElementParamsLiteral {

	lit := DcrtElementParamsLiteral{
		CyclotomicOrder: p.cyclotomicOrder,
		Moduli:          make([]uint64, len(p.limbs)),
		RootsOfUnity:    make([]uint64, len(p.limbs)),
		BigModuli:       make([]uint64, len(p.limbs)),
		BigRootsOfUnity: make([]uint64, len(p.limbs)),
	}

	for i, limb := range p.limbs {
		lit.Moduli[i] = limb.modulus
		lit.RootsOfUnity[i] = limb.rootOfUnity
		lit.BigModuli[i] = limb.bigModulus
		lit.BigRootsOfUnity[i] = limb.bigRootOfUnity
	}

	return lit
}

// MarshalJSON encodes the object into JSON.
func (p DcrtElementParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON decodes JSON bytes into the object.
func (p *DcrtElementParams) UnmarshalJSON(data []byte) (err error) {
	var lit DcrtElementParamsLiteral
	if err = json.Unmarshal(data, &lit); err != nil {
		return
	}
	*p, err = lit.Builder().Build()
	return
}

// DcrtElementParamsBuilder builds DcrtElementParams from exactly one of the
// following combinations of inputs:
//
//  1. Modulus: appends NTT-friendly primes of Bits bits (MaxBitsInWord by default),
//     in decreasing order, until the composite modulus is at least Modulus.
//  2. Depth, optionally with Bits: appends Depth such primes.
//  3. Moduli: one limb per modulus, roots of unity are computed.
//  4. Moduli and RootsOfUnity.
//  5. Moduli, RootsOfUnity, BigModuli and BigRootsOfUnity.
//
// Any other combination, as well as slices of different lengths, is an error.
type DcrtElementParamsBuilder struct {
	cyclotomicOrder int

	modulus *big.Int
	depth   int
	bits    int

	moduli          []uint64
	rootsOfUnity    []uint64
	bigModuli       []uint64
	bigRootsOfUnity []uint64

	hasDepth, hasBits bool
}

// NewDcrtElementParamsBuilder creates a new builder for the given cyclotomic order.
func NewDcrtElementParamsBuilder(cyclotomicOrder int) *DcrtElementParamsBuilder {
	return &DcrtElementParamsBuilder{cyclotomicOrder: cyclotomicOrder}
}

// Modulus sets the target composite modulus.
func (b *DcrtElementParamsBuilder) Modulus(modulus *big.Int) *DcrtElementParamsBuilder {
	b.modulus = new(big.Int).Set(modulus)
	return b
}

// Depth sets the target number of limbs.
func (b *DcrtElementParamsBuilder) Depth(depth int) *DcrtElementParamsBuilder {
	b.depth, b.hasDepth = depth, true
	return b
}

// Bits sets the bit-size of the generated limb moduli.
func (b *DcrtElementParamsBuilder) Bits(bits int) *DcrtElementParamsBuilder {
	b.bits, b.hasBits = bits, true
	return b
}

// Moduli sets the limb moduli.
func (b *DcrtElementParamsBuilder) Moduli(moduli []uint64) *DcrtElementParamsBuilder {
	b.moduli = append([]uint64{}, moduli...)
	return b
}

// RootsOfUnity sets the limb roots of unity.
func (b *DcrtElementParamsBuilder) RootsOfUnity(roots []uint64) *DcrtElementParamsBuilder {
	b.rootsOfUnity = append([]uint64{}, roots...)
	return b
}

// BigModuli sets the limb big moduli.
func (b *DcrtElementParamsBuilder) BigModuli(moduli []uint64) *DcrtElementParamsBuilder {
	b.bigModuli = append([]uint64{}, moduli...)
	return b
}

// BigRootsOfUnity sets the limb big roots of unity.
func (b *DcrtElementParamsBuilder) BigRootsOfUnity(roots []uint64) *DcrtElementParamsBuilder {
	b.bigRootsOfUnity = append([]uint64{}, roots...)
	return b
}

// Build returns the DcrtElementParams described by the builder inputs.
func (b *DcrtElementParamsBuilder) Build() (p DcrtElementParams, err error) {

	if err = checkCyclotomicOrder(b.cyclotomicOrder); err != nil {
		return p, fmt.Errorf("cannot Build: %w", err)
	}

	hasModulus := b.modulus != nil
	hasModuli := b.moduli != nil
	hasRoots := b.rootsOfUnity != nil
	hasBig := b.bigModuli != nil || b.bigRootsOfUnity != nil
	hasAllBig := b.bigModuli != nil && b.bigRootsOfUnity != nil

	switch {
	case hasModulus && !b.hasDepth && !b.hasBits && !hasModuli && !hasRoots && !hasBig:
		return b.buildFromModulus()
	case b.hasDepth && !hasModulus && !hasModuli && !hasRoots && !hasBig:
		return b.buildFromDepth()
	case hasModuli && !hasModulus && !b.hasDepth && !b.hasBits && !hasRoots && !hasBig:
		return b.buildFromModuli()
	case hasModuli && hasRoots && !hasModulus && !b.hasDepth && !b.hasBits && (!hasBig || hasAllBig):
		return b.buildFromModuliAndRoots()
	default:
		return p, fmt.Errorf("cannot Build: expected exactly one of (modulus), (depth[, bits]), (moduli), (moduli, roots) or (moduli, roots, big moduli, big roots): %w", ErrInvalidBuilderInput)
	}
}

func (b *DcrtElementParamsBuilder) buildFromModulus() (p DcrtElementParams, err error) {

	if b.modulus.Cmp(big.NewInt(1)) <= 0 {
		return p, fmt.Errorf("cannot Build: target modulus must be larger than one: %w", ErrInvalidBuilderInput)
	}

	return b.search(MaxBitsInWord, func(composite *big.Int, _ int) bool {
		return composite.Cmp(b.modulus) >= 0
	})
}

func (b *DcrtElementParamsBuilder) buildFromDepth() (p DcrtElementParams, err error) {

	if b.depth < 1 {
		return p, fmt.Errorf("cannot Build: depth must be at least one but is %d: %w", b.depth, ErrInvalidBuilderInput)
	}

	bits := MaxBitsInWord
	if b.hasBits {
		bits = b.bits
	}

	return b.search(bits, func(_ *big.Int, limbs int) bool {
		return limbs == b.depth
	})
}

// search appends limbs with decreasing NTT-friendly primes of the given bit-size until done returns true.
func (b *DcrtElementParamsBuilder) search(bits int, done func(composite *big.Int, limbs int) bool) (p DcrtElementParams, err error) {

	order := b.cyclotomicOrder

	var q uint64
	if q, err = firstNTTPrime(order, bits); err != nil {
		return p, fmt.Errorf("cannot Build: %w", err)
	}

	var limbs []ElementParams
	composite := big.NewInt(1)

	for !done(composite, len(limbs)) {

		var limb ElementParams
		if limb, err = NewElementParams(order, q); err != nil {
			return p, fmt.Errorf("cannot Build: %w", err)
		}

		limbs = append(limbs, limb)
		composite.Mul(composite, new(big.Int).SetUint64(q))

		if done(composite, len(limbs)) {
			break
		}

		if q, err = PreviousPrime(q, uint64(order)); err != nil {
			return p, fmt.Errorf("cannot Build: not enough %d-bit primes: %w", bits, err)
		}
	}

	return NewDcrtElementParams(limbs...)
}

func (b *DcrtElementParamsBuilder) buildFromModuli() (p DcrtElementParams, err error) {

	limbs := make([]ElementParams, len(b.moduli))

	for i, q := range b.moduli {
		if limbs[i], err = NewElementParams(b.cyclotomicOrder, q); err != nil {
			return p, fmt.Errorf("cannot Build: limb %d: %w", i, err)
		}
	}

	return NewDcrtElementParams(limbs...)
}

func (b *DcrtElementParamsBuilder) buildFromModuliAndRoots() (p DcrtElementParams, err error) {

	n := len(b.moduli)

	if len(b.rootsOfUnity) != n {
		return p, fmt.Errorf("cannot Build: %d moduli but %d roots of unity: %w", n, len(b.rootsOfUnity), ErrInvalidBuilderInput)
	}

	bigModuli, bigRoots := b.bigModuli, b.bigRootsOfUnity

	if bigModuli == nil {
		bigModuli, bigRoots = make([]uint64, n), make([]uint64, n)
	}

	if len(bigModuli) != n || len(bigRoots) != n {
		return p, fmt.Errorf("cannot Build: %d moduli but %d big moduli and %d big roots of unity: %w", n, len(bigModuli), len(bigRoots), ErrInvalidBuilderInput)
	}

	limbs := make([]ElementParams, n)

	for i := range limbs {
		if limbs[i], err = NewElementParamsWithBig(b.cyclotomicOrder, b.moduli[i], b.rootsOfUnity[i], bigModuli[i], bigRoots[i]); err != nil {
			return p, fmt.Errorf("cannot Build: limb %d: %w", i, err)
		}
	}

	return NewDcrtElementParams(limbs...)
}
