package ring

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/latticore/latticore/utils"
	"github.com/latticore/latticore/utils/buffer"
)

// ErrInvalidParameters is wrapped by every error returned on invalid ElementParams inputs.
var ErrInvalidParameters = errors.New("invalid element parameters")

// ElementParams stores the parameters of a ring Z_q[X]/(X^N+1),
// with N = CyclotomicOrder/2 = Totient(CyclotomicOrder).
// RootOfUnity is a primitive CyclotomicOrder-th root of unity mod Modulus.
// BigModulus and BigRootOfUnity are optional (zero when unset) and are
// carried along for extended-precision variants.
type ElementParams struct {
	ringDimension   int
	cyclotomicOrder int
	modulus         uint64
	rootOfUnity     uint64
	bigModulus      uint64
	bigRootOfUnity  uint64
}

// ElementParamsLiteral is a user-friendly struct to instantiate ElementParams.
//
// Exactly one of CyclotomicOrder or LogN must be set, LogN standing for
// CyclotomicOrder = 2^(LogN+1).
// Exactly one of Modulus or Bits must be set: with Bits, the largest
// NTT-friendly prime smaller than 2^Bits is used.
// RootOfUnity is optional and computed if not set.
type ElementParamsLiteral struct {
	LogN            int    `json:",omitempty"`
	CyclotomicOrder int    `json:",omitempty"`
	Modulus         uint64 `json:",omitempty"`
	Bits            int    `json:",omitempty"`
	RootOfUnity     uint64 `json:",omitempty"`
	BigModulus      uint64 `json:",omitempty"`
	BigRootOfUnity  uint64 `json:",omitempty"`
}

// NewElementParamsFromLiteral instantiates ElementParams from an ElementParamsLiteral.
func NewElementParamsFromLiteral(lit ElementParamsLiteral) (ElementParams, error) {

	order := lit.CyclotomicOrder

	switch {
	case lit.LogN != 0 && order != 0:
		return ElementParams{}, fmt.Errorf("cannot NewElementParamsFromLiteral: LogN and CyclotomicOrder are both set: %w", ErrInvalidParameters)
	case lit.LogN != 0:
		if lit.LogN < 0 || lit.LogN > 30 {
			return ElementParams{}, fmt.Errorf("cannot NewElementParamsFromLiteral: invalid LogN %d: %w", lit.LogN, ErrInvalidParameters)
		}
		order = 2 << lit.LogN
	}

	switch {
	case lit.Modulus != 0 && lit.Bits != 0:
		return ElementParams{}, fmt.Errorf("cannot NewElementParamsFromLiteral: Modulus and Bits are both set: %w", ErrInvalidParameters)
	case lit.Bits != 0:
		if lit.RootOfUnity != 0 || lit.BigModulus != 0 || lit.BigRootOfUnity != 0 {
			return ElementParams{}, fmt.Errorf("cannot NewElementParamsFromLiteral: roots and big modulus cannot be set with Bits: %w", ErrInvalidParameters)
		}
		return NewElementParamsWithBits(order, lit.Bits)
	case lit.RootOfUnity != 0:
		return NewElementParamsWithBig(order, lit.Modulus, lit.RootOfUnity, lit.BigModulus, lit.BigRootOfUnity)
	default:
		if lit.BigModulus != 0 || lit.BigRootOfUnity != 0 {
			return ElementParams{}, fmt.Errorf("cannot NewElementParamsFromLiteral: big modulus cannot be set without RootOfUnity: %w", ErrInvalidParameters)
		}
		return NewElementParams(order, lit.Modulus)
	}
}

// NewElementParamsWithBits returns the ElementParams of the given cyclotomic order
// with the largest prime modulus q < 2^bits such that q = 1 mod cyclotomicOrder.
func NewElementParamsWithBits(cyclotomicOrder, bits int) (ElementParams, error) {

	if err := checkCyclotomicOrder(cyclotomicOrder); err != nil {
		return ElementParams{}, err
	}

	q, err := firstNTTPrime(cyclotomicOrder, bits)
	if err != nil {
		return ElementParams{}, err
	}

	return NewElementParams(cyclotomicOrder, q)
}

// NewElementParams returns the ElementParams of the given cyclotomic order
// and modulus, with the smallest primitive root of unity.
func NewElementParams(cyclotomicOrder int, modulus uint64) (ElementParams, error) {

	if err := checkElementParams(cyclotomicOrder, modulus); err != nil {
		return ElementParams{}, err
	}

	root, err := RootOfUnity(uint64(cyclotomicOrder), modulus)
	if err != nil {
		return ElementParams{}, fmt.Errorf("cannot NewElementParams: %w", err)
	}

	return NewElementParamsWithRoot(cyclotomicOrder, modulus, root)
}

// NewElementParamsWithRoot returns the ElementParams of the given cyclotomic order,
// modulus and primitive root of unity.
func NewElementParamsWithRoot(cyclotomicOrder int, modulus, root uint64) (ElementParams, error) {
	return NewElementParamsWithBig(cyclotomicOrder, modulus, root, 0, 0)
}

// NewElementParamsWithBig returns the ElementParams of the given cyclotomic order,
// modulus, root of unity, big modulus and big root of unity.
// The big root of unity must be smaller than the big modulus, and both are zero when unset.
func NewElementParamsWithBig(cyclotomicOrder int, modulus, root, bigModulus, bigRoot uint64) (ElementParams, error) {

	if err := checkElementParams(cyclotomicOrder, modulus); err != nil {
		return ElementParams{}, err
	}

	if !IsPrimitiveRootOfUnity(root, uint64(cyclotomicOrder), modulus) {
		return ElementParams{}, fmt.Errorf("%d is not a primitive %d-th root of unity mod %d: %w", root, cyclotomicOrder, modulus, ErrInvalidParameters)
	}

	if (bigModulus == 0 && bigRoot != 0) || (bigModulus != 0 && bigRoot >= bigModulus) {
		return ElementParams{}, fmt.Errorf("invalid big modulus %d or big root of unity %d: %w", bigModulus, bigRoot, ErrInvalidParameters)
	}

	return ElementParams{
		ringDimension:   cyclotomicOrder >> 1,
		cyclotomicOrder: cyclotomicOrder,
		modulus:         modulus,
		rootOfUnity:     root,
		bigModulus:      bigModulus,
		bigRootOfUnity:  bigRoot,
	}, nil
}

func checkCyclotomicOrder(cyclotomicOrder int) error {
	if cyclotomicOrder < 2 || !utils.IsPowerOfTwo(cyclotomicOrder) {
		return fmt.Errorf("invalid cyclotomic order %d: must be a power of two greater than one: %w", cyclotomicOrder, ErrInvalidParameters)
	}
	return nil
}

func checkElementParams(cyclotomicOrder int, modulus uint64) error {

	if err := checkCyclotomicOrder(cyclotomicOrder); err != nil {
		return err
	}

	if err := checkModulus(modulus); err != nil {
		return fmt.Errorf("%w: %w", err, ErrInvalidParameters)
	}

	if (modulus-1)%uint64(cyclotomicOrder) != 0 {
		return fmt.Errorf("invalid modulus %d: != 1 mod %d: %w", modulus, cyclotomicOrder, ErrNoRootOfUnity)
	}

	if !IsPrime(modulus) {
		return fmt.Errorf("invalid modulus %d: not prime: %w", modulus, ErrInvalidParameters)
	}

	return nil
}

// firstNTTPrime returns the largest prime q < 2^bits with q = 1 mod cyclotomicOrder.
func firstNTTPrime(cyclotomicOrder, bits int) (uint64, error) {
	if bits > MaxBitsInWord {
		return 0, fmt.Errorf("invalid bit-size %d: larger than %d: %w", bits, MaxBitsInWord, ErrInvalidParameters)
	}
	if bits < 2 || 1<<bits <= cyclotomicOrder {
		return 0, fmt.Errorf("invalid bit-size %d: 2^bits must be larger than the cyclotomic order %d: %w", bits, cyclotomicOrder, ErrInvalidParameters)
	}
	// 2^bits + 1 = 1 mod cyclotomicOrder
	return PreviousPrime(1<<bits+1, uint64(cyclotomicOrder))
}

// RingDimension returns N.
func (p ElementParams) RingDimension() int {
	return p.ringDimension
}

// LogN returns log2(N).
func (p ElementParams) LogN() int {
	return bits.Len64(uint64(p.ringDimension)) - 1
}

// CyclotomicOrder returns the cyclotomic order 2N.
func (p ElementParams) CyclotomicOrder() int {
	return p.cyclotomicOrder
}

// Modulus returns the modulus.
func (p ElementParams) Modulus() uint64 {
	return p.modulus
}

// RootOfUnity returns the primitive root of unity.
func (p ElementParams) RootOfUnity() uint64 {
	return p.rootOfUnity
}

// BigModulus returns the big modulus, or zero if unset.
func (p ElementParams) BigModulus() uint64 {
	return p.bigModulus
}

// BigRootOfUnity returns the big root of unity, or zero if unset.
func (p ElementParams) BigRootOfUnity() uint64 {
	return p.bigRootOfUnity
}

// Equal returns true if both parameters are identical.
func (p ElementParams) Equal(other ElementParams) bool {
	return p == other
}

// ParametersLiteral returns the ElementParamsLiteral of the parameters.
func (p ElementParams) ParametersLiteral() ElementParamsLiteral {
	return ElementParamsLiteral{
		CyclotomicOrder: p.cyclotomicOrder,
		Modulus:         p.modulus,
		RootOfUnity:     p.rootOfUnity,
		BigModulus:      p.bigModulus,
		BigRootOfUnity:  p.bigRootOfUnity,
	}
}

func (p ElementParams) String() string {
	return fmt.Sprintf("ElementParams{N=%d, m=%d, q=%d, root=%d, bigQ=%d, bigRoot=%d}", p.ringDimension, p.cyclotomicOrder, p.modulus, p.rootOfUnity, p.bigModulus, p.bigRootOfUnity)
}

// withModulus returns a copy of the parameters with the moduli and roots replaced.
// A zero root leaves the parameters without a root of unity: they support every
// coefficient-wise operation but no NTT.
func (p ElementParams) withModulus(modulus, root, bigModulus, bigRoot uint64) ElementParams {
	params, err := newElementParamsNoNTT(p.cyclotomicOrder, modulus, root, bigModulus, bigRoot)
	if err != nil {
		panic(fmt.Errorf("cannot switch modulus: %w", err))
	}
	return params
}

// newElementParamsNoNTT is NewElementParamsWithBig that also accepts a zero root of
// unity and then only requires an odd modulus.
func newElementParamsNoNTT(cyclotomicOrder int, modulus, root, bigModulus, bigRoot uint64) (ElementParams, error) {

	if root != 0 {
		return NewElementParamsWithBig(cyclotomicOrder, modulus, root, bigModulus, bigRoot)
	}

	if err := checkCyclotomicOrder(cyclotomicOrder); err != nil {
		return ElementParams{}, err
	}

	if err := checkModulus(modulus); err != nil {
		return ElementParams{}, fmt.Errorf("%w: %w", err, ErrInvalidParameters)
	}

	if (bigModulus == 0 && bigRoot != 0) || (bigModulus != 0 && bigRoot >= bigModulus) {
		return ElementParams{}, fmt.Errorf("invalid big modulus %d or big root of unity %d: %w", bigModulus, bigRoot, ErrInvalidParameters)
	}

	return ElementParams{
		ringDimension:   cyclotomicOrder >> 1,
		cyclotomicOrder: cyclotomicOrder,
		modulus:         modulus,
		bigModulus:      bigModulus,
		bigRootOfUnity:  bigRoot,
	}, nil
}

// MarshalJSON encodes the parameters into JSON.
func (p ElementParams) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON decodes JSON bytes into the parameters.
func (p *ElementParams) UnmarshalJSON(data []byte) (err error) {
	var lit ElementParamsLiteral
	if err = json.Unmarshal(data, &lit); err != nil {
		return
	}
	*p, err = NewElementParamsFromLiteral(lit)
	return
}

// BinarySize returns the serialized size of the object in bytes.
func (p ElementParams) BinarySize() int {
	return 6 << 3
}

// WriteTo writes the object on an io.Writer. It implements the io.WriterTo
// interface, and will write exactly object.BinarySize() bytes on w.
func (p ElementParams) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64
		for _, v := range []uint64{uint64(p.ringDimension), uint64(p.cyclotomicOrder), p.modulus, p.rootOfUnity, p.bigModulus, p.bigRootOfUnity} {
			if inc, err = buffer.WriteUint64(w, v); err != nil {
				return n + inc, err
			}
			n += inc
		}

		return n, w.Flush()

	default:
		return p.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Writer. It implements the
// io.ReaderFrom interface. The decoded parameters are validated; a zero
// root of unity is accepted, as produced by Poly.SwitchModulus.
func (p *ElementParams) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64
		var v [6]uint64
		for i := range v {
			if inc, err = buffer.ReadUint64(r, &v[i]); err != nil {
				return n + inc, err
			}
			n += inc
		}

		var params ElementParams
		if params, err = newElementParamsNoNTT(int(v[1]), v[2], v[3], v[4], v[5]); err != nil {
			return n, fmt.Errorf("cannot ReadFrom: %w", err)
		}

		if params.ringDimension != int(v[0]) {
			return n, fmt.Errorf("cannot ReadFrom: ring dimension %d does not match the cyclotomic order %d: %w", v[0], v[1], ErrInvalidParameters)
		}

		*p = params

		return n, nil

	default:
		return p.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (p ElementParams) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(p.BinarySize())
	_, err = p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (p *ElementParams) UnmarshalBinary(data []byte) (err error) {
	_, err = p.ReadFrom(buffer.NewBuffer(data))
	return
}
