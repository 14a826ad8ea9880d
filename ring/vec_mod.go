package ring

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"

	"github.com/latticore/latticore/utils"
	"github.com/latticore/latticore/utils/buffer"
	"github.com/latticore/latticore/utils/sampling"
)

// VecMod is a vector of residues sharing one odd modulus.
// The residues are stored in Montgomery form, so that repeated
// multiplications only cost a Montgomery reduction each.
//
// Arithmetic methods follow the math/big convention: the receiver
// is set to the result and returned, and it takes the modulus and
// the length of the first operand. Operands must share the same
// modulus and length, else the methods panic.
type VecMod struct {
	modulus      uint64
	bredconstant [2]uint64
	mredconstant uint64
	coeffs       []uint64
}

// NewVecMod allocates a zero VecMod of n residues modulo q.
// q must be odd, greater than 2 and at most MaxBitsInWord bits.
func NewVecMod(q uint64, n int) (v *VecMod) {
	if err := checkModulus(q); err != nil {
		panic(fmt.Errorf("cannot NewVecMod: %w", err))
	}
	v = new(VecMod)
	v.setModulus(q)
	v.coeffs = make([]uint64, n)
	return
}

// NewVecModFromValues allocates a VecMod modulo q from the given values,
// which are reduced modulo q.
func NewVecModFromValues(q uint64, values []uint64) (v *VecMod) {
	v = NewVecMod(q, len(values))
	v.SetValues(values)
	return
}

func checkModulus(q uint64) error {
	if q < 3 || q&1 == 0 {
		return fmt.Errorf("invalid modulus %d: must be odd and greater than 2", q)
	}
	if bits.Len64(q) > MaxBitsInWord {
		return fmt.Errorf("invalid modulus %d: bit-size is larger than %d", q, MaxBitsInWord)
	}
	return nil
}

func (v *VecMod) setModulus(q uint64) {
	v.modulus = q
	v.bredconstant = GenBRedConstant(q)
	v.mredconstant = GenMRedConstant(q)
}

// adopt shapes v after a, reusing the backing array of v when possible.
func (v *VecMod) adopt(a *VecMod) {
	if v == a {
		return
	}
	if v.modulus != a.modulus {
		v.modulus, v.bredconstant, v.mredconstant = a.modulus, a.bredconstant, a.mredconstant
	}
	if cap(v.coeffs) < len(a.coeffs) {
		v.coeffs = make([]uint64, len(a.coeffs))
	}
	v.coeffs = v.coeffs[:len(a.coeffs)]
}

func (v *VecMod) mustMatch(a *VecMod) {
	if v.modulus != a.modulus {
		panic(fmt.Errorf("vector modulus mismatch: %d != %d", v.modulus, a.modulus))
	}
	if len(v.coeffs) != len(a.coeffs) {
		panic(fmt.Errorf("vector length mismatch: %d != %d", len(v.coeffs), len(a.coeffs)))
	}
}

// Modulus returns the modulus of the vector.
func (v *VecMod) Modulus() uint64 {
	return v.modulus
}

// Len returns the number of residues of the vector.
func (v *VecMod) Len() int {
	return len(v.coeffs)
}

// Get returns the i-th residue in standard form.
func (v *VecMod) Get(i int) uint64 {
	return IMForm(v.coeffs[i], v.modulus, v.mredconstant)
}

// Set sets the i-th residue to x mod q.
func (v *VecMod) Set(i int, x uint64) {
	v.coeffs[i] = MForm(BRedAdd(x, v.modulus, v.bredconstant), v.modulus, v.bredconstant)
}

// Values returns a copy of the residues in standard form.
func (v *VecMod) Values() (values []uint64) {
	values = make([]uint64, len(v.coeffs))
	for i := range v.coeffs {
		values[i] = v.Get(i)
	}
	return
}

// SetValues sets the residues to the given values reduced mod q.
// The length of values must match the length of v.
func (v *VecMod) SetValues(values []uint64) {
	if len(values) != len(v.coeffs) {
		panic(fmt.Errorf("cannot SetValues: length mismatch: %d != %d", len(values), len(v.coeffs)))
	}
	for i := range values {
		v.Set(i, values[i])
	}
}

// CopyNew returns a deep copy of the vector.
func (v *VecMod) CopyNew() *VecMod {
	c := *v
	c.coeffs = make([]uint64, len(v.coeffs))
	copy(c.coeffs, v.coeffs)
	return &c
}

// Equal returns true if both vectors have the same modulus and residues.
func (v *VecMod) Equal(other *VecMod) bool {
	return v.modulus == other.modulus && utils.EqualSlice(v.coeffs, other.coeffs)
}

// Zero sets all residues to zero.
func (v *VecMod) Zero() {
	for i := range v.coeffs {
		v.coeffs[i] = 0
	}
}

// Add sets v to a + b and returns v.
func (v *VecMod) Add(a, b *VecMod) *VecMod {
	a.mustMatch(b)
	v.adopt(a)
	q := a.modulus
	for i := range v.coeffs {
		v.coeffs[i] = CRed(a.coeffs[i]+b.coeffs[i], q)
	}
	return v
}

// Sub sets v to a - b and returns v.
func (v *VecMod) Sub(a, b *VecMod) *VecMod {
	a.mustMatch(b)
	v.adopt(a)
	q := a.modulus
	for i := range v.coeffs {
		v.coeffs[i] = CRed(a.coeffs[i]+q-b.coeffs[i], q)
	}
	return v
}

// Mul sets v to the elementwise product a * b and returns v.
func (v *VecMod) Mul(a, b *VecMod) *VecMod {
	a.mustMatch(b)
	v.adopt(a)
	q, mredconstant := a.modulus, a.mredconstant
	for i := range v.coeffs {
		v.coeffs[i] = MRed(a.coeffs[i], b.coeffs[i], q, mredconstant)
	}
	return v
}

// Neg sets v to -a and returns v.
func (v *VecMod) Neg(a *VecMod) *VecMod {
	v.adopt(a)
	q := a.modulus
	for i := range v.coeffs {
		v.coeffs[i] = CRed(q-a.coeffs[i], q)
	}
	return v
}

// AddScalar sets v to a + c and returns v.
func (v *VecMod) AddScalar(a *VecMod, c uint64) *VecMod {
	v.adopt(a)
	q := a.modulus
	cMont := MForm(BRedAdd(c, q, a.bredconstant), q, a.bredconstant)
	for i := range v.coeffs {
		v.coeffs[i] = CRed(a.coeffs[i]+cMont, q)
	}
	return v
}

// SubScalar sets v to a - c and returns v.
func (v *VecMod) SubScalar(a *VecMod, c uint64) *VecMod {
	v.adopt(a)
	q := a.modulus
	cMont := MForm(BRedAdd(c, q, a.bredconstant), q, a.bredconstant)
	for i := range v.coeffs {
		v.coeffs[i] = CRed(a.coeffs[i]+q-cMont, q)
	}
	return v
}

// MulScalar sets v to a * c and returns v.
func (v *VecMod) MulScalar(a *VecMod, c uint64) *VecMod {
	v.adopt(a)
	q, mredconstant := a.modulus, a.mredconstant
	cMont := MForm(BRedAdd(c, q, a.bredconstant), q, a.bredconstant)
	for i := range v.coeffs {
		v.coeffs[i] = MRed(a.coeffs[i], cMont, q, mredconstant)
	}
	return v
}

// Exp sets v to the elementwise power a^e and returns v.
func (v *VecMod) Exp(a *VecMod, e uint64) *VecMod {
	v.adopt(a)
	for i := range v.coeffs {
		v.coeffs[i] = ModExpMontgomery(a.coeffs[i], e, a.modulus, a.mredconstant, a.bredconstant)
	}
	return v
}

// Inverse sets v to the elementwise inverse of a and returns true.
// If any residue of a is zero, no inverse exists: v is left
// unchanged and false is returned. The modulus must be prime.
func (v *VecMod) Inverse(a *VecMod) (ok bool) {

	for i := range a.coeffs {
		if a.coeffs[i] == 0 {
			return false
		}
	}

	v.adopt(a)
	q := a.modulus
	for i := range v.coeffs {
		x := IMForm(a.coeffs[i], q, a.mredconstant)
		v.coeffs[i] = MForm(ModInverse(x, q), q, a.bredconstant)
	}

	return true
}

// InverseNew returns the elementwise inverse of v, or (nil, false)
// if any residue of v is zero.
func (v *VecMod) InverseNew() (*VecMod, bool) {
	inv := new(VecMod)
	if !inv.Inverse(v) {
		return nil, false
	}
	return inv, true
}

// Random fills v with residues uniformly distributed in [0, q) read from prng.
func (v *VecMod) Random(prng sampling.PRNG) {
	q := v.modulus
	for i := range v.coeffs {
		// A uniform residue is also uniform in Montgomery form.
		v.coeffs[i] = sampling.ReadUint64N(prng, q)
	}
}

// SwitchModulus changes the modulus of v to newModulus, interpreting
// residues larger than q/2 as negative values, which keep their signed
// meaning under the new modulus.
func (v *VecMod) SwitchModulus(newModulus uint64) {

	if err := checkModulus(newModulus); err != nil {
		panic(fmt.Errorf("cannot SwitchModulus: %w", err))
	}

	values := v.Values()
	oldModulus := v.modulus

	for i := range values {
		values[i] = switchModulus(values[i], oldModulus, newModulus)
	}

	v.setModulus(newModulus)
	v.SetValues(values)
}

func switchModulus(x, oldModulus, newModulus uint64) uint64 {

	half := oldModulus >> 1

	if newModulus > oldModulus {
		if x > half {
			x += newModulus - oldModulus
		}
		return x
	}

	if x > half {
		x += newModulus - oldModulus%newModulus
	}

	if x >= newModulus {
		x %= newModulus
	}

	return x
}

// Centered returns the i-th residue as a signed value in (-q/2, q/2].
func (v *VecMod) Centered(i int) int64 {
	x := v.Get(i)
	if x > v.modulus>>1 {
		return -int64(v.modulus - x)
	}
	return int64(x)
}

// BinarySize returns the serialized size of the object in bytes.
func (v *VecMod) BinarySize() int {
	return 16 + len(v.coeffs)<<3
}

// WriteTo writes the object on an io.Writer: the modulus, the length and
// then the residues in standard form.
// It implements the io.WriterTo interface, and will write exactly object.BinarySize() bytes on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer/writer.go),
// it will be wrapped into a bufio.Writer. Since this requires allocations, it
// is preferable to pass a buffer.Writer directly:
//
//   - When writing multiple times to a io.Writer, it is preferable to first wrap the
//     io.Writer in a pre-allocated bufio.Writer.
//   - When writing to a pre-allocated var b []byte, it is preferable to pass
//     buffer.NewBuffer(b) as w (see utils/buffer/buffer.go).
func (v *VecMod) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteUint64(w, v.modulus); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteInt(w, len(v.coeffs)); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint64Slice(w, v.Values()); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()

	default:
		return v.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Writer. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see utils/buffer/reader.go),
// it will be wrapped into a bufio.Reader. Since this requires allocation, it
// is preferable to pass a buffer.Reader directly:
//
//   - When reading multiple values from a io.Reader, it is preferable to first
//     wrap io.Reader in a pre-allocated bufio.Reader.
//   - When reading from a var b []byte, it is preferable to pass a buffer.NewBuffer(b)
//     as w (see utils/buffer/buffer.go).
func (v *VecMod) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var q uint64
		if inc, err = buffer.ReadUint64(r, &q); err != nil {
			return n + inc, err
		}

		n += inc

		if err = checkModulus(q); err != nil {
			return n, fmt.Errorf("cannot ReadFrom: %w", err)
		}

		var size int
		if inc, err = buffer.ReadInt(r, &size); err != nil {
			return n + inc, err
		}

		n += inc

		if size < 0 {
			return n, fmt.Errorf("cannot ReadFrom: invalid length %d", size)
		}

		values := make([]uint64, size)

		if inc, err = buffer.ReadUint64Slice(r, values); err != nil {
			return n + inc, err
		}

		n += inc

		for i := range values {
			if values[i] >= q {
				return n, fmt.Errorf("cannot ReadFrom: residue %d is not smaller than the modulus %d", values[i], q)
			}
		}

		v.setModulus(q)
		v.coeffs = make([]uint64, size)
		v.SetValues(values)

		return n, nil

	default:
		return v.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly allocated slice of bytes.
func (v *VecMod) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(v.BinarySize())
	_, err = v.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by
// MarshalBinary or WriteTo on the object.
func (v *VecMod) UnmarshalBinary(p []byte) (err error) {
	_, err = v.ReadFrom(buffer.NewBuffer(p))
	return
}
