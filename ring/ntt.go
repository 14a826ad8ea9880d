package ring

import (
	"fmt"
	"math/bits"

	"github.com/latticore/latticore/utils"
)

// NTTTable stores the precomputed constants of the number theoretic
// transforms of a ring Z_q[X]/(X^N+1), for N = CyclotomicOrder/2.
//
// Two transforms are provided:
//   - the negacyclic transform (Forward/Backward), used by Poly, whose
//     evaluation domain is in bit-reversed order;
//   - the cyclic transform (ForwardCyclic/BackwardCyclic) of length N,
//     with the principal N-th root omega = RootOfUnity^2.
type NTTTable struct {
	N               int
	CyclotomicOrder int
	Modulus         uint64
	RootOfUnity     uint64

	BRedConstant [2]uint64
	MRedConstant uint64

	NInv uint64 // N^-1 mod Modulus in Montgomery form

	RootsForward  []uint64 // powers of RootOfUnity in bit-reversed order, in Montgomery form
	RootsBackward []uint64 // powers of RootOfUnity^-1 in bit-reversed order, in Montgomery form

	OmegaForward  []uint64 // omega^i for 0 <= i < N/2, in Montgomery form
	OmegaBackward []uint64 // omega^-i for 0 <= i < N/2, in Montgomery form
}

// NewNTTTable generates the NTT constants for the given modulus, primitive
// cyclotomicOrder-th root of unity and cyclotomic order (a power of two).
func NewNTTTable(modulus, root uint64, cyclotomicOrder int) (t *NTTTable, err error) {

	if cyclotomicOrder < 2 || !utils.IsPowerOfTwo(cyclotomicOrder) {
		return nil, fmt.Errorf("cannot NewNTTTable: invalid cyclotomic order %d: must be a power of two greater than one", cyclotomicOrder)
	}

	if err = checkModulus(modulus); err != nil {
		return nil, fmt.Errorf("cannot NewNTTTable: %w", err)
	}

	if (modulus-1)%uint64(cyclotomicOrder) != 0 {
		return nil, fmt.Errorf("cannot NewNTTTable: invalid modulus: %d != 1 mod %d: %w", modulus, cyclotomicOrder, ErrNoRootOfUnity)
	}

	if !IsPrimitiveRootOfUnity(root, uint64(cyclotomicOrder), modulus) {
		return nil, fmt.Errorf("cannot NewNTTTable: %d is not a primitive %d-th root of unity mod %d", root, cyclotomicOrder, modulus)
	}

	N := cyclotomicOrder >> 1

	t = &NTTTable{
		N:               N,
		CyclotomicOrder: cyclotomicOrder,
		Modulus:         modulus,
		RootOfUnity:     root,
		BRedConstant:    GenBRedConstant(modulus),
		MRedConstant:    GenMRedConstant(modulus),
	}

	q, bredconstant, mredconstant := modulus, t.BRedConstant, t.MRedConstant

	logN := bits.Len64(uint64(N)) - 1

	t.NInv = MForm(ModInverse(uint64(N), q), q, bredconstant)

	PsiMont := MForm(root, q, bredconstant)
	PsiInvMont := MForm(ModInverse(root, q), q, bredconstant)

	t.RootsForward = make([]uint64, N)
	t.RootsBackward = make([]uint64, N)

	t.RootsForward[0] = MForm(1, q, bredconstant)
	t.RootsBackward[0] = MForm(1, q, bredconstant)

	// Computes RootsForward[bitrev(j)] = Psi^j and RootsBackward[bitrev(j)] = Psi^-j
	for j := 1; j < N; j++ {

		indexReversePrev := utils.BitReverse64(j-1, logN)
		indexReverseNext := utils.BitReverse64(j, logN)

		t.RootsForward[indexReverseNext] = MRed(t.RootsForward[indexReversePrev], PsiMont, q, mredconstant)
		t.RootsBackward[indexReverseNext] = MRed(t.RootsBackward[indexReversePrev], PsiInvMont, q, mredconstant)
	}

	// omega = Psi^2 is a principal N-th root of unity
	OmegaMont := MRed(PsiMont, PsiMont, q, mredconstant)
	OmegaInvMont := MRed(PsiInvMont, PsiInvMont, q, mredconstant)

	half := utils.Max(N>>1, 1)

	t.OmegaForward = make([]uint64, half)
	t.OmegaBackward = make([]uint64, half)

	t.OmegaForward[0] = MForm(1, q, bredconstant)
	t.OmegaBackward[0] = MForm(1, q, bredconstant)

	for j := 1; j < half; j++ {
		t.OmegaForward[j] = MRed(t.OmegaForward[j-1], OmegaMont, q, mredconstant)
		t.OmegaBackward[j] = MRed(t.OmegaBackward[j-1], OmegaInvMont, q, mredconstant)
	}

	return
}

func (t *NTTTable) mustMatch(p1, p2 []uint64) {
	if len(p1) != t.N || len(p2) != t.N {
		panic(fmt.Errorf("invalid NTT operands: lengths %d and %d but ring degree is %d", len(p1), len(p2), t.N))
	}
}

// butterfly computes X, Y = U + V*Psi, U - V*Psi mod Q.
func butterfly(U, V, Psi, Q, MRedConstant uint64) (X, Y uint64) {
	// V in [0, 2Q-1], so both sums are in [0, 3Q-1]
	V = MRedLazy(V, Psi, Q, MRedConstant)
	return CRed(CRed(U+V, Q), Q), CRed(CRed(U+2*Q-V, Q), Q)
}

// invbutterfly computes X, Y = U + V, (U - V) * Psi mod Q.
func invbutterfly(U, V, Psi, Q, MRedConstant uint64) (X, Y uint64) {
	return CRed(U+V, Q), MRed(U+Q-V, Psi, Q, MRedConstant)
}

// Forward evaluates p2 = NTT(p1) in Z_q[X]/(X^N+1).
// The output is in bit-reversed order: p2[i] = p1(Psi^(2*bitrev(i)+1)).
// p1 and p2 can be the same slice.
func (t *NTTTable) Forward(p1, p2 []uint64) {

	t.mustMatch(p1, p2)

	if &p1[0] != &p2[0] {
		copy(p2, p1)
	}

	N, Q, MRedConstant := t.N, t.Modulus, t.MRedConstant

	for m, h := 1, N>>1; m < N; m, h = m<<1, h>>1 {

		for i := 0; i < m; i++ {

			j1 := 2 * i * h
			j2 := j1 + h

			F := t.RootsForward[m+i]

			for j := j1; j < j2; j++ {
				p2[j], p2[j+h] = butterfly(p2[j], p2[j+h], F, Q, MRedConstant)
			}
		}
	}
}

// Backward evaluates p2 = INTT(p1) in Z_q[X]/(X^N+1), the inverse of Forward.
// p1 and p2 can be the same slice.
func (t *NTTTable) Backward(p1, p2 []uint64) {

	t.mustMatch(p1, p2)

	if &p1[0] != &p2[0] {
		copy(p2, p1)
	}

	N, Q, MRedConstant := t.N, t.Modulus, t.MRedConstant

	for m, h := N, 1; m > 1; m, h = m>>1, h<<1 {

		for i, j1 := 0, 0; i < m>>1; i, j1 = i+1, j1+2*h {

			j2 := j1 + h

			F := t.RootsBackward[(m>>1)+i]

			for j := j1; j < j2; j++ {
				p2[j], p2[j+h] = invbutterfly(p2[j], p2[j+h], F, Q, MRedConstant)
			}
		}
	}

	for i := range p2 {
		p2[i] = MRed(p2[i], t.NInv, Q, MRedConstant)
	}
}

// ForwardCyclic evaluates the cyclic transform of length N:
// p2[k] = sum_j p1[j] * omega^(j*k), with omega = RootOfUnity^2.
// The input is bit-reversed, then log2(N) Cooley-Tukey stages
// are applied, so that the output is in natural order.
func (t *NTTTable) ForwardCyclic(p1, p2 []uint64) {
	t.cyclic(p1, p2, t.OmegaForward)
}

// BackwardCyclic is the inverse of ForwardCyclic.
func (t *NTTTable) BackwardCyclic(p1, p2 []uint64) {
	t.cyclic(p1, p2, t.OmegaBackward)
	for i := range p2 {
		p2[i] = MRed(p2[i], t.NInv, t.Modulus, t.MRedConstant)
	}
}

func (t *NTTTable) cyclic(p1, p2, omega []uint64) {

	t.mustMatch(p1, p2)

	if &p1[0] != &p2[0] {
		copy(p2, p1)
	}

	N, Q, MRedConstant := t.N, t.Modulus, t.MRedConstant

	utils.BitReverseInPlaceSlice(p2, N)

	for m := 2; m <= N; m <<= 1 {

		half := m >> 1
		step := N / m

		for k := 0; k < N; k += m {
			for j := 0; j < half; j++ {
				p2[k+j], p2[k+j+half] = butterfly(p2[k+j], p2[k+j+half], omega[j*step], Q, MRedConstant)
			}
		}
	}
}

// ForwardVec applies the negacyclic forward transform on v in place.
// The modulus of v must match the table.
func (t *NTTTable) ForwardVec(v *VecMod) {
	t.checkVec(v)
	t.Forward(v.coeffs, v.coeffs)
}

// BackwardVec applies the negacyclic backward transform on v in place.
func (t *NTTTable) BackwardVec(v *VecMod) {
	t.checkVec(v)
	t.Backward(v.coeffs, v.coeffs)
}

// ForwardCyclicVec applies the cyclic forward transform on v in place.
func (t *NTTTable) ForwardCyclicVec(v *VecMod) {
	t.checkVec(v)
	t.ForwardCyclic(v.coeffs, v.coeffs)
}

// BackwardCyclicVec applies the cyclic backward transform on v in place.
func (t *NTTTable) BackwardCyclicVec(v *VecMod) {
	t.checkVec(v)
	t.BackwardCyclic(v.coeffs, v.coeffs)
}

func (t *NTTTable) checkVec(v *VecMod) {
	if v.modulus != t.Modulus {
		panic(fmt.Errorf("invalid NTT operand: modulus %d but table modulus is %d", v.modulus, t.Modulus))
	}
}
