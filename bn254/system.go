// Package bn254 implements witness encapsulation for rank-1 constraint
// systems over the BN254 curve.
//
// Encap derives a shared key from a circuit and an assignment of its public
// wires; the resulting ciphertext can be opened by anyone holding a full
// wire assignment that satisfies the circuit. No trusted setup is involved:
// fresh toxic waste is sampled per call and discarded once the ciphertext
// is built.
package bn254

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/zkenc/zkenc/constraint"
	"github.com/zkenc/zkenc/witness"
)

var (
	// ErrInvalidWitness is returned by Decap when the assignment does not
	// satisfy the circuit.
	ErrInvalidWitness = errors.New("witness does not satisfy the circuit")

	// ErrPairingCheckFailed is returned by Decap when the ciphertext contains
	// group elements the pairing engine rejects.
	ErrPairingCheckFailed = errors.New("pairing check failed")

	// ErrRngFailure is returned by Encap when the caller-supplied entropy
	// source fails.
	ErrRngFailure = errors.New("rng failure")
)

// term is a single product coeff*wire inside a constraint, with the
// coefficient already reduced into fr.
type term struct {
	Coeff  fr.Element
	WireID int
}

// System is a constraint system compiled for encapsulation: the three
// constraint matrices with field-typed coefficients, the evaluation domain,
// and the public/private wire split.
type System struct {
	a, b, c [][]term

	domain  *fft.Domain
	public  *bitset.BitSet
	private []int // wire indices not in public, ascending
	nbWires int
}

// NewSystem compiles cs for the BN254 scalar field.
func NewSystem(cs *constraint.R1CS) (*System, error) {
	if err := cs.Check(); err != nil {
		return nil, err
	}
	if cs.CurveID() != ecc.BN254 {
		return nil, fmt.Errorf("%w: scalar field is not BN254", constraint.ErrMalformedCircuit)
	}

	s := &System{
		a:       make([][]term, cs.GetNbConstraints()),
		b:       make([][]term, cs.GetNbConstraints()),
		c:       make([][]term, cs.GetNbConstraints()),
		domain:  fft.NewDomain(uint64(cs.GetNbConstraints())),
		public:  cs.Public.Clone(),
		nbWires: cs.NbWires,
	}
	s.public.Set(constraint.WireOne)

	toTerms := func(l constraint.LinearExpression) []term {
		ts := make([]term, len(l))
		for i := range l {
			ts[i].WireID = l[i].Wire
			ts[i].Coeff.SetBigInt(&l[i].Coeff)
		}
		return ts
	}
	for i := range cs.Constraints {
		s.a[i] = toTerms(cs.Constraints[i].L)
		s.b[i] = toTerms(cs.Constraints[i].R)
		s.c[i] = toTerms(cs.Constraints[i].O)
	}

	for i := 0; i < s.nbWires; i++ {
		if !s.public.Test(uint(i)) {
			s.private = append(s.private, i)
		}
	}
	return s, nil
}

// NbWires returns the number of wires of the compiled circuit.
func (s *System) NbWires() int { return s.nbWires }

// NbPrivate returns the number of private wires.
func (s *System) NbPrivate() int { return len(s.private) }

// nbZPowers is the length of the quotient commitment array: the quotient of
// a satisfied instance has degree at most cardinality-2.
func (s *System) nbZPowers() int { return int(s.domain.Cardinality) - 1 }

// frValues converts the assignment into field elements, rejecting values
// outside the field and a mis-set constant wire.
func (s *System) frValues(a *witness.Assignment) ([]fr.Element, error) {
	if a.NbWires() != s.nbWires {
		return nil, fmt.Errorf("%w: assignment spans %d wires, circuit has %d", witness.ErrMalformedInput, a.NbWires(), s.nbWires)
	}
	q := fr.Modulus()
	vals := a.Values()
	out := make([]fr.Element, len(vals))
	for i := range vals {
		if !a.Has(i) {
			continue
		}
		if vals[i].Sign() < 0 || vals[i].Cmp(q) >= 0 {
			return nil, fmt.Errorf("%w: wire %d value out of field", witness.ErrMalformedInput, i)
		}
		out[i].SetBigInt(&vals[i])
	}
	if a.Has(constraint.WireOne) {
		if !out[constraint.WireOne].IsOne() {
			return nil, fmt.Errorf("%w: constant wire must carry 1", witness.ErrMalformedInput)
		}
	}
	return out, nil
}
