// Package constraint provides the in-memory representation of an R1CS
// circuit: a list of rank-1 constraints over a prime scalar field, a wire
// count and the set of public wires.
//
// A constraint system is immutable once built; it is safe to share, read-only,
// across concurrent encapsulation and decapsulation calls.
package constraint

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc"
)

// ErrMalformedCircuit is returned when a constraint system is internally
// inconsistent (out-of-range wire indices, coefficients outside the field,
// missing "one" wire, ...).
var ErrMalformedCircuit = errors.New("malformed circuit")

// WireOne is the index of the reserved constant wire; its assignment is
// always 1 and it is always public.
const WireOne = 0

// Version is stamped into serialized constraint systems; loaders warn when
// the binary and the artifact disagree.
const Version = "0.1.0"

// Term is coeff * wire.
type Term struct {
	Wire  int
	Coeff big.Int
}

// LinearExpression is a sparse linear combination of wires.
type LinearExpression []Term

// R1C is a rank-1 constraint: L * R == O.
type R1C struct {
	L, R, O LinearExpression
}

// R1CS describes a set of rank-1 constraints over a prime field.
//
// Serialized headers carry Version and ScalarField so that independently
// built artifacts can be checked for compatibility before use.
type R1CS struct {
	Version     string
	ScalarField string // modulus, base-16
	NbWires     int
	Public      *bitset.BitSet
	Constraints []R1C

	q *big.Int `cbor:"-"`
}

// NewR1CS returns an empty constraint system over the given scalar field,
// with the "one" wire marked public.
func NewR1CS(scalarField *big.Int, nbWires int) (*R1CS, error) {
	if scalarField == nil || scalarField.Sign() <= 0 || scalarField.BitLen() < 2 {
		return nil, fmt.Errorf("%w: invalid scalar field", ErrMalformedCircuit)
	}
	if nbWires < 1 {
		return nil, fmt.Errorf("%w: need at least the constant wire", ErrMalformedCircuit)
	}
	cs := &R1CS{
		Version:     Version,
		ScalarField: scalarField.Text(16),
		NbWires:     nbWires,
		Public:      bitset.New(uint(nbWires)),
		q:           new(big.Int).Set(scalarField),
	}
	cs.Public.Set(WireOne)
	return cs, nil
}

// Field returns a copy of the scalar field modulus.
func (cs *R1CS) Field() *big.Int {
	return new(big.Int).Set(cs.field())
}

func (cs *R1CS) field() *big.Int {
	if cs.q == nil {
		cs.q, _ = new(big.Int).SetString(cs.ScalarField, 16)
	}
	return cs.q
}

// CurveID returns the pairing-friendly curve whose scalar field matches the
// system's field, or ecc.UNKNOWN.
func (cs *R1CS) CurveID() ecc.ID {
	for _, id := range []ecc.ID{ecc.BN254, ecc.BLS12_381, ecc.BLS12_377} {
		if id.ScalarField().Cmp(cs.field()) == 0 {
			return id
		}
	}
	return ecc.UNKNOWN
}

// MarkPublic flags the given wires as public inputs.
func (cs *R1CS) MarkPublic(wires ...int) error {
	for _, w := range wires {
		if w < 0 || w >= cs.NbWires {
			return fmt.Errorf("%w: public wire %d out of range", ErrMalformedCircuit, w)
		}
		cs.Public.Set(uint(w))
	}
	return nil
}

// AddConstraint appends a constraint and returns its index. The constraint is
// not validated; call Check once the system is complete.
func (cs *R1CS) AddConstraint(c R1C) int {
	cs.Constraints = append(cs.Constraints, c)
	return len(cs.Constraints) - 1
}

// GetNbConstraints returns the number of constraints.
func (cs *R1CS) GetNbConstraints() int {
	return len(cs.Constraints)
}

// NbPublic returns the number of public wires, including the "one" wire.
func (cs *R1CS) NbPublic() int {
	return int(cs.Public.Count())
}

// Check validates the structural invariants of the system; it is the
// MalformedCircuit gate every consumer runs before doing real work.
func (cs *R1CS) Check() error {
	q := cs.field()
	if q == nil {
		return fmt.Errorf("%w: unparseable scalar field", ErrMalformedCircuit)
	}
	if cs.NbWires < 1 {
		return fmt.Errorf("%w: no wires", ErrMalformedCircuit)
	}
	if cs.Public == nil || !cs.Public.Test(WireOne) {
		return fmt.Errorf("%w: constant wire is not public", ErrMalformedCircuit)
	}
	for i, ok := cs.Public.NextSet(0); ok; i, ok = cs.Public.NextSet(i + 1) {
		if int(i) >= cs.NbWires {
			return fmt.Errorf("%w: public wire %d out of range", ErrMalformedCircuit, i)
		}
	}
	for i := range cs.Constraints {
		c := &cs.Constraints[i]
		for _, l := range []LinearExpression{c.L, c.R, c.O} {
			for j := range l {
				t := &l[j]
				if t.Wire < 0 || t.Wire >= cs.NbWires {
					return fmt.Errorf("%w: constraint %d references wire %d, have %d wires", ErrMalformedCircuit, i, t.Wire, cs.NbWires)
				}
				if t.Coeff.Sign() < 0 || t.Coeff.Cmp(q) >= 0 {
					return fmt.Errorf("%w: constraint %d has a coefficient outside the field", ErrMalformedCircuit, i)
				}
			}
		}
	}
	return nil
}

// Eval evaluates a linear expression against a dense assignment, mod q.
func (cs *R1CS) Eval(l LinearExpression, values []big.Int) *big.Int {
	q := cs.field()
	res := new(big.Int)
	var t big.Int
	for i := range l {
		t.Mul(&l[i].Coeff, &values[l[i].Wire])
		res.Add(res, &t)
	}
	return res.Mod(res, q)
}

// IsSatisfied reports whether the dense assignment satisfies every
// constraint. It is a tooling/test helper: decapsulation never calls it, the
// satisfiability check there happens inside the pairing computation.
func (cs *R1CS) IsSatisfied(values []big.Int) error {
	if len(values) != cs.NbWires {
		return fmt.Errorf("assignment has %d values, circuit has %d wires", len(values), cs.NbWires)
	}
	var t big.Int
	for i := range cs.Constraints {
		c := &cs.Constraints[i]
		l := cs.Eval(c.L, values)
		r := cs.Eval(c.R, values)
		o := cs.Eval(c.O, values)
		t.Mul(l, r).Mod(&t, cs.field())
		if t.Cmp(o) != 0 {
			return fmt.Errorf("constraint %d is not satisfied", i)
		}
	}
	return nil
}
