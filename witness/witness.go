// Package witness provides dense assignments of field values to circuit
// wires. An assignment may cover only the public wires (the encryptor's
// side) or every wire (the decryptor's side).
package witness

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
)

// ErrMalformedInput is wrapped by all errors caused by assignments that do
// not match the circuit they are used with.
var ErrMalformedInput = errors.New("malformed input")

// Assignment maps wire indices to field values.
type Assignment struct {
	values   []big.Int
	assigned *bitset.BitSet
}

// New returns an empty assignment over nbWires wires.
func New(nbWires int) *Assignment {
	return &Assignment{
		values:   make([]big.Int, nbWires),
		assigned: bitset.New(uint(nbWires)),
	}
}

// NewFull returns an assignment where every wire carries the corresponding
// entry of values.
func NewFull(values []big.Int) *Assignment {
	a := New(len(values))
	for i := range values {
		a.values[i].Set(&values[i])
	}
	a.assigned.FlipRange(0, uint(len(values)))
	return a
}

// Set assigns v to wire i. Reassigning a wire overwrites the previous value.
func (a *Assignment) Set(i int, v *big.Int) error {
	if i < 0 || i >= len(a.values) {
		return fmt.Errorf("%w: wire %d out of range [0, %d)", ErrMalformedInput, i, len(a.values))
	}
	a.values[i].Set(v)
	a.assigned.Set(uint(i))
	return nil
}

// Get returns the value assigned to wire i, or nil if the wire is unassigned.
func (a *Assignment) Get(i int) *big.Int {
	if i < 0 || i >= len(a.values) || !a.assigned.Test(uint(i)) {
		return nil
	}
	return &a.values[i]
}

// Has reports whether wire i carries a value.
func (a *Assignment) Has(i int) bool {
	return i >= 0 && i < len(a.values) && a.assigned.Test(uint(i))
}

// NbWires returns the total number of wires the assignment spans.
func (a *Assignment) NbWires() int {
	return len(a.values)
}

// Covers reports whether every wire in the set carries a value.
func (a *Assignment) Covers(wires *bitset.BitSet) bool {
	return wires.Difference(a.assigned).None()
}

// IsComplete reports whether every wire carries a value.
func (a *Assignment) IsComplete() bool {
	return a.assigned.Count() == uint(len(a.values))
}

// Values returns the backing slice. Unassigned wires read as zero; callers
// that need to distinguish use Has.
func (a *Assignment) Values() []big.Int {
	return a.values
}

// Reduce replaces every assigned value with its representative mod q.
func (a *Assignment) Reduce(q *big.Int) {
	for i := range a.values {
		if a.assigned.Test(uint(i)) {
			a.values[i].Mod(&a.values[i], q)
		}
	}
}
