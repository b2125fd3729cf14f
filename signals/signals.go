// Package signals maps externally supplied named inputs onto circuit wires.
// The name-to-wire table comes from the circuit compiler's symbol file; the
// values arrive as a JSON document of numbers, decimal strings, and nested
// arrays.
package signals

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/zkenc/zkenc/constraint"
	"github.com/zkenc/zkenc/witness"
)

// Table maps fully qualified signal names to wire indices.
type Table struct {
	wires map[string]int
}

// Lookup resolves a signal name, falling back to the circuit compiler's
// "main." prefix so callers can use bare names.
func (t *Table) Lookup(name string) (int, bool) {
	if w, ok := t.wires[name]; ok {
		return w, true
	}
	w, ok := t.wires["main."+name]
	return w, ok
}

// Len returns the number of mapped signals.
func (t *Table) Len() int { return len(t.wires) }

// ReadSym parses a symbol file: one "label,wire,component,name" line per
// signal. Signals the optimizer dropped carry wire -1 and are skipped.
func ReadSym(r io.Reader) (*Table, error) {
	t := &Table{wires: make(map[string]int)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("%w: symbol file line %d has %d fields", witness.ErrMalformedInput, line, len(parts))
		}
		wire, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: symbol file line %d: %s", witness.ErrMalformedInput, line, err)
		}
		if wire < 0 {
			continue
		}
		t.wires[parts[3]] = wire
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// Build turns a JSON document of named inputs into a public-only wire
// assignment for cs. Arrays flatten depth first, keys apply in sorted order
// so the caller's ordering is irrelevant, and the constant wire is set
// unconditionally.
func Build(cs *constraint.R1CS, table *Table, jsonInputs []byte) (*witness.Assignment, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonInputs))
	dec.UseNumber()
	var doc map[string]interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s", witness.ErrMalformedInput, err)
	}

	a := witness.New(cs.NbWires)
	if err := a.Set(constraint.WireOne, big.NewInt(1)); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	q := cs.Field()
	for _, name := range names {
		if err := assign(cs, table, a, q, name, doc[name]); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func assign(cs *constraint.R1CS, table *Table, a *witness.Assignment, q *big.Int, name string, value interface{}) error {
	switch v := value.(type) {
	case []interface{}:
		for i, elem := range v {
			if err := assign(cs, table, a, q, fmt.Sprintf("%s[%d]", name, i), elem); err != nil {
				return err
			}
		}
		return nil
	case json.Number:
		return assignScalar(cs, table, a, q, name, v.String())
	case string:
		return assignScalar(cs, table, a, q, name, v)
	default:
		return fmt.Errorf("%w: signal %q has unsupported type %T", witness.ErrMalformedInput, name, value)
	}
}

func assignScalar(cs *constraint.R1CS, table *Table, a *witness.Assignment, q *big.Int, name, raw string) error {
	wire, ok := table.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: unknown signal %q", witness.ErrMalformedInput, name)
	}
	if wire >= cs.NbWires {
		return fmt.Errorf("%w: signal %q maps to wire %d, circuit has %d", witness.ErrMalformedInput, name, wire, cs.NbWires)
	}
	if !cs.Public.Test(uint(wire)) {
		return fmt.Errorf("%w: signal %q is not a public input", witness.ErrMalformedInput, name)
	}

	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return fmt.Errorf("%w: signal %q value %q is not a decimal integer", witness.ErrMalformedInput, name, raw)
	}
	if v.Sign() < 0 || v.Cmp(q) >= 0 {
		return fmt.Errorf("%w: signal %q value out of field range", witness.ErrMalformedInput, name)
	}
	return a.Set(wire, v)
}
