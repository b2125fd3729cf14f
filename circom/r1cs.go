// Package circom loads the external circuit artifacts this engine consumes:
// the compiler's binary constraint-system file and the witness generator's
// binary assignment file. Both are read-only inputs; nothing here writes
// them back.
package circom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/zkenc/zkenc/constraint"
)

const (
	r1csMagic   = 0x73633172 // "r1cs" little-endian
	wtnsMagic   = 0x736e7477 // "wtns"
	maxSection  = 1 << 30
	maxChunkLen = 1 << 24 // cap on per-item counts before reading them
)

// readSections reads a circom-style container: magic, version, then a list
// of (type, size, body) sections in arbitrary order. Later duplicates win.
func readSections(r io.Reader, magic uint32) (map[uint32][]byte, error) {
	var hdr struct {
		Magic      uint32
		Version    uint32
		NbSections uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	if hdr.Magic != magic {
		return nil, fmt.Errorf("bad magic %#x", hdr.Magic)
	}
	if hdr.NbSections > 16 {
		return nil, fmt.Errorf("implausible section count %d", hdr.NbSections)
	}

	out := make(map[uint32][]byte, hdr.NbSections)
	for i := uint32(0); i < hdr.NbSections; i++ {
		var st uint32
		var size uint64
		if err := binary.Read(r, binary.LittleEndian, &st); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		if size > maxSection {
			return nil, fmt.Errorf("section %d too large", st)
		}
		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}
		out[st] = body
	}
	return out, nil
}

// leBytesToBigInt interprets b as a little-endian unsigned integer.
func leBytesToBigInt(b []byte) *big.Int {
	buf := make([]byte, len(b))
	for i := range b {
		buf[len(b)-1-i] = b[i]
	}
	return new(big.Int).SetBytes(buf)
}

type r1csHeader struct {
	fieldSize     int
	prime         *big.Int
	nbWires       int
	nbPubOut      int
	nbPubIn       int
	nbConstraints int
}

func parseR1CSHeader(body []byte) (*r1csHeader, error) {
	r := bytes.NewReader(body)
	var fieldSize uint32
	if err := binary.Read(r, binary.LittleEndian, &fieldSize); err != nil {
		return nil, err
	}
	if fieldSize == 0 || fieldSize > 64 {
		return nil, fmt.Errorf("implausible field size %d", fieldSize)
	}
	primeBytes := make([]byte, fieldSize)
	if _, err := io.ReadFull(r, primeBytes); err != nil {
		return nil, err
	}
	var rest struct {
		NbWires       uint32
		NbPubOut      uint32
		NbPubIn       uint32
		NbPrvIn       uint32
		NbLabels      uint64
		NbConstraints uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &rest); err != nil {
		return nil, err
	}
	if rest.NbWires == 0 || rest.NbWires > maxChunkLen || rest.NbConstraints > maxChunkLen {
		return nil, fmt.Errorf("implausible dimensions: %d wires, %d constraints", rest.NbWires, rest.NbConstraints)
	}
	return &r1csHeader{
		fieldSize:     int(fieldSize),
		prime:         leBytesToBigInt(primeBytes),
		nbWires:       int(rest.NbWires),
		nbPubOut:      int(rest.NbPubOut),
		nbPubIn:       int(rest.NbPubIn),
		nbConstraints: int(rest.NbConstraints),
	}, nil
}

// ReadR1CS parses a binary constraint-system file. Wire 0 is the constant
// wire; the declared outputs and public inputs occupy the wires right after
// it and are marked public.
func ReadR1CS(r io.Reader) (*constraint.R1CS, error) {
	sections, err := readSections(r, r1csMagic)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constraint.ErrMalformedCircuit, err)
	}
	hdrBody, ok := sections[1]
	if !ok {
		return nil, fmt.Errorf("%w: missing header section", constraint.ErrMalformedCircuit)
	}
	hdr, err := parseR1CSHeader(hdrBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constraint.ErrMalformedCircuit, err)
	}

	cs, err := constraint.NewR1CS(hdr.prime, hdr.nbWires)
	if err != nil {
		return nil, err
	}
	for w := 1; w <= hdr.nbPubOut+hdr.nbPubIn; w++ {
		if err := cs.MarkPublic(w); err != nil {
			return nil, err
		}
	}

	body, ok := sections[2]
	if !ok {
		return nil, fmt.Errorf("%w: missing constraints section", constraint.ErrMalformedCircuit)
	}
	br := bytes.NewReader(body)
	readLC := func() (constraint.LinearExpression, error) {
		var nbTerms uint32
		if err := binary.Read(br, binary.LittleEndian, &nbTerms); err != nil {
			return nil, err
		}
		if nbTerms > maxChunkLen {
			return nil, fmt.Errorf("implausible term count %d", nbTerms)
		}
		l := make(constraint.LinearExpression, nbTerms)
		coeff := make([]byte, hdr.fieldSize)
		for i := range l {
			var wire uint32
			if err := binary.Read(br, binary.LittleEndian, &wire); err != nil {
				return nil, err
			}
			if _, err := io.ReadFull(br, coeff); err != nil {
				return nil, err
			}
			l[i].Wire = int(wire)
			l[i].Coeff.Set(leBytesToBigInt(coeff))
		}
		return l, nil
	}
	for i := 0; i < hdr.nbConstraints; i++ {
		var c constraint.R1C
		if c.L, err = readLC(); err != nil {
			return nil, fmt.Errorf("%w: constraint %d: %s", constraint.ErrMalformedCircuit, i, err)
		}
		if c.R, err = readLC(); err != nil {
			return nil, fmt.Errorf("%w: constraint %d: %s", constraint.ErrMalformedCircuit, i, err)
		}
		if c.O, err = readLC(); err != nil {
			return nil, fmt.Errorf("%w: constraint %d: %s", constraint.ErrMalformedCircuit, i, err)
		}
		cs.AddConstraint(c)
	}

	if err := cs.Check(); err != nil {
		return nil, err
	}
	return cs, nil
}
