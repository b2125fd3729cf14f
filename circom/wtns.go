package circom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/zkenc/zkenc/witness"
)

// ReadWtns parses a binary witness file into a full wire assignment and the
// prime it was generated over. Callers match the prime against their
// constraint system before decapsulating.
func ReadWtns(r io.Reader) (*witness.Assignment, *big.Int, error) {
	sections, err := readSections(r, wtnsMagic)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", witness.ErrMalformedInput, err)
	}
	hdrBody, ok := sections[1]
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing header section", witness.ErrMalformedInput)
	}

	hr := bytes.NewReader(hdrBody)
	var fieldSize uint32
	if err := binary.Read(hr, binary.LittleEndian, &fieldSize); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", witness.ErrMalformedInput, err)
	}
	if fieldSize == 0 || fieldSize > 64 {
		return nil, nil, fmt.Errorf("%w: implausible field size %d", witness.ErrMalformedInput, fieldSize)
	}
	primeBytes := make([]byte, fieldSize)
	if _, err := io.ReadFull(hr, primeBytes); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", witness.ErrMalformedInput, err)
	}
	prime := leBytesToBigInt(primeBytes)
	var nbValues uint32
	if err := binary.Read(hr, binary.LittleEndian, &nbValues); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", witness.ErrMalformedInput, err)
	}
	if nbValues == 0 || nbValues > maxChunkLen {
		return nil, nil, fmt.Errorf("%w: implausible value count %d", witness.ErrMalformedInput, nbValues)
	}

	body, ok := sections[2]
	if !ok {
		return nil, nil, fmt.Errorf("%w: missing values section", witness.ErrMalformedInput)
	}
	if len(body) != int(nbValues)*int(fieldSize) {
		return nil, nil, fmt.Errorf("%w: values section is %d bytes, want %d", witness.ErrMalformedInput, len(body), int(nbValues)*int(fieldSize))
	}

	values := make([]big.Int, nbValues)
	for i := range values {
		v := leBytesToBigInt(body[i*int(fieldSize) : (i+1)*int(fieldSize)])
		if v.Cmp(prime) >= 0 {
			return nil, nil, fmt.Errorf("%w: value %d out of field range", witness.ErrMalformedInput, i)
		}
		values[i].Set(v)
	}
	return witness.NewFull(values), prime, nil
}
