package constraint

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/zkenc/zkenc/internal/ioutils"
	"github.com/zkenc/zkenc/logger"
)

// header is the cbor-encoded prefix of a serialized constraint system.
type header struct {
	Version       string
	ScalarField   string
	NbWires       int
	NbConstraints int
	Public        []byte
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo serializes the constraint system. The format is a length-prefixed
// cbor header followed by the constraint data: term counts and wire indices
// as integer-compressed streams, coefficients as fixed-width big-endian
// scalars.
func (cs *R1CS) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	pub, err := cs.Public.MarshalBinary()
	if err != nil {
		return cw.n, err
	}
	hdr, err := cbor.Marshal(header{
		Version:       cs.Version,
		ScalarField:   cs.ScalarField,
		NbWires:       cs.NbWires,
		NbConstraints: len(cs.Constraints),
		Public:        pub,
	})
	if err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, uint64(len(hdr))); err != nil {
		return cw.n, err
	}
	if _, err := cw.Write(hdr); err != nil {
		return cw.n, err
	}

	// flatten the three linear expressions of every constraint
	var lens, wires []uint32
	var nbTerms int
	for i := range cs.Constraints {
		c := &cs.Constraints[i]
		for _, l := range []LinearExpression{c.L, c.R, c.O} {
			lens = append(lens, uint32(len(l)))
			nbTerms += len(l)
			for j := range l {
				wires = append(wires, uint32(l[j].Wire))
			}
		}
	}
	if err := ioutils.CompressAndWriteUints32(cw, lens); err != nil {
		return cw.n, err
	}
	if err := ioutils.CompressAndWriteUints32(cw, wires); err != nil {
		return cw.n, err
	}

	coeffSize := (cs.field().BitLen() + 7) / 8
	coeffs := make([]byte, nbTerms*coeffSize)
	k := 0
	for i := range cs.Constraints {
		c := &cs.Constraints[i]
		for _, l := range []LinearExpression{c.L, c.R, c.O} {
			for j := range l {
				l[j].Coeff.FillBytes(coeffs[k*coeffSize : (k+1)*coeffSize])
				k++
			}
		}
	}
	if _, err := cw.Write(coeffs); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadFrom deserializes a constraint system written by WriteTo and validates
// its structure.
func (cs *R1CS) ReadFrom(r io.Reader) (int64, error) {
	var read int64

	var hdrLen uint64
	if err := binary.Read(r, binary.LittleEndian, &hdrLen); err != nil {
		return read, err
	}
	read += 8
	hdrBytes := make([]byte, hdrLen)
	if _, err := io.ReadFull(r, hdrBytes); err != nil {
		return read, err
	}
	read += int64(hdrLen)
	var hdr header
	if err := cbor.Unmarshal(hdrBytes, &hdr); err != nil {
		return read, fmt.Errorf("%w: %s", ErrMalformedCircuit, err)
	}

	if err := checkArtifactVersion(hdr.Version); err != nil {
		return read, fmt.Errorf("%w: %s", ErrMalformedCircuit, err)
	}

	q, ok := new(big.Int).SetString(hdr.ScalarField, 16)
	if !ok {
		return read, fmt.Errorf("%w: unparseable scalar field", ErrMalformedCircuit)
	}

	cs.Version = hdr.Version
	cs.ScalarField = hdr.ScalarField
	cs.NbWires = hdr.NbWires
	cs.q = q
	cs.Public = bitset.New(uint(hdr.NbWires))
	if err := cs.Public.UnmarshalBinary(hdr.Public); err != nil {
		return read, fmt.Errorf("%w: %s", ErrMalformedCircuit, err)
	}

	n, lens, err := ioutils.ReadAndDecompressUints32(r)
	read += n
	if err != nil {
		return read, err
	}
	if len(lens) != 3*hdr.NbConstraints {
		return read, fmt.Errorf("%w: inconsistent constraint data", ErrMalformedCircuit)
	}
	n, wires, err := ioutils.ReadAndDecompressUints32(r)
	read += n
	if err != nil {
		return read, err
	}

	var nbTerms int
	for _, l := range lens {
		nbTerms += int(l)
	}
	if len(wires) != nbTerms {
		return read, fmt.Errorf("%w: inconsistent term data", ErrMalformedCircuit)
	}

	coeffSize := (q.BitLen() + 7) / 8
	coeffs := make([]byte, nbTerms*coeffSize)
	if _, err := io.ReadFull(r, coeffs); err != nil {
		return read, err
	}
	read += int64(len(coeffs))

	cs.Constraints = make([]R1C, hdr.NbConstraints)
	k := 0
	nextLC := func(nb uint32) LinearExpression {
		l := make(LinearExpression, nb)
		for j := range l {
			l[j].Wire = int(wires[k])
			l[j].Coeff.SetBytes(coeffs[k*coeffSize : (k+1)*coeffSize])
			k++
		}
		return l
	}
	for i := range cs.Constraints {
		cs.Constraints[i].L = nextLC(lens[3*i])
		cs.Constraints[i].R = nextLC(lens[3*i+1])
		cs.Constraints[i].O = nextLC(lens[3*i+2])
	}

	return read, cs.Check()
}

func checkArtifactVersion(v string) error {
	binaryVersion := semver.MustParse(Version)
	objectVersion, err := semver.Parse(v)
	if err != nil {
		return fmt.Errorf("when parsing artifact version: %w", err)
	}
	if binaryVersion.Compare(objectVersion) != 0 {
		log := logger.Logger()
		log.Warn().Str("binary", binaryVersion.String()).Str("object", objectVersion.String()).Msg("zkenc version (binary) mismatch with constraint system. there are no guarantees on compatibility")
	}
	return nil
}
