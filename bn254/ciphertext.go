package bn254

import (
	"fmt"
	"io"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/zkenc/zkenc/codec"
)

// ErrMalformedCiphertext is wrapped by all deserialization and dimension
// failures. Shared with the framing layer so callers match one sentinel.
var ErrMalformedCiphertext = codec.ErrMalformedCiphertext

// Ciphertext is the key encapsulation for one circuit and one public
// assignment. Points are stored per private wire in ascending wire order;
// ZPowers commits to the powers of the evaluation point needed for the
// quotient term.
type Ciphertext struct {
	// G1
	Alpha   curve.G1Affine
	APub    curve.G1Affine   // public wires folded into the left input
	U       []curve.G1Affine // [u_i] per private wire
	K       []curve.G1Affine // [(beta*u_i + alpha*v_i + w_i)/delta] per private wire
	ZPowers []curve.G1Affine // [tau^j * Z(tau) / delta]

	// G2
	Beta  curve.G2Affine
	BPub  curve.G2Affine // public wires folded into the right input
	V     []curve.G2Affine
	Delta curve.G2Affine

	// KeyCheck lets Decap tell a wrong witness from a correct one without
	// revealing the key.
	KeyCheck [32]byte
}

// matches reports whether the ciphertext dimensions fit the system.
func (ct *Ciphertext) matches(s *System) error {
	if len(ct.U) != s.NbPrivate() || len(ct.K) != s.NbPrivate() || len(ct.V) != s.NbPrivate() {
		return fmt.Errorf("%w: private wire count mismatch", ErrMalformedCiphertext)
	}
	if len(ct.ZPowers) != s.nbZPowers() {
		return fmt.Errorf("%w: quotient commitment length mismatch", ErrMalformedCiphertext)
	}
	return nil
}

// WriteTo serializes the ciphertext in compressed form.
func (ct *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	enc := curve.NewEncoder(w)
	toEncode := []interface{}{
		&ct.Alpha,
		&ct.APub,
		ct.U,
		ct.K,
		ct.ZPowers,
		&ct.Beta,
		&ct.BPub,
		ct.V,
		&ct.Delta,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	n, err := w.Write(ct.KeyCheck[:])
	return enc.BytesWritten() + int64(n), err
}

// ReadFrom deserializes a ciphertext, running subgroup checks on every
// point.
func (ct *Ciphertext) ReadFrom(r io.Reader) (int64, error) {
	dec := curve.NewDecoder(r)
	toDecode := []interface{}{
		&ct.Alpha,
		&ct.APub,
		&ct.U,
		&ct.K,
		&ct.ZPowers,
		&ct.Beta,
		&ct.BPub,
		&ct.V,
		&ct.Delta,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), fmt.Errorf("%w: %s", ErrMalformedCiphertext, err)
		}
	}
	n, err := io.ReadFull(r, ct.KeyCheck[:])
	read := dec.BytesRead() + int64(n)
	if err != nil {
		return read, fmt.Errorf("%w: %s", ErrMalformedCiphertext, err)
	}
	return read, nil
}
