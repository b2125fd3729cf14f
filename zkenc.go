package zkenc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/zkenc/zkenc/aead"
	"github.com/zkenc/zkenc/bn254"
	"github.com/zkenc/zkenc/codec"
	"github.com/zkenc/zkenc/constraint"
	"github.com/zkenc/zkenc/witness"
)

// Key is the 32-byte symmetric key an Encap call produces and a matching
// Decap call recovers. It only ever feeds the symmetric layer; treat it as
// ephemeral.
type Key [aead.KeySize]byte

// System is a constraint system compiled for the curve its scalar field
// belongs to. Compiling is deterministic and read-only afterwards, so one
// System may serve concurrent Encap and Decap calls.
type System struct {
	cs     *constraint.R1CS
	engine *bn254.System
}

// Compile prepares cs for encapsulation.
func Compile(cs *constraint.R1CS) (*System, error) {
	switch cs.CurveID() {
	case ecc.BN254:
		engine, err := bn254.NewSystem(cs)
		if err != nil {
			return nil, err
		}
		return &System{cs: cs, engine: engine}, nil
	default:
		return nil, fmt.Errorf("%w: scalar field %s", ErrUnsupportedCurve, cs.ScalarField)
	}
}

// Encap derives a fresh key bound to the public assignment and returns the
// serialized encapsulation alongside it.
func (s *System) Encap(public *witness.Assignment, rng io.Reader) ([]byte, Key, error) {
	ct, key, err := s.engine.Encap(public, rng)
	if err != nil {
		return nil, Key{}, err
	}
	var buf bytes.Buffer
	if _, err := ct.WriteTo(&buf); err != nil {
		return nil, Key{}, err
	}
	return buf.Bytes(), Key(key), nil
}

// Decap recovers the key from a serialized encapsulation and a satisfying
// full assignment.
func (s *System) Decap(encapsulation []byte, full *witness.Assignment) (Key, error) {
	var ct bn254.Ciphertext
	if _, err := ct.ReadFrom(bytes.NewReader(encapsulation)); err != nil {
		return Key{}, err
	}
	key, err := s.engine.Decap(&ct, full)
	if err != nil {
		return Key{}, err
	}
	return Key(key), nil
}

// EncryptOption configures Encrypt.
type EncryptOption func(*encryptConfig)

type encryptConfig struct {
	publicInputs []byte
}

// WithEmbeddedInputs embeds the given public-input JSON document into the
// blob, making it self-describing for recipients who receive nothing out of
// band.
func WithEmbeddedInputs(jsonInputs []byte) EncryptOption {
	return func(c *encryptConfig) { c.publicInputs = jsonInputs }
}

// Encrypt seals message against the circuit and public assignment into one
// combined blob.
func (s *System) Encrypt(public *witness.Assignment, message []byte, rng io.Reader, opts ...EncryptOption) ([]byte, error) {
	var cfg encryptConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	encapsulation, key, err := s.Encap(public, rng)
	if err != nil {
		return nil, err
	}
	payload, err := aead.Encrypt(key, message, rng)
	key = Key{}
	if err != nil {
		return nil, err
	}
	return codec.Encode(encapsulation, cfg.publicInputs, payload)
}

// Decrypt opens a combined blob with a satisfying full assignment.
func (s *System) Decrypt(blob []byte, full *witness.Assignment) ([]byte, error) {
	c, err := codec.Decode(blob)
	if err != nil {
		return nil, err
	}
	key, err := s.Decap(c.Encapsulation, full)
	if err != nil {
		return nil, err
	}
	message, err := aead.Decrypt(key, c.Payload)
	key = Key{}
	return message, err
}

// Encap is the one-shot form of System.Encap for callers that use a circuit
// once.
func Encap(cs *constraint.R1CS, public *witness.Assignment, rng io.Reader) ([]byte, Key, error) {
	s, err := Compile(cs)
	if err != nil {
		return nil, Key{}, err
	}
	return s.Encap(public, rng)
}

// Decap is the one-shot form of System.Decap.
func Decap(cs *constraint.R1CS, encapsulation []byte, full *witness.Assignment) (Key, error) {
	s, err := Compile(cs)
	if err != nil {
		return Key{}, err
	}
	return s.Decap(encapsulation, full)
}

// Encrypt is the one-shot form of System.Encrypt.
func Encrypt(cs *constraint.R1CS, public *witness.Assignment, message []byte, rng io.Reader, opts ...EncryptOption) ([]byte, error) {
	s, err := Compile(cs)
	if err != nil {
		return nil, err
	}
	return s.Encrypt(public, message, rng, opts...)
}

// Decrypt is the one-shot form of System.Decrypt.
func Decrypt(cs *constraint.R1CS, blob []byte, full *witness.Assignment) ([]byte, error) {
	s, err := Compile(cs)
	if err != nil {
		return nil, err
	}
	return s.Decrypt(blob, full)
}
