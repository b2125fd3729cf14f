package zkenc

import (
	"errors"

	"github.com/zkenc/zkenc/aead"
	"github.com/zkenc/zkenc/bn254"
	"github.com/zkenc/zkenc/codec"
	"github.com/zkenc/zkenc/constraint"
	"github.com/zkenc/zkenc/witness"
)

// The error taxonomy, re-exported from the packages that raise each kind so
// callers can match everything with errors.Is against this package alone.
var (
	// ErrUnsupportedCurve: the constraint system's scalar field does not
	// belong to a supported pairing-friendly curve.
	ErrUnsupportedCurve = errors.New("unsupported curve")

	// ErrMalformedCircuit: structurally invalid constraint system.
	ErrMalformedCircuit = constraint.ErrMalformedCircuit

	// ErrMalformedInput: assignment or named-input document that does not
	// fit the circuit.
	ErrMalformedInput = witness.ErrMalformedInput

	// ErrInvalidWitness: the full assignment does not satisfy the circuit.
	ErrInvalidWitness = bn254.ErrInvalidWitness

	// ErrPairingCheckFailed: ciphertext group elements rejected by the
	// pairing engine.
	ErrPairingCheckFailed = bn254.ErrPairingCheckFailed

	// ErrRngFailure: the caller-supplied entropy source failed.
	ErrRngFailure = bn254.ErrRngFailure

	// ErrMalformedCiphertext: framing or deserialization violation, raised
	// before any cryptographic work.
	ErrMalformedCiphertext = codec.ErrMalformedCiphertext

	// ErrAuthentication: symmetric payload failed to open.
	ErrAuthentication = aead.ErrAuthentication
)
