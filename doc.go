// Package zkenc implements witness encryption for R1CS-satisfiability
// statements: a message is encrypted against an arithmetic circuit and an
// assignment of its public wires, and can be decrypted by anyone who can
// produce a full wire assignment satisfying every constraint. The circuit
// itself plays the role of the public key; no trusted setup or key exchange
// is involved.
//
// zkenc supports the following curves:
//   - BN254
package zkenc

import (
	"github.com/blang/semver/v4"
	"github.com/consensys/gnark-crypto/ecc"
)

var Version = semver.MustParse("0.1.0")

// Curves returns the curves supported by zkenc
func Curves() []ecc.ID {
	return []ecc.ID{
		ecc.BN254,
	}
}
