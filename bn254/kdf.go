package bn254

import (
	"math/big"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"golang.org/x/crypto/blake2b"
)

const (
	kdfKeyTag   = "zkenc/bn254/key/v1"
	kdfCheckTag = "zkenc/bn254/check/v1"
)

// gtBytes returns the canonical big-endian encoding of a GT element:
// the twelve fp coefficients in lexicographic tower order, 32 bytes each.
func gtBytes(t *curve.GT) []byte {
	out := make([]byte, 0, 12*fp.Bytes)
	appendFp := func(e *fp.Element) {
		var bi big.Int
		e.BigInt(&bi)
		buf := make([]byte, fp.Bytes)
		bi.FillBytes(buf)
		out = append(out, buf...)
	}

	appendFp(&t.C0.B0.A0)
	appendFp(&t.C0.B0.A1)
	appendFp(&t.C0.B1.A0)
	appendFp(&t.C0.B1.A1)
	appendFp(&t.C0.B2.A0)
	appendFp(&t.C0.B2.A1)
	appendFp(&t.C1.B0.A0)
	appendFp(&t.C1.B0.A1)
	appendFp(&t.C1.B1.A0)
	appendFp(&t.C1.B1.A1)
	appendFp(&t.C1.B2.A0)
	appendFp(&t.C1.B2.A1)

	return out
}

func kdf(tag string, t *curve.GT) [32]byte {
	enc := gtBytes(t)
	msg := make([]byte, 0, len(tag)+len(enc))
	msg = append(msg, tag...)
	msg = append(msg, enc...)
	return blake2b.Sum256(msg)
}

// deriveKey maps the pairing output to the 32-byte shared key.
func deriveKey(t *curve.GT) [32]byte { return kdf(kdfKeyTag, t) }

// deriveCheck maps the pairing output to the ciphertext key-check tag.
// Independent of deriveKey so the tag reveals nothing about the key.
func deriveCheck(t *curve.GT) [32]byte { return kdf(kdfCheckTag, t) }
