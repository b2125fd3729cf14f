package zkenc_test

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/stretchr/testify/require"
	"github.com/zkenc/zkenc"
	"github.com/zkenc/zkenc/constraint"
	"github.com/zkenc/zkenc/witness"
)

// splitCircuit enforces (w1 + w2) * 1 == 100 over wires
// [one, w1(priv), w2(priv)]... the 100 sits on the constant wire, so the
// statement is "I know two numbers summing to 100".
func splitCircuit(t *testing.T) *constraint.R1CS {
	t.Helper()
	cs, err := constraint.NewR1CS(ecc.BN254.ScalarField(), 3)
	require.NoError(t, err)
	one := *big.NewInt(1)
	cs.AddConstraint(constraint.R1C{
		L: constraint.LinearExpression{{Wire: 1, Coeff: one}, {Wire: 2, Coeff: one}},
		R: constraint.LinearExpression{{Wire: constraint.WireOne, Coeff: one}},
		O: constraint.LinearExpression{{Wire: constraint.WireOne, Coeff: *big.NewInt(100)}},
	})
	require.NoError(t, cs.Check())
	return cs
}

func onlyPublic(t *testing.T, cs *constraint.R1CS) *witness.Assignment {
	t.Helper()
	a := witness.New(cs.NbWires)
	require.NoError(t, a.Set(constraint.WireOne, big.NewInt(1)))
	return a
}

func TestEncryptDecrypt(t *testing.T) {
	assert := require.New(t)
	cs := splitCircuit(t)

	message := []byte("hello")
	blob, err := zkenc.Encrypt(cs, onlyPublic(t, cs), message, rand.Reader)
	assert.NoError(err)

	good := witness.NewFull([]big.Int{*big.NewInt(1), *big.NewInt(30), *big.NewInt(70)})
	recovered, err := zkenc.Decrypt(cs, blob, good)
	assert.NoError(err)
	assert.Equal(message, recovered)

	bad := witness.NewFull([]big.Int{*big.NewInt(1), *big.NewInt(30), *big.NewInt(50)})
	_, err = zkenc.Decrypt(cs, blob, bad)
	assert.ErrorIs(err, zkenc.ErrInvalidWitness)
}

func TestEncapDecap(t *testing.T) {
	assert := require.New(t)
	cs := splitCircuit(t)

	s, err := zkenc.Compile(cs)
	assert.NoError(err)

	encapsulation, key, err := s.Encap(onlyPublic(t, cs), rand.Reader)
	assert.NoError(err)

	good := witness.NewFull([]big.Int{*big.NewInt(1), *big.NewInt(1), *big.NewInt(99)})
	recovered, err := s.Decap(encapsulation, good)
	assert.NoError(err)
	assert.Equal(key, recovered)

	// corrupting the encapsulation fails before any key is derived
	mutated := append([]byte(nil), encapsulation...)
	mutated[0] ^= 0xff
	_, err = s.Decap(mutated, good)
	assert.ErrorIs(err, zkenc.ErrMalformedCiphertext)
}

func TestEmbeddedInputs(t *testing.T) {
	assert := require.New(t)
	cs := splitCircuit(t)

	inputs := []byte(`{"total":"100"}`)
	blob, err := zkenc.Encrypt(cs, onlyPublic(t, cs), []byte("msg"), rand.Reader, zkenc.WithEmbeddedInputs(inputs))
	assert.NoError(err)
	assert.Equal(byte(1), blob[0])

	good := witness.NewFull([]big.Int{*big.NewInt(1), *big.NewInt(60), *big.NewInt(40)})
	recovered, err := zkenc.Decrypt(cs, blob, good)
	assert.NoError(err)
	assert.Equal([]byte("msg"), recovered)
}

func TestUnsupportedCurve(t *testing.T) {
	assert := require.New(t)
	cs, err := constraint.NewR1CS(big.NewInt(65537), 2)
	assert.NoError(err)
	_, err = zkenc.Compile(cs)
	assert.ErrorIs(err, zkenc.ErrUnsupportedCurve)
}
