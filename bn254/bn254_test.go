package bn254

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"github.com/zkenc/zkenc/constraint"
	"github.com/zkenc/zkenc/witness"
)

// factorCircuit enforces w1 * w2 == product over wires
// [one, product(pub), w1(priv), w2(priv)].
func factorCircuit(t *testing.T) *System {
	t.Helper()
	cs, err := constraint.NewR1CS(ecc.BN254.ScalarField(), 4)
	require.NoError(t, err)
	require.NoError(t, cs.MarkPublic(1))
	cs.AddConstraint(constraint.R1C{
		L: constraint.LinearExpression{{Wire: 2, Coeff: *big.NewInt(1)}},
		R: constraint.LinearExpression{{Wire: 3, Coeff: *big.NewInt(1)}},
		O: constraint.LinearExpression{{Wire: 1, Coeff: *big.NewInt(1)}},
	})
	s, err := NewSystem(cs)
	require.NoError(t, err)
	return s
}

// sumCircuit enforces (w1 + w2) * 1 == total with a second constraint
// w1 * w1 == w3, exercising a multi-constraint domain. Wires:
// [one, total(pub), w1, w2, w3].
func sumCircuit(t *testing.T) *System {
	t.Helper()
	cs, err := constraint.NewR1CS(ecc.BN254.ScalarField(), 5)
	require.NoError(t, err)
	require.NoError(t, cs.MarkPublic(1))
	one := *big.NewInt(1)
	cs.AddConstraint(constraint.R1C{
		L: constraint.LinearExpression{{Wire: 2, Coeff: one}, {Wire: 3, Coeff: one}},
		R: constraint.LinearExpression{{Wire: constraint.WireOne, Coeff: one}},
		O: constraint.LinearExpression{{Wire: 1, Coeff: one}},
	})
	cs.AddConstraint(constraint.R1C{
		L: constraint.LinearExpression{{Wire: 2, Coeff: one}},
		R: constraint.LinearExpression{{Wire: 2, Coeff: one}},
		O: constraint.LinearExpression{{Wire: 4, Coeff: one}},
	})
	s, err := NewSystem(cs)
	require.NoError(t, err)
	return s
}

func publicAssignment(t *testing.T, s *System, product int64) *witness.Assignment {
	t.Helper()
	a := witness.New(s.NbWires())
	require.NoError(t, a.Set(0, big.NewInt(1)))
	require.NoError(t, a.Set(1, big.NewInt(product)))
	return a
}

func TestEncapDecapRoundTrip(t *testing.T) {
	assert := require.New(t)
	s := factorCircuit(t)

	pub := publicAssignment(t, s, 15)
	ct, key, err := s.Encap(pub, rand.Reader)
	assert.NoError(err)

	full := witness.NewFull([]big.Int{
		*big.NewInt(1), *big.NewInt(15), *big.NewInt(3), *big.NewInt(5),
	})
	recovered, err := s.Decap(ct, full)
	assert.NoError(err)
	assert.Equal(key, recovered)

	// the other factorization opens the same ciphertext
	full2 := witness.NewFull([]big.Int{
		*big.NewInt(1), *big.NewInt(15), *big.NewInt(5), *big.NewInt(3),
	})
	recovered2, err := s.Decap(ct, full2)
	assert.NoError(err)
	assert.Equal(key, recovered2)
}

func TestDecapRejectsBadWitness(t *testing.T) {
	assert := require.New(t)
	s := factorCircuit(t)

	pub := publicAssignment(t, s, 15)
	ct, key, err := s.Encap(pub, rand.Reader)
	assert.NoError(err)

	full := witness.NewFull([]big.Int{
		*big.NewInt(1), *big.NewInt(15), *big.NewInt(3), *big.NewInt(4),
	})
	recovered, err := s.Decap(ct, full)
	assert.ErrorIs(err, ErrInvalidWitness)
	assert.NotEqual(key, recovered)
}

func TestDecapRejectsWrongPublicInput(t *testing.T) {
	assert := require.New(t)
	s := factorCircuit(t)

	// encapsulated for product 15, witness satisfies product 21
	ct, _, err := s.Encap(publicAssignment(t, s, 15), rand.Reader)
	assert.NoError(err)

	full := witness.NewFull([]big.Int{
		*big.NewInt(1), *big.NewInt(15), *big.NewInt(3), *big.NewInt(7),
	})
	_, err = s.Decap(ct, full)
	assert.ErrorIs(err, ErrInvalidWitness)

	// a witness that is consistent for product 21 must not open a
	// ciphertext bound to product 15, whatever its own public wire says
	full = witness.NewFull([]big.Int{
		*big.NewInt(1), *big.NewInt(21), *big.NewInt(3), *big.NewInt(7),
	})
	_, err = s.Decap(ct, full)
	assert.ErrorIs(err, ErrInvalidWitness)
}

func TestEncapFreshness(t *testing.T) {
	assert := require.New(t)
	s := factorCircuit(t)
	pub := publicAssignment(t, s, 15)

	_, k1, err := s.Encap(pub, rand.Reader)
	assert.NoError(err)
	_, k2, err := s.Encap(pub, rand.Reader)
	assert.NoError(err)
	assert.NotEqual(k1, k2)
}

func TestEncapInputValidation(t *testing.T) {
	assert := require.New(t)
	s := factorCircuit(t)

	// missing public wire
	a := witness.New(s.NbWires())
	assert.NoError(a.Set(0, big.NewInt(1)))
	_, _, err := s.Encap(a, rand.Reader)
	assert.ErrorIs(err, witness.ErrMalformedInput)

	// constant wire not 1
	a = witness.New(s.NbWires())
	assert.NoError(a.Set(0, big.NewInt(2)))
	assert.NoError(a.Set(1, big.NewInt(15)))
	_, _, err = s.Encap(a, rand.Reader)
	assert.ErrorIs(err, witness.ErrMalformedInput)

	// value assigned to a private wire
	a = publicAssignment(t, s, 15)
	assert.NoError(a.Set(2, big.NewInt(3)))
	_, _, err = s.Encap(a, rand.Reader)
	assert.ErrorIs(err, witness.ErrMalformedInput)

	// wrong wire count
	_, _, err = s.Encap(witness.New(2), rand.Reader)
	assert.ErrorIs(err, witness.ErrMalformedInput)
}

func TestDecapInputValidation(t *testing.T) {
	assert := require.New(t)
	s := factorCircuit(t)
	ct, _, err := s.Encap(publicAssignment(t, s, 15), rand.Reader)
	assert.NoError(err)

	// incomplete witness
	a := witness.New(s.NbWires())
	_, err = s.Decap(ct, a)
	assert.ErrorIs(err, witness.ErrMalformedInput)

	// dimension mismatch
	other := sumCircuit(t)
	_, err = other.Decap(ct, witness.NewFull(make([]big.Int, other.NbWires())))
	assert.ErrorIs(err, ErrMalformedCiphertext)
}

func TestMultiConstraintCircuit(t *testing.T) {
	assert := require.New(t)
	s := sumCircuit(t)

	pub := witness.New(s.NbWires())
	assert.NoError(pub.Set(0, big.NewInt(1)))
	assert.NoError(pub.Set(1, big.NewInt(10)))

	ct, key, err := s.Encap(pub, rand.Reader)
	assert.NoError(err)

	full := witness.NewFull([]big.Int{
		*big.NewInt(1), *big.NewInt(10), *big.NewInt(4), *big.NewInt(6), *big.NewInt(16),
	})
	recovered, err := s.Decap(ct, full)
	assert.NoError(err)
	assert.Equal(key, recovered)

	// breaking only the second constraint must still be caught
	bad := witness.NewFull([]big.Int{
		*big.NewInt(1), *big.NewInt(10), *big.NewInt(4), *big.NewInt(6), *big.NewInt(17),
	})
	_, err = s.Decap(ct, bad)
	assert.ErrorIs(err, ErrInvalidWitness)
}

func TestCiphertextSerialization(t *testing.T) {
	assert := require.New(t)
	s := sumCircuit(t)

	pub := witness.New(s.NbWires())
	assert.NoError(pub.Set(0, big.NewInt(1)))
	assert.NoError(pub.Set(1, big.NewInt(10)))
	ct, key, err := s.Encap(pub, rand.Reader)
	assert.NoError(err)

	var buf bytes.Buffer
	written, err := ct.WriteTo(&buf)
	assert.NoError(err)
	assert.Equal(written, int64(buf.Len()))

	var back Ciphertext
	read, err := back.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.NoError(err)
	assert.Equal(written, read)

	full := witness.NewFull([]big.Int{
		*big.NewInt(1), *big.NewInt(10), *big.NewInt(4), *big.NewInt(6), *big.NewInt(16),
	})
	recovered, err := s.Decap(&back, full)
	assert.NoError(err)
	assert.Equal(key, recovered)

	// truncation errors out instead of panicking
	for i := 0; i < buf.Len(); i += 97 {
		var partial Ciphertext
		_, err := partial.ReadFrom(bytes.NewReader(buf.Bytes()[:i]))
		assert.ErrorIs(err, ErrMalformedCiphertext)
	}
}

func TestDecapSoundnessProperty(t *testing.T) {
	s := factorCircuit(t)
	ct, key, err := s.Encap(publicAssignment(t, s, 15), rand.Reader)
	require.NoError(t, err)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)
	properties.Property("only factorizations of 15 recover the key", prop.ForAll(
		func(x, y int64) bool {
			full := witness.NewFull([]big.Int{
				*big.NewInt(1), *big.NewInt(15), *big.NewInt(x), *big.NewInt(y),
			})
			recovered, err := s.Decap(ct, full)
			if x*y == 15 {
				return err == nil && recovered == key
			}
			return err == ErrInvalidWitness
		},
		gen.Int64Range(0, 40),
		gen.Int64Range(0, 40),
	))
	properties.TestingRun(t)
}
