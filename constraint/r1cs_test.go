package constraint_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/stretchr/testify/require"
	"github.com/zkenc/zkenc/constraint"
)

// buildToyCircuit returns the system enforcing (w1 + w2) * 1 == 100 over
// wires [one, pub, priv].
func buildToyCircuit(t *testing.T) *constraint.R1CS {
	t.Helper()
	cs, err := constraint.NewR1CS(ecc.BN254.ScalarField(), 3)
	require.NoError(t, err)
	require.NoError(t, cs.MarkPublic(1))
	cs.AddConstraint(constraint.R1C{
		L: constraint.LinearExpression{
			{Wire: 1, Coeff: *big.NewInt(1)},
			{Wire: 2, Coeff: *big.NewInt(1)},
		},
		R: constraint.LinearExpression{{Wire: constraint.WireOne, Coeff: *big.NewInt(1)}},
		O: constraint.LinearExpression{{Wire: constraint.WireOne, Coeff: *big.NewInt(100)}},
	})
	require.NoError(t, cs.Check())
	return cs
}

func TestR1CSCheck(t *testing.T) {
	assert := require.New(t)

	cs := buildToyCircuit(t)
	assert.Equal(2, cs.NbPublic()) // wire one counts as public
	assert.Equal(1, cs.GetNbConstraints())
	assert.Equal(ecc.BN254, cs.CurveID())

	// out of range wire index
	bad, err := constraint.NewR1CS(ecc.BN254.ScalarField(), 2)
	assert.NoError(err)
	bad.AddConstraint(constraint.R1C{
		L: constraint.LinearExpression{{Wire: 5, Coeff: *big.NewInt(1)}},
	})
	assert.ErrorIs(bad.Check(), constraint.ErrMalformedCircuit)

	// coefficient outside the field
	tooBig, err := constraint.NewR1CS(ecc.BN254.ScalarField(), 2)
	assert.NoError(err)
	c := new(big.Int).Add(ecc.BN254.ScalarField(), big.NewInt(1))
	tooBig.AddConstraint(constraint.R1C{
		L: constraint.LinearExpression{{Wire: 1, Coeff: *c}},
	})
	assert.ErrorIs(tooBig.Check(), constraint.ErrMalformedCircuit)

	// invalid construction parameters
	_, err = constraint.NewR1CS(nil, 2)
	assert.ErrorIs(err, constraint.ErrMalformedCircuit)
	_, err = constraint.NewR1CS(ecc.BN254.ScalarField(), 0)
	assert.ErrorIs(err, constraint.ErrMalformedCircuit)
	assert.ErrorIs(cs.MarkPublic(99), constraint.ErrMalformedCircuit)
}

func TestR1CSIsSatisfied(t *testing.T) {
	assert := require.New(t)
	cs := buildToyCircuit(t)

	good := []big.Int{*big.NewInt(1), *big.NewInt(30), *big.NewInt(70)}
	assert.NoError(cs.IsSatisfied(good))

	badW := []big.Int{*big.NewInt(1), *big.NewInt(30), *big.NewInt(50)}
	assert.Error(cs.IsSatisfied(badW))
}

func TestR1CSSerialization(t *testing.T) {
	assert := require.New(t)
	cs := buildToyCircuit(t)

	var buf bytes.Buffer
	written, err := cs.WriteTo(&buf)
	assert.NoError(err)
	assert.Equal(written, int64(buf.Len()))

	var reconstructed constraint.R1CS
	read, err := reconstructed.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.NoError(err)
	assert.Equal(written, read)

	assert.Equal(cs.NbWires, reconstructed.NbWires)
	assert.Equal(cs.ScalarField, reconstructed.ScalarField)
	assert.Equal(cs.GetNbConstraints(), reconstructed.GetNbConstraints())
	assert.True(cs.Public.Equal(reconstructed.Public))
	assert.Equal(cs.Constraints[0].L[1].Coeff.String(), reconstructed.Constraints[0].L[1].Coeff.String())

	// truncated stream must error, not panic
	for i := 0; i < buf.Len(); i += 7 {
		var partial constraint.R1CS
		_, err := partial.ReadFrom(bytes.NewReader(buf.Bytes()[:i]))
		assert.Error(err)
	}
}
