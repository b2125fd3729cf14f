package witness_test

import (
	"math/big"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/require"
	"github.com/zkenc/zkenc/witness"
)

func TestAssignment(t *testing.T) {
	assert := require.New(t)

	a := witness.New(4)
	assert.Equal(4, a.NbWires())
	assert.False(a.Has(2))
	assert.Nil(a.Get(2))

	assert.NoError(a.Set(2, big.NewInt(42)))
	assert.True(a.Has(2))
	assert.Equal("42", a.Get(2).String())

	assert.ErrorIs(a.Set(4, big.NewInt(1)), witness.ErrMalformedInput)
	assert.ErrorIs(a.Set(-1, big.NewInt(1)), witness.ErrMalformedInput)

	pub := bitset.New(4)
	pub.Set(0)
	pub.Set(2)
	assert.False(a.Covers(pub))
	assert.NoError(a.Set(0, big.NewInt(1)))
	assert.True(a.Covers(pub))
	assert.False(a.IsComplete())
}

func TestAssignmentFull(t *testing.T) {
	assert := require.New(t)

	vals := []big.Int{*big.NewInt(1), *big.NewInt(30), *big.NewInt(70)}
	a := witness.NewFull(vals)
	assert.True(a.IsComplete())

	// backing storage is a copy
	vals[1].SetInt64(99)
	assert.Equal("30", a.Get(1).String())

	q := big.NewInt(64)
	a.Reduce(q)
	assert.Equal("6", a.Get(2).String())
}
