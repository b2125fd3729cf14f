package bn254

import (
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/zkenc/zkenc/debug"
	"github.com/zkenc/zkenc/internal/parallel"
	"github.com/zkenc/zkenc/logger"
	"github.com/zkenc/zkenc/witness"
)

// Decap recovers the encapsulated key from a full wire assignment. It
// returns ErrInvalidWitness when the assignment does not satisfy the
// circuit; the key itself leaks nothing about which constraint failed.
func (s *System) Decap(ct *Ciphertext, full *witness.Assignment) ([32]byte, error) {
	log := logger.Logger().With().Str("curve", "bn254").Int("nbWires", s.nbWires).Logger()
	start := time.Now()

	var key [32]byte

	if err := ct.matches(s); err != nil {
		return key, err
	}
	if !full.IsComplete() {
		return key, fmt.Errorf("%w: assignment is incomplete", witness.ErrMalformedInput)
	}
	vals, err := s.frValues(full)
	if err != nil {
		return key, err
	}

	// constraint evaluations over the domain, zero padded
	n := int(s.domain.Cardinality)
	a := make([]fr.Element, n)
	b := make([]fr.Element, n)
	c := make([]fr.Element, n)
	evalRows := func(dst []fr.Element, rows [][]term) {
		parallel.Execute(len(rows), func(start, end int) {
			var t fr.Element
			for k := start; k < end; k++ {
				for _, tm := range rows[k] {
					t.Mul(&tm.Coeff, &vals[tm.WireID])
					dst[k].Add(&dst[k], &t)
				}
			}
		})
	}
	evalRows(a, s.a)
	evalRows(b, s.b)
	evalRows(c, s.c)

	h := computeH(a, b, c, s.domain)
	debug.Assert(len(h) == n)
	h = h[:s.nbZPowers()]

	privVals := make([]fr.Element, len(s.private))
	for j, i := range s.private {
		privVals[j] = vals[i]
	}

	// left input: alpha + public folding + private u terms
	var accG1 curve.G1Jac
	var msmG1 curve.G1Affine
	accG1.FromAffine(&ct.Alpha)
	accG1.AddMixed(&ct.APub)
	if len(privVals) > 0 {
		if _, err := msmG1.MultiExp(ct.U, privVals, ecc.MultiExpConfig{}); err != nil {
			return key, fmt.Errorf("%w: %s", ErrPairingCheckFailed, err)
		}
		accG1.AddMixed(&msmG1)
	}
	var left curve.G1Affine
	left.FromJacobian(&accG1)

	// right input: beta + public folding + private v terms
	var accG2 curve.G2Jac
	var msmG2 curve.G2Affine
	accG2.FromAffine(&ct.Beta)
	accG2.AddMixed(&ct.BPub)
	if len(privVals) > 0 {
		if _, err := msmG2.MultiExp(ct.V, privVals, ecc.MultiExpConfig{}); err != nil {
			return key, fmt.Errorf("%w: %s", ErrPairingCheckFailed, err)
		}
		accG2.AddMixed(&msmG2)
	}
	var right curve.G2Affine
	right.FromJacobian(&accG2)

	// quotient side: private k terms plus the h commitment
	var accC curve.G1Jac
	if len(privVals) > 0 {
		if _, err := msmG1.MultiExp(ct.K, privVals, ecc.MultiExpConfig{}); err != nil {
			return key, fmt.Errorf("%w: %s", ErrPairingCheckFailed, err)
		}
		accC.AddMixed(&msmG1)
	}
	if len(h) > 0 {
		if _, err := msmG1.MultiExp(ct.ZPowers, h, ecc.MultiExpConfig{}); err != nil {
			return key, fmt.Errorf("%w: %s", ErrPairingCheckFailed, err)
		}
		accC.AddMixed(&msmG1)
	}
	var negC curve.G1Affine
	negC.FromJacobian(&accC)
	negC.Neg(&negC)

	T, err := curve.Pair(
		[]curve.G1Affine{left, negC},
		[]curve.G2Affine{right, ct.Delta},
	)
	if err != nil {
		return key, fmt.Errorf("%w: %s", ErrPairingCheckFailed, err)
	}

	check := deriveCheck(&T)
	if subtle.ConstantTimeCompare(check[:], ct.KeyCheck[:]) != 1 {
		return key, ErrInvalidWitness
	}

	log.Debug().Dur("took", time.Since(start)).Msg("decap done")
	return deriveKey(&T), nil
}

// computeH returns the coefficients of (a*b - c) / (x^n - 1), where a, b, c
// interpolate the given evaluations over the domain. The division is exact
// on satisfying assignments; on others the returned slice is some unrelated
// vector, which is what makes the final check fail.
func computeH(a, b, c []fr.Element, domain *fft.Domain) []fr.Element {
	n := len(a)

	// evaluations -> coefficients
	domain.FFTInverse(a, fft.DIF)
	domain.FFTInverse(b, fft.DIF)
	domain.FFTInverse(c, fft.DIF)

	// coefficients -> evaluations on the coset
	domain.FFT(a, fft.DIT, fft.OnCoset())
	domain.FFT(b, fft.DIT, fft.OnCoset())
	domain.FFT(c, fft.DIT, fft.OnCoset())

	// 1/Z on the coset: Z(g*w^k) = g^n - 1 for every k
	var den, one fr.Element
	one.SetOne()
	den.Exp(domain.FrMultiplicativeGen, big.NewInt(int64(n)))
	den.Sub(&den, &one).Inverse(&den)

	parallel.Execute(n, func(start, end int) {
		for i := start; i < end; i++ {
			a[i].Mul(&a[i], &b[i]).
				Sub(&a[i], &c[i]).
				Mul(&a[i], &den)
		}
	})

	// back to coefficient form
	domain.FFTInverse(a, fft.DIF, fft.OnCoset())
	fft.BitReverse(a)

	return a
}
