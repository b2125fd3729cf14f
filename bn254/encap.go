package bn254

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"time"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/zkenc/zkenc/logger"
	"github.com/zkenc/zkenc/witness"
	"golang.org/x/sync/errgroup"
)

// Encap derives a fresh 32-byte key bound to the circuit and the given
// public assignment, together with the ciphertext that lets a holder of a
// satisfying full assignment recover it. rng must deliver cryptographically
// secure entropy; crypto/rand.Reader in production.
func (s *System) Encap(public *witness.Assignment, rng io.Reader) (*Ciphertext, [32]byte, error) {
	log := logger.Logger().With().Str("curve", "bn254").Int("nbWires", s.nbWires).Logger()
	start := time.Now()

	var key [32]byte

	if public.NbWires() != s.nbWires {
		return nil, key, fmt.Errorf("%w: assignment spans %d wires, circuit has %d", witness.ErrMalformedInput, public.NbWires(), s.nbWires)
	}
	if !public.Covers(s.public) {
		return nil, key, fmt.Errorf("%w: public assignment is incomplete", witness.ErrMalformedInput)
	}
	for _, i := range s.private {
		if public.Has(i) {
			return nil, key, fmt.Errorf("%w: wire %d is private", witness.ErrMalformedInput, i)
		}
	}
	pubVals, err := s.frValues(public)
	if err != nil {
		return nil, key, err
	}

	// toxic waste, sampled fresh and discarded below
	var tau, alpha, beta, delta fr.Element
	for _, p := range []*fr.Element{&alpha, &beta} {
		if err := sampleFr(p, rng); err != nil {
			return nil, key, err
		}
	}
	// delta is inverted, tau must miss the evaluation domain
	var zTau fr.Element
	for {
		if err := sampleFr(&delta, rng); err != nil {
			return nil, key, err
		}
		if !delta.IsZero() {
			break
		}
	}
	for {
		if err := sampleFr(&tau, rng); err != nil {
			return nil, key, err
		}
		zTau.Exp(tau, big.NewInt(int64(s.domain.Cardinality)))
		var one fr.Element
		one.SetOne()
		zTau.Sub(&zTau, &one)
		if !zTau.IsZero() {
			break
		}
	}

	u, v, w := s.evalQAP(&tau)

	// fold the public wires
	var aPubScalar, bPubScalar, t fr.Element
	t.Mul(&alpha, &beta)
	var tmp fr.Element
	for i, ok := s.public.NextSet(0); ok; i, ok = s.public.NextSet(i + 1) {
		x := &pubVals[i]
		tmp.Mul(x, &u[i])
		aPubScalar.Add(&aPubScalar, &tmp)
		tmp.Mul(x, &v[i])
		bPubScalar.Add(&bPubScalar, &tmp)

		// beta*u_i + alpha*v_i + w_i, scaled by x_i
		tmp.Mul(&beta, &u[i])
		var t2 fr.Element
		t2.Mul(&alpha, &v[i])
		tmp.Add(&tmp, &t2).Add(&tmp, &w[i]).Mul(&tmp, x)
		t.Add(&t, &tmp)
	}

	// private wire scalars
	var deltaInv fr.Element
	deltaInv.Inverse(&delta)

	uPriv := make([]fr.Element, len(s.private))
	vPriv := make([]fr.Element, len(s.private))
	kPriv := make([]fr.Element, len(s.private))
	for j, i := range s.private {
		uPriv[j] = u[i]
		vPriv[j] = v[i]
		kPriv[j].Mul(&beta, &u[i])
		tmp.Mul(&alpha, &v[i])
		kPriv[j].Add(&kPriv[j], &tmp).Add(&kPriv[j], &w[i]).Mul(&kPriv[j], &deltaInv)
	}

	// tau^j * Z(tau) / delta
	zPow := make([]fr.Element, s.nbZPowers())
	if len(zPow) > 0 {
		zPow[0].Mul(&zTau, &deltaInv)
		for j := 1; j < len(zPow); j++ {
			zPow[j].Mul(&zPow[j-1], &tau)
		}
	}

	_, _, g1, g2 := curve.Generators()

	ct := &Ciphertext{
		U:       make([]curve.G1Affine, len(s.private)),
		K:       make([]curve.G1Affine, len(s.private)),
		V:       make([]curve.G2Affine, len(s.private)),
		ZPowers: make([]curve.G1Affine, len(zPow)),
	}

	var g errgroup.Group
	if len(s.private) > 0 {
		g.Go(func() error {
			copy(ct.U, curve.BatchScalarMultiplicationG1(&g1, uPriv))
			return nil
		})
		g.Go(func() error {
			copy(ct.K, curve.BatchScalarMultiplicationG1(&g1, kPriv))
			return nil
		})
		g.Go(func() error {
			copy(ct.V, curve.BatchScalarMultiplicationG2(&g2, vPriv))
			return nil
		})
	}
	if len(zPow) > 0 {
		g.Go(func() error {
			copy(ct.ZPowers, curve.BatchScalarMultiplicationG1(&g1, zPow))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, key, err
	}

	var bi big.Int
	ct.Alpha.ScalarMultiplicationBase(alpha.BigInt(&bi))
	ct.APub.ScalarMultiplicationBase(aPubScalar.BigInt(&bi))
	ct.Beta.ScalarMultiplicationBase(beta.BigInt(&bi))
	ct.BPub.ScalarMultiplicationBase(bPubScalar.BigInt(&bi))
	ct.Delta.ScalarMultiplicationBase(delta.BigInt(&bi))

	var tG1 curve.G1Affine
	tG1.ScalarMultiplicationBase(t.BigInt(&bi))
	T, err := curve.Pair([]curve.G1Affine{tG1}, []curve.G2Affine{g2})
	if err != nil {
		return nil, key, err
	}

	key = deriveKey(&T)
	ct.KeyCheck = deriveCheck(&T)

	// scrub the secrets
	for _, p := range []*fr.Element{&tau, &alpha, &beta, &delta, &deltaInv, &t, &zTau} {
		p.SetZero()
	}

	log.Debug().Dur("took", time.Since(start)).Int("nbPrivate", len(s.private)).Msg("encap done")
	return ct, key, nil
}

// evalQAP evaluates every wire's three QAP polynomials at x, via the
// Lagrange basis over the evaluation domain.
func (s *System) evalQAP(x *fr.Element) (u, v, w []fr.Element) {
	l := s.lagrangeAt(x)

	u = make([]fr.Element, s.nbWires)
	v = make([]fr.Element, s.nbWires)
	w = make([]fr.Element, s.nbWires)

	var t fr.Element
	accumulate := func(dst []fr.Element, rows [][]term) {
		for k := range rows {
			for _, tm := range rows[k] {
				t.Mul(&tm.Coeff, &l[k])
				dst[tm.WireID].Add(&dst[tm.WireID], &t)
			}
		}
	}
	accumulate(u, s.a)
	accumulate(v, s.b)
	accumulate(w, s.c)
	return
}

// lagrangeAt returns the Lagrange basis of the evaluation domain evaluated
// at x. Assumes Z(x) != 0, i.e. x outside the domain.
//
// L_k(x) = Z(x)/n * w^k / (x - w^k)
func (s *System) lagrangeAt(x *fr.Element) []fr.Element {
	n := int(s.domain.Cardinality)

	var zx, one fr.Element
	one.SetOne()
	zx.Exp(*x, big.NewInt(int64(n)))
	zx.Sub(&zx, &one)
	zx.Mul(&zx, &s.domain.CardinalityInv)

	// denominators x - w^k, inverted in one batch
	dens := make([]fr.Element, n)
	var wk fr.Element
	wk.SetOne()
	for k := 0; k < n; k++ {
		dens[k].Sub(x, &wk)
		wk.Mul(&wk, &s.domain.Generator)
	}
	dens = fr.BatchInvert(dens)

	l := make([]fr.Element, n)
	wk.SetOne()
	for k := 0; k < n; k++ {
		l[k].Mul(&zx, &wk).Mul(&l[k], &dens[k])
		wk.Mul(&wk, &s.domain.Generator)
	}
	return l
}

func sampleFr(p *fr.Element, rng io.Reader) error {
	bi, err := rand.Int(rng, fr.Modulus())
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRngFailure, err)
	}
	p.SetBigInt(bi)
	return nil
}
