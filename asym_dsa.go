// asym_dsa.go: DSA signatures over caller-supplied digests.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"crypto/dsa" // #nosec G505 -- DSA is an offered algorithm
	"math/big"
)

type dsaKey struct {
	priv dsa.PrivateKey // X is nil for verify-only sessions
}

func newDSAKey(x *DSAXform) (*dsaKey, error) {
	if len(x.P) == 0 || len(x.Q) == 0 || len(x.G) == 0 {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "dsa session needs p, q and g")
	}
	k := &dsaKey{}
	k.priv.P, k.priv.Q, k.priv.G = bigFrom(x.P), bigFrom(x.Q), bigFrom(x.G)
	if len(x.Y) > 0 {
		k.priv.Y = bigFrom(x.Y)
	}
	if len(x.X) > 0 {
		k.priv.X = bigFrom(x.X)
		if k.priv.Y == nil {
			k.priv.Y = new(big.Int).Exp(k.priv.G, k.priv.X, k.priv.P)
		}
	}
	return k, nil
}

func (k *dsaKey) process(a *AsymOp) error {
	switch a.Op {
	case AsymOpSign:
		return k.sign(a)
	case AsymOpVerify:
		return k.verify(a)
	}
	return unsupportedAsymOp(AsymDSA, a.Op)
}

// sign signs Message, which is expected to already be a digest.
func (k *dsaKey) sign(a *AsymOp) error {
	if k.priv.X == nil {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "dsa session has no private key")
	}
	r, s, err := dsa.Sign(randReader, &k.priv, a.Message)
	if err != nil {
		return asymFailure("dsa sign", err)
	}
	size := (k.priv.Q.BitLen() + 7) / 8
	a.R, a.S = leftPad(r, size), leftPad(s, size)
	return nil
}

// verify checks (R, S) over Message with PublicKey, or the session key when
// the operation carries none.
func (k *dsaKey) verify(a *AsymOp) error {
	pub := k.priv.PublicKey
	if len(a.PublicKey) > 0 {
		pub.Y = bigFrom(a.PublicKey)
	}
	if pub.Y == nil {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "dsa verification needs a public key")
	}
	if !dsa.Verify(&pub, a.Message, bigFrom(a.R), bigFrom(a.S)) {
		return newError(ErrAuthFailed, ErrCodeAuthFailed, "dsa signature mismatch")
	}
	return nil
}

func (k *dsaKey) destroy() {
	if k.priv.X != nil {
		k.priv.X.SetInt64(0)
	}
}
