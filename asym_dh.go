// asym_dh.go: Finite-field Diffie-Hellman key generation and agreement.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"crypto/rand"
	"math/big"
)

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
)

type dhGroup struct {
	p, g *big.Int
	priv *big.Int // optional session private key
}

func newDHGroup(x *DHXform) (*dhGroup, error) {
	if len(x.P) == 0 || len(x.G) == 0 {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "dh session needs p and g")
	}
	g := &dhGroup{p: bigFrom(x.P), g: bigFrom(x.G)}
	if g.p.Cmp(big.NewInt(5)) < 0 {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "dh modulus too small")
	}
	if len(x.PrivateKey) > 0 {
		g.priv = bigFrom(x.PrivateKey)
	}
	return g, nil
}

func (g *dhGroup) size() int { return (g.p.BitLen() + 7) / 8 }

func (g *dhGroup) process(a *AsymOp) error {
	switch a.Op {
	case AsymOpPrivateKeyGenerate:
		return g.generatePrivate(a)
	case AsymOpPublicKeyGenerate:
		return g.generatePublic(a)
	case AsymOpSharedSecretCompute:
		return g.sharedSecret(a)
	}
	return unsupportedAsymOp(AsymDH, a.Op)
}

// privateKey picks the operation's private key over the session's.
func (g *dhGroup) privateKey(a *AsymOp) (*big.Int, error) {
	if len(a.PrivateKey) > 0 {
		return bigFrom(a.PrivateKey), nil
	}
	if g.priv != nil {
		return g.priv, nil
	}
	return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "dh operation has no private key")
}

// generatePrivate draws a private key uniformly from [2, p-2].
func (g *dhGroup) generatePrivate(a *AsymOp) error {
	limit := new(big.Int).Sub(g.p, big.NewInt(3))
	x, err := rand.Int(randReader, limit)
	if err != nil {
		return asymFailure("dh private key generation", err)
	}
	x.Add(x, bigTwo)
	a.PrivateKey = leftPad(x, g.size())
	return nil
}

func (g *dhGroup) generatePublic(a *AsymOp) error {
	x, err := g.privateKey(a)
	if err != nil {
		return err
	}
	a.PublicKey = leftPad(new(big.Int).Exp(g.g, x, g.p), g.size())
	return nil
}

// sharedSecret raises the peer key in PublicKey to the private key after
// checking 1 < peer < p-1.
func (g *dhGroup) sharedSecret(a *AsymOp) error {
	x, err := g.privateKey(a)
	if err != nil {
		return err
	}
	peer := bigFrom(a.PublicKey)
	pMinus1 := new(big.Int).Sub(g.p, bigOne)
	if peer.Cmp(bigOne) <= 0 || peer.Cmp(pMinus1) >= 0 {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "dh peer public key out of range")
	}
	a.SharedSecret = leftPad(new(big.Int).Exp(peer, x, g.p), g.size())
	return nil
}

func (g *dhGroup) destroy() {
	if g.priv != nil {
		g.priv.SetInt64(0)
	}
}
