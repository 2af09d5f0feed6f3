// asym_mod.go: Modular exponentiation and modular inverse.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import "math/big"

type modParams struct {
	m, e *big.Int
}

func newModParams(x *ModXform, needExponent bool) (*modParams, error) {
	if x == nil || len(x.Modulus) == 0 {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "modular session needs a modulus")
	}
	p := &modParams{m: bigFrom(x.Modulus)}
	if p.m.Sign() <= 0 {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "modulus must be positive")
	}
	if needExponent {
		if len(x.Exponent) == 0 {
			return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "modexp session needs an exponent")
		}
		p.e = bigFrom(x.Exponent)
	}
	return p, nil
}

func (p *modParams) size() int { return (p.m.BitLen() + 7) / 8 }

// exp sets Result = Base^e mod m.
func (p *modParams) exp(a *AsymOp) error {
	r := new(big.Int).Exp(bigFrom(a.Base), p.e, p.m)
	a.Result = leftPad(r, p.size())
	return nil
}

// inverse sets Result = Base^-1 mod m.
func (p *modParams) inverse(a *AsymOp) error {
	r := new(big.Int).ModInverse(bigFrom(a.Base), p.m)
	if r == nil {
		return newError(ErrProcessing, ErrCodeProcessing, "base has no inverse modulo m")
	}
	a.Result = leftPad(r, p.size())
	return nil
}
