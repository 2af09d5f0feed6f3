// asym_rsa.go: RSA encrypt, decrypt, sign and verify with PKCS#1 v1.5 or no padding.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"crypto"
	"crypto/rsa"
	"crypto/subtle"
	"math/big"
)

type rsaKey struct {
	pub     *rsa.PublicKey
	priv    *rsa.PrivateKey // nil without P and Q
	d       *big.Int        // nil for public-only sessions
	padding RSAPadding
}

func newRSAKey(x *RSAXform) (*rsaKey, error) {
	if len(x.N) == 0 || len(x.E) == 0 {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "rsa key needs a modulus and a public exponent")
	}
	switch x.Padding {
	case RSAPaddingPKCS1v15, RSAPaddingNone:
	default:
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "unsupported rsa padding %d", x.Padding)
	}
	e := bigFrom(x.E)
	if !e.IsInt64() || e.Int64() < 3 || e.Int64() > 1<<31-1 {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "unsupported rsa public exponent")
	}
	k := &rsaKey{
		pub:     &rsa.PublicKey{N: bigFrom(x.N), E: int(e.Int64())},
		padding: x.Padding,
	}
	if len(x.D) > 0 {
		k.d = bigFrom(x.D)
		if len(x.P) > 0 && len(x.Q) > 0 {
			priv := &rsa.PrivateKey{
				PublicKey: *k.pub,
				D:         k.d,
				Primes:    []*big.Int{bigFrom(x.P), bigFrom(x.Q)},
			}
			if err := priv.Validate(); err != nil {
				return nil, wrapError(ErrInvalidArgument, err, ErrCodeInvalidArgument, "invalid rsa private key")
			}
			priv.Precompute()
			k.priv = priv
		}
	}
	return k, nil
}

func (k *rsaKey) size() int { return k.pub.Size() }

func (k *rsaKey) process(a *AsymOp) error {
	switch a.Op {
	case AsymOpEncrypt:
		return k.encrypt(a)
	case AsymOpDecrypt:
		return k.decrypt(a)
	case AsymOpSign:
		return k.sign(a)
	case AsymOpVerify:
		return k.verify(a)
	}
	return unsupportedAsymOp(AsymRSA, a.Op)
}

// raw computes in^exp mod N after checking in < N.
func (k *rsaKey) raw(in []byte, exp *big.Int) ([]byte, error) {
	m := bigFrom(in)
	if m.Cmp(k.pub.N) >= 0 {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "rsa input not smaller than the modulus")
	}
	return leftPad(new(big.Int).Exp(m, exp, k.pub.N), k.size()), nil
}

func (k *rsaKey) publicExponent() *big.Int { return big.NewInt(int64(k.pub.E)) }

func (k *rsaKey) needPrivate(pkcs bool) error {
	if k.d == nil || pkcs && k.priv == nil {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "rsa session has no usable private key")
	}
	return nil
}

func (k *rsaKey) encrypt(a *AsymOp) error {
	var (
		out []byte
		err error
	)
	if k.padding == RSAPaddingNone {
		out, err = k.raw(a.Message, k.publicExponent())
	} else {
		out, err = rsa.EncryptPKCS1v15(randReader, k.pub, a.Message)
	}
	if err != nil {
		return asymFailure("rsa encrypt", err)
	}
	a.Cipher = out
	return nil
}

func (k *rsaKey) decrypt(a *AsymOp) error {
	if err := k.needPrivate(k.padding == RSAPaddingPKCS1v15); err != nil {
		return err
	}
	var (
		out []byte
		err error
	)
	if k.padding == RSAPaddingNone {
		out, err = k.raw(a.Cipher, k.d)
	} else {
		out, err = rsa.DecryptPKCS1v15(nil, k.priv, a.Cipher)
	}
	if err != nil {
		return asymFailure("rsa decrypt", err)
	}
	a.Message = out
	return nil
}

// sign applies the private key to the message itself: type 1 padding with
// PKCS#1 v1.5, the raw message otherwise. No digest is computed.
func (k *rsaKey) sign(a *AsymOp) error {
	if err := k.needPrivate(k.padding == RSAPaddingPKCS1v15); err != nil {
		return err
	}
	var (
		out []byte
		err error
	)
	if k.padding == RSAPaddingNone {
		out, err = k.raw(a.Message, k.d)
	} else {
		out, err = rsa.SignPKCS1v15(nil, k.priv, crypto.Hash(0), a.Message)
	}
	if err != nil {
		return asymFailure("rsa sign", err)
	}
	a.Signature = out
	return nil
}

// verify recovers the padded message from the signature and compares it with
// the expected message.
func (k *rsaKey) verify(a *AsymOp) error {
	if k.padding == RSAPaddingPKCS1v15 {
		if err := rsa.VerifyPKCS1v15(k.pub, crypto.Hash(0), a.Message, a.Signature); err != nil {
			return wrapError(ErrAuthFailed, err, ErrCodeAuthFailed, "rsa signature mismatch")
		}
		return nil
	}
	recovered, err := k.raw(a.Signature, k.publicExponent())
	if err != nil {
		return err
	}
	if len(a.Message) > len(recovered) {
		return newError(ErrAuthFailed, ErrCodeAuthFailed, "rsa signature mismatch")
	}
	expected := make([]byte, len(recovered))
	copy(expected[len(expected)-len(a.Message):], a.Message)
	if subtle.ConstantTimeCompare(recovered, expected) != 1 {
		return newError(ErrAuthFailed, ErrCodeAuthFailed, "rsa signature mismatch")
	}
	return nil
}

func (k *rsaKey) destroy() {
	if k.d != nil {
		k.d.SetInt64(0)
	}
	if k.priv != nil {
		k.priv.D.SetInt64(0)
		for _, p := range k.priv.Primes {
			p.SetInt64(0)
		}
	}
}

// asymFailure turns a primitive error into a processing error, keeping
// argument errors as they are.
func asymFailure(what string, err error) error {
	if isArgumentError(err) {
		return err
	}
	return wrapError(ErrProcessing, err, ErrCodeProcessing, what+" failed")
}
