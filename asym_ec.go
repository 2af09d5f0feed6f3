// asym_ec.go: Elliptic-curve families: fixed-point multiplication, SM2 and EdDSA.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/sha512"
	"math/big"

	"filippo.io/nistec"
	"github.com/cloudflare/circl/sign/ed448"
	"github.com/emmansun/gmsm/sm2"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// nistPoint is the subset of the nistec point API used for base-point
// multiplication.
type nistPoint[T any] interface {
	Bytes() []byte
	BytesCompressed() []byte
	ScalarBaseMult([]byte) (T, error)
}

func baseMult[P nistPoint[P]](newPoint func() P, scalar []byte) (P, error) {
	return newPoint().ScalarBaseMult(scalar)
}

// coordSize is the field element length of the curves supporting
// fixed-point multiplication, or zero.
func coordSize(c Curve) int {
	switch c {
	case CurveP256:
		return 32
	case CurveP384:
		return 48
	case CurveP521:
		return 66
	}
	return 0
}

// ecFixedPointMult sets (X, Y) = Scalar * G. With Compressed set, X receives
// the SEC1 compressed point and Y is left empty.
func ecFixedPointMult(c Curve, a *AsymOp) error {
	size := coordSize(c)
	if size == 0 {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "curve %d has no fixed-point multiplication", c)
	}
	if len(a.Scalar) == 0 || len(a.Scalar) > size {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "scalar must be 1 to %d bytes", size)
	}
	k := make([]byte, size)
	copy(k[size-len(a.Scalar):], a.Scalar)
	defer Zeroize(k)

	var (
		uncompressed, compressed []byte
		err                      error
	)
	switch c {
	case CurveP256:
		var p *nistec.P256Point
		if p, err = baseMult(nistec.NewP256Point, k); err == nil {
			uncompressed, compressed = p.Bytes(), p.BytesCompressed()
		}
	case CurveP384:
		var p *nistec.P384Point
		if p, err = baseMult(nistec.NewP384Point, k); err == nil {
			uncompressed, compressed = p.Bytes(), p.BytesCompressed()
		}
	case CurveP521:
		var p *nistec.P521Point
		if p, err = baseMult(nistec.NewP521Point, k); err == nil {
			uncompressed, compressed = p.Bytes(), p.BytesCompressed()
		}
	}
	if err != nil {
		return asymFailure("fixed-point multiplication", err)
	}
	// The point at infinity encodes as a single zero byte.
	if len(uncompressed) != 1+2*size {
		return newError(ErrProcessing, ErrCodeProcessing, "scalar multiple is the point at infinity")
	}
	if a.Compressed {
		a.X, a.Y = compressed, nil
		return nil
	}
	a.X = uncompressed[1 : 1+size]
	a.Y = uncompressed[1+size:]
	return nil
}

type sm2Key struct {
	priv *sm2.PrivateKey // nil for public-only sessions
	pub  *ecdsa.PublicKey
}

func newSM2Key(x *SM2Xform) (*sm2Key, error) {
	k := &sm2Key{}
	if len(x.PrivateKey) > 0 {
		priv, err := sm2.NewPrivateKey(x.PrivateKey)
		if err != nil {
			return nil, wrapError(ErrInvalidArgument, err, ErrCodeInvalidArgument, "invalid sm2 private key")
		}
		k.priv = priv
		k.pub = &priv.PublicKey
	}
	if len(x.PublicKey) > 0 {
		pub, err := sm2.NewPublicKey(x.PublicKey)
		if err != nil {
			return nil, wrapError(ErrInvalidArgument, err, ErrCodeInvalidArgument, "invalid sm2 public key")
		}
		k.pub = pub
	}
	if k.pub == nil {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "sm2 session needs a key")
	}
	return k, nil
}

func (k *sm2Key) process(a *AsymOp) error {
	switch a.Op {
	case AsymOpEncrypt:
		out, err := sm2.Encrypt(randReader, k.pub, a.Message, nil)
		if err != nil {
			return asymFailure("sm2 encrypt", err)
		}
		a.Cipher = out
		return nil
	case AsymOpDecrypt:
		if err := k.needPrivate(); err != nil {
			return err
		}
		out, err := sm2.Decrypt(k.priv, a.Cipher)
		if err != nil {
			return asymFailure("sm2 decrypt", err)
		}
		a.Message = out
		return nil
	case AsymOpSign:
		return k.sign(a)
	case AsymOpVerify:
		return k.verify(a)
	}
	return unsupportedAsymOp(AsymSM2, a.Op)
}

func (k *sm2Key) needPrivate() error {
	if k.priv == nil {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "sm2 session has no private key")
	}
	return nil
}

// sign produces (R, S) over Message bound to UserID. A caller nonce is refused.
func (k *sm2Key) sign(a *AsymOp) error {
	if len(a.K) > 0 {
		return newError(ErrProcessing, ErrCodeProcessing, "sm2 signing with a caller nonce is not available")
	}
	if err := k.needPrivate(); err != nil {
		return err
	}
	der, err := k.priv.Sign(randReader, a.Message, sm2.NewSM2SignerOption(true, a.UserID))
	if err != nil {
		return asymFailure("sm2 sign", err)
	}
	r, s, err := parseRS(der)
	if err != nil {
		return err
	}
	a.R, a.S = leftPad(r, 32), leftPad(s, 32)
	return nil
}

func (k *sm2Key) verify(a *AsymOp) error {
	der, err := marshalRS(bigFrom(a.R), bigFrom(a.S))
	if err != nil {
		return err
	}
	if !sm2.VerifyASN1WithSM2(k.pub, a.UserID, a.Message, der) {
		return newError(ErrAuthFailed, ErrCodeAuthFailed, "sm2 signature mismatch")
	}
	return nil
}

func (k *sm2Key) destroy() {
	if k.priv != nil {
		k.priv.D.SetInt64(0)
	}
}

// marshalRS encodes a signature as an ASN.1 SEQUENCE of two INTEGERs.
func marshalRS(r, s *big.Int) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	der, err := b.Bytes()
	if err != nil {
		return nil, wrapError(ErrInvalidArgument, err, ErrCodeInvalidArgument, "cannot encode signature")
	}
	return der, nil
}

func parseRS(der []byte) (*big.Int, *big.Int, error) {
	var (
		r, s  = new(big.Int), new(big.Int)
		inner cryptobyte.String
	)
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(r) || !inner.ReadASN1Integer(s) || !inner.Empty() {
		return nil, nil, newError(ErrProcessing, ErrCodeProcessing, "malformed signature encoding")
	}
	return r, s, nil
}

type eddsaKey struct {
	curve   Curve
	priv25  ed25519.PrivateKey
	pub25   ed25519.PublicKey
	priv448 ed448.PrivateKey
	pub448  ed448.PublicKey
}

func newEdDSAKey(x *EdDSAXform) (*eddsaKey, error) {
	k := &eddsaKey{curve: x.Curve}
	switch x.Curve {
	case CurveEd25519:
		if len(x.PrivateKey) > 0 {
			if len(x.PrivateKey) != ed25519.SeedSize {
				return nil, newError(ErrInvalidKeyLength, ErrCodeInvalidKeyLen, "ed25519 seed must be %d bytes", ed25519.SeedSize)
			}
			k.priv25 = ed25519.NewKeyFromSeed(x.PrivateKey)
			k.pub25 = k.priv25.Public().(ed25519.PublicKey)
		}
		if len(x.PublicKey) > 0 {
			if len(x.PublicKey) != ed25519.PublicKeySize {
				return nil, newError(ErrInvalidKeyLength, ErrCodeInvalidKeyLen, "ed25519 public key must be %d bytes", ed25519.PublicKeySize)
			}
			k.pub25 = ed25519.PublicKey(append([]byte(nil), x.PublicKey...))
		}
		if k.pub25 == nil {
			return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "eddsa session needs a key")
		}
	case CurveEd448:
		if len(x.PrivateKey) > 0 {
			if len(x.PrivateKey) != ed448.SeedSize {
				return nil, newError(ErrInvalidKeyLength, ErrCodeInvalidKeyLen, "ed448 seed must be %d bytes", ed448.SeedSize)
			}
			k.priv448 = ed448.NewKeyFromSeed(x.PrivateKey)
			k.pub448 = k.priv448.Public().(ed448.PublicKey)
		}
		if len(x.PublicKey) > 0 {
			if len(x.PublicKey) != ed448.PublicKeySize {
				return nil, newError(ErrInvalidKeyLength, ErrCodeInvalidKeyLen, "ed448 public key must be %d bytes", ed448.PublicKeySize)
			}
			k.pub448 = ed448.PublicKey(append([]byte(nil), x.PublicKey...))
		}
		if k.pub448 == nil {
			return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "eddsa session needs a key")
		}
	default:
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "curve %d is not an eddsa curve", x.Curve)
	}
	return k, nil
}

func (k *eddsaKey) process(a *AsymOp) error {
	if len(a.Context) > 255 {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "eddsa context longer than 255 bytes")
	}
	switch a.Op {
	case AsymOpSign:
		if k.priv25 == nil && k.priv448 == nil {
			return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "eddsa session has no private key")
		}
		if k.curve == CurveEd448 {
			return k.sign448(a)
		}
		return k.sign25519(a)
	case AsymOpVerify:
		if k.curve == CurveEd448 {
			return k.verify448(a)
		}
		return k.verify25519(a)
	}
	return unsupportedAsymOp(AsymEdDSA, a.Op)
}

// options25519 returns the Ed25519 variant and the message to hand to it.
// Ed25519ph signs the SHA-512 digest of Message.
func options25519(a *AsymOp) (*ed25519.Options, []byte, error) {
	switch a.Instance {
	case EdDSAPure:
		return &ed25519.Options{}, a.Message, nil
	case EdDSAContext:
		return &ed25519.Options{Context: string(a.Context)}, a.Message, nil
	case EdDSAPrehash:
		sum := sha512.Sum512(a.Message)
		return &ed25519.Options{Hash: crypto.SHA512, Context: string(a.Context)}, sum[:], nil
	}
	return nil, nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "unknown eddsa instance %d", a.Instance)
}

func (k *eddsaKey) sign25519(a *AsymOp) error {
	opts, msg, err := options25519(a)
	if err != nil {
		return err
	}
	sig, err := k.priv25.Sign(nil, msg, opts)
	if err != nil {
		return asymFailure("ed25519 sign", err)
	}
	a.Signature = sig
	return nil
}

func (k *eddsaKey) verify25519(a *AsymOp) error {
	opts, msg, err := options25519(a)
	if err != nil {
		return err
	}
	if err := ed25519.VerifyWithOptions(k.pub25, msg, a.Signature, opts); err != nil {
		return wrapError(ErrAuthFailed, err, ErrCodeAuthFailed, "ed25519 signature mismatch")
	}
	return nil
}

// Ed448 always carries a context string; the pure instance uses the empty one.
func context448(a *AsymOp) string {
	if a.Instance == EdDSAPure {
		return ""
	}
	return string(a.Context)
}

func (k *eddsaKey) sign448(a *AsymOp) error {
	switch a.Instance {
	case EdDSAPure, EdDSAContext:
		a.Signature = ed448.Sign(k.priv448, a.Message, context448(a))
	case EdDSAPrehash:
		a.Signature = ed448.SignPh(k.priv448, a.Message, context448(a))
	default:
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "unknown eddsa instance %d", a.Instance)
	}
	return nil
}

func (k *eddsaKey) verify448(a *AsymOp) error {
	var ok bool
	switch a.Instance {
	case EdDSAPure, EdDSAContext:
		ok = ed448.Verify(k.pub448, a.Message, a.Signature, context448(a))
	case EdDSAPrehash:
		ok = ed448.VerifyPh(k.pub448, a.Message, a.Signature, context448(a))
	default:
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "unknown eddsa instance %d", a.Instance)
	}
	if !ok {
		return newError(ErrAuthFailed, ErrCodeAuthFailed, "ed448 signature mismatch")
	}
	return nil
}

func (k *eddsaKey) destroy() {
	Zeroize(k.priv25)
	Zeroize(k.priv448)
}
