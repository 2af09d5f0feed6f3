// asym.go: Asymmetric operations: transforms, operation parameters and dispatch.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"fmt"
	"math/big"
)

// AsymXformType selects the public-key family of an asymmetric session.
type AsymXformType uint8

const (
	AsymRSA AsymXformType = iota + 1
	AsymDSA
	AsymDH
	AsymModExp
	AsymModInv
	AsymECFPM
	AsymSM2
	AsymEdDSA
)

var asymNames = map[AsymXformType]string{
	AsymRSA:    "rsa",
	AsymDSA:    "dsa",
	AsymDH:     "dh",
	AsymModExp: "modexp",
	AsymModInv: "modinv",
	AsymECFPM:  "ecfpm",
	AsymSM2:    "sm2",
	AsymEdDSA:  "eddsa",
}

func (t AsymXformType) String() string {
	if name, ok := asymNames[t]; ok {
		return name
	}
	return fmt.Sprintf("asym(%d)", uint8(t))
}

// Curve identifies an elliptic curve.
type Curve uint8

const (
	CurveP256 Curve = iota + 1
	CurveP384
	CurveP521
	CurveSM2
	CurveEd25519
	CurveEd448
)

// RSAPadding selects the RSA padding scheme.
type RSAPadding uint8

const (
	RSAPaddingPKCS1v15 RSAPadding = iota + 1
	RSAPaddingNone
)

// EdDSAInstance selects the EdDSA variant.
type EdDSAInstance uint8

const (
	EdDSAPure EdDSAInstance = iota
	EdDSAContext
	EdDSAPrehash
)

// AsymOpType is the requested asymmetric operation. ModExp, ModInv and EC
// fixed-point sessions have a single operation and leave it unset.
type AsymOpType uint8

const (
	AsymOpEncrypt AsymOpType = iota + 1
	AsymOpDecrypt
	AsymOpSign
	AsymOpVerify
	AsymOpPrivateKeyGenerate
	AsymOpPublicKeyGenerate
	AsymOpSharedSecretCompute
)

// Big-endian unsigned integers are used for every number below.

// RSAXform carries an RSA key. P and Q are needed for PKCS#1 v1.5 private
// operations; raw private operations work from D alone.
type RSAXform struct {
	N, E, D []byte
	P, Q    []byte
	Padding RSAPadding
}

// DSAXform carries DSA domain parameters and keys. Y may be omitted when
// every verification supplies its own public key.
type DSAXform struct {
	P, Q, G []byte
	X, Y    []byte
}

// DHXform carries a Diffie-Hellman group and an optional private key.
type DHXform struct {
	P, G       []byte
	PrivateKey []byte
}

// ModXform carries a modulus, and the exponent of a modular exponentiation.
type ModXform struct {
	Modulus  []byte
	Exponent []byte
}

// ECXform selects the curve of a fixed-point multiplication session.
type ECXform struct {
	Curve Curve
}

// SM2Xform carries an SM2 key pair. PublicKey is the uncompressed point and
// is derived from PrivateKey when omitted.
type SM2Xform struct {
	PrivateKey []byte
	PublicKey  []byte
}

// EdDSAXform carries an EdDSA key pair. PrivateKey is the seed.
type EdDSAXform struct {
	Curve      Curve
	PrivateKey []byte
	PublicKey  []byte
}

// AsymXform describes an asymmetric session; the member matching Type is read.
type AsymXform struct {
	Type   AsymXformType
	RSA    *RSAXform
	DSA    *DSAXform
	DH     *DHXform
	ModExp *ModXform
	ModInv *ModXform
	EC     *ECXform
	SM2    *SM2Xform
	EdDSA  *EdDSAXform
}

// AsymOp carries the inputs and receives the outputs of an asymmetric
// operation. Outputs are assigned as fresh slices.
type AsymOp struct {
	Op AsymOpType

	Message   []byte // plaintext, message to sign or expected verify result
	Cipher    []byte // ciphertext
	Signature []byte // RSA and EdDSA signatures
	R, S      []byte // DSA and SM2 signature components

	PrivateKey   []byte // DH private key, input or generated
	PublicKey    []byte // DSA verify key, DH peer key or generated public key
	SharedSecret []byte

	Base   []byte // modexp and modinv input
	Result []byte // modexp and modinv output

	Scalar     []byte // EC fixed-point multiplier
	X, Y       []byte // EC result; X holds the compressed point when Compressed is set
	Compressed bool

	UserID []byte // SM2 signer identity
	K      []byte // SM2 caller nonce, not supported

	Instance EdDSAInstance
	Context  []byte
}

// processAsym executes op against sess.
func processAsym(op *Operation, sess *AsymSession) error {
	if op.Asym == nil {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "asymmetric operation without parameters")
	}
	a := op.Asym
	switch sess.typ {
	case AsymModExp, AsymModInv, AsymECFPM:
		if a.Op != 0 {
			return unsupportedAsymOp(sess.typ, a.Op)
		}
	}
	switch sess.typ {
	case AsymRSA:
		return sess.rsa.process(a)
	case AsymDSA:
		return sess.dsa.process(a)
	case AsymDH:
		return sess.dh.process(a)
	case AsymModExp:
		return sess.mod.exp(a)
	case AsymModInv:
		return sess.mod.inverse(a)
	case AsymECFPM:
		return ecFixedPointMult(sess.curve, a)
	case AsymSM2:
		return sess.sm2.process(a)
	case AsymEdDSA:
		return sess.eddsa.process(a)
	}
	return newError(ErrInvalidSession, ErrCodeInvalidSession, "asymmetric session of unknown type %s", sess.typ)
}

func unsupportedAsymOp(family AsymXformType, op AsymOpType) error {
	return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "%s does not support operation %d", family, op)
}

// leftPad returns b as a size byte big-endian number.
func leftPad(n *big.Int, size int) []byte {
	out := make([]byte, size)
	n.FillBytes(out)
	return out
}

func bigFrom(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
