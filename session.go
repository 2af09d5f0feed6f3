// session.go: Transforms, symmetric sessions and their lifecycle.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"fmt"
	"time"
)

// IVParams locates the IV inside an operation's private area.
type IVParams struct {
	Offset int
	Length int
}

// CipherXform describes a cipher step.
type CipherXform struct {
	Algorithm CipherAlgorithm
	Op        CipherOp
	Key       []byte
	IV        IVParams
}

// AuthXform describes a digest or MAC step. DigestLength may be shorter than
// the algorithm's digest to request truncation; zero means the full digest.
// IV is only used by AES-GMAC.
type AuthXform struct {
	Algorithm    AuthAlgorithm
	Op           AuthOp
	Key          []byte
	DigestLength int
	IV           IVParams
}

// AEADXform describes an authenticated-encryption step.
type AEADXform struct {
	Algorithm    AEADAlgorithm
	Op           AEADOp
	Key          []byte
	IV           IVParams
	DigestLength int
	AADLength    int
}

// XformType tags the step carried by an Xform.
type XformType uint8

const (
	XformCipher XformType = iota + 1
	XformAuth
	XformAEAD
)

// Xform is one step of a transform chain. Exactly the member matching Type
// is read; Next links the following step.
type Xform struct {
	Type   XformType
	Cipher *CipherXform
	Auth   *AuthXform
	AEAD   *AEADXform
	Next   *Xform
}

// CipherStep, AuthStep and AEADStep build single-step transforms.
func CipherStep(x CipherXform) *Xform { return &Xform{Type: XformCipher, Cipher: &x} }

func AuthStep(x AuthXform) *Xform { return &Xform{Type: XformAuth, Auth: &x} }

func AEADStep(x AEADXform) *Xform { return &Xform{Type: XformAEAD, AEAD: &x} }

// Chain links the transforms in order and returns the head.
func Chain(steps ...*Xform) *Xform {
	for i := 0; i+1 < len(steps); i++ {
		steps[i].Next = steps[i+1]
	}
	if len(steps) == 0 {
		return nil
	}
	return steps[0]
}

// ChainOrder is the execution plan of a session.
type ChainOrder uint8

const (
	ChainNotSupported ChainOrder = iota
	ChainAuthOnly
	ChainCipherOnly
	ChainCipherAuth
	ChainAuthCipher
	ChainCombined
	ChainCipherBPI
)

var chainNames = [...]string{
	ChainNotSupported: "not_supported",
	ChainAuthOnly:     "auth_only",
	ChainCipherOnly:   "cipher_only",
	ChainCipherAuth:   "cipher_auth",
	ChainAuthCipher:   "auth_cipher",
	ChainCombined:     "combined",
	ChainCipherBPI:    "cipher_bpi",
}

func (c ChainOrder) String() string {
	if int(c) < len(chainNames) {
		return chainNames[c]
	}
	return fmt.Sprintf("chain(%d)", uint8(c))
}

// cipherState holds the cipher leg of a session.
type cipherState struct {
	prim    *CipherPrimitive
	encrypt bool
	key     []byte
}

// authState holds the auth leg. For AEAD sessions only op is meaningful:
// decryption verifies.
type authState struct {
	prim      *AuthPrimitive
	op        AuthOp
	digestLen int
	key       []byte
}

type aeadState struct {
	prim    *AEADPrimitive
	encrypt bool
	key     []byte
	ivLen   int
	tagLen  int
	aadLen  int
	gmac    bool
}

// Session is a precomputed symmetric execution context. It is safe to share
// between lanes: each lane works on its own clone of the contexts once the
// session was built for more than one lane.
type Session struct {
	chain  ChainOrder
	cipher cipherState
	auth   authState
	aead   aeadState
	iv     IVParams

	primary laneContext
	lanes   []laneContext
	cloner  contextCloner

	createdAt time.Time
}

// ChainOrder returns the execution plan chosen when the session was built.
func (s *Session) ChainOrder() ChainOrder { return s.chain }

// LaneCount returns the number of per-lane context slots (0 when the primary
// contexts are used directly).
func (s *Session) LaneCount() int { return len(s.lanes) }

// CreatedAt returns the build timestamp.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Destroy wipes the session keys and releases every context.
func (s *Session) Destroy() {
	s.reset()
}

// reset returns the session to its zero state, wiping keys and buffered
// context data. Arena slots go through it before they are reused.
func (s *Session) reset() {
	Zeroize(s.cipher.key)
	Zeroize(s.auth.key)
	Zeroize(s.aead.key)
	s.primary.release()
	for i := range s.lanes {
		s.lanes[i].release()
	}
	*s = Session{}
}

// ivFrom returns the session IV out of an operation's private area.
func (s *Session) ivFrom(op *Operation) ([]byte, error) {
	end := s.iv.Offset + s.iv.Length
	if s.iv.Offset < 0 || end > len(op.Private) {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument,
			"iv [%d,%d) outside of the operation private area (%d bytes)", s.iv.Offset, end, len(op.Private))
	}
	return op.Private[s.iv.Offset:end], nil
}
