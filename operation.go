// operation.go: Crypto operations submitted to the engine.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

// OpType distinguishes symmetric from asymmetric operations.
type OpType uint8

const (
	OpSymmetric OpType = iota
	OpAsymmetric
)

// SessionType tells whether an operation references a prebuilt session or
// carries its transform chain inline.
type SessionType uint8

const (
	WithSession SessionType = iota
	Sessionless
)

// DataRegion is a byte range over the logical (concatenated) buffer.
type DataRegion struct {
	Offset int
	Length int
}

// SymOp carries the buffers and regions of a symmetric operation.
//
// Dst may be nil or equal to Src for in-place processing. Digest, when set,
// receives a generated digest or tag and supplies the expected one when
// verifying; when nil the digest lives in the buffer right after the
// authenticated region (destination when generating, source when verifying).
// AAD is the additional data of an AEAD operation; for AES-CCM the real AAD
// starts 18 bytes into it.
type SymOp struct {
	Src    *Segment
	Dst    *Segment
	Cipher DataRegion
	Auth   DataRegion
	AEAD   DataRegion
	AAD    []byte
	Digest []byte
}

// Operation is one unit of work. The engine fills Status; everything else
// belongs to the caller. Private is the operation's private area holding the
// IV at the session's IV offset.
type Operation struct {
	Type        OpType
	SessionType SessionType
	Status      Status

	Session *Session
	Xform   *Xform
	Sym     *SymOp
	Private []byte

	AsymSession *AsymSession
	Asym        *AsymOp
}

// NewSymOp returns a symmetric operation bound to sess.
func NewSymOp(sess *Session, sym *SymOp, private []byte) *Operation {
	return &Operation{
		Type:        OpSymmetric,
		SessionType: WithSession,
		Session:     sess,
		Sym:         sym,
		Private:     private,
	}
}

// NewSessionlessOp returns a symmetric operation carrying its transform chain.
func NewSessionlessOp(x *Xform, sym *SymOp, private []byte) *Operation {
	return &Operation{
		Type:        OpSymmetric,
		SessionType: Sessionless,
		Xform:       x,
		Sym:         sym,
		Private:     private,
	}
}

// NewAsymOp returns an asymmetric operation bound to sess.
func NewAsymOp(sess *AsymSession, asym *AsymOp) *Operation {
	return &Operation{
		Type:        OpAsymmetric,
		SessionType: WithSession,
		AsymSession: sess,
		Asym:        asym,
	}
}
