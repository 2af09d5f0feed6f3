// primitive_aead.go: AEAD context with streaming input and one-shot seal/open.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"crypto/cipher"
)

// aeadContext adapts a cipher.AEAD to the cipherContext cycle. Update only
// accumulates input; the whole message is sealed or opened at Final. The
// context is set up in two phases: IV and tag lengths first, then the key.
type aeadContext struct {
	prim    *AEADPrimitive
	encrypt bool
	ivLen   int
	tagLen  int

	aead cipher.AEAD
	iv   []byte
	aad  []byte
	in   []byte
	out  []byte
	tag  []byte
}

func newAEADContext(prim *AEADPrimitive, encrypt bool) *aeadContext {
	return &aeadContext{prim: prim, encrypt: encrypt}
}

// SetIVLength is the first setup phase.
func (c *aeadContext) SetIVLength(n int) error {
	if n <= 0 {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "%s: invalid iv length %d", c.prim.Name, n)
	}
	c.ivLen = n
	return nil
}

// SetTagLength is the first setup phase.
func (c *aeadContext) SetTagLength(n int) error {
	if !c.prim.validTag(n) {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "%s: invalid tag length %d", c.prim.Name, n)
	}
	c.tagLen = n
	return nil
}

// SetKey is the second setup phase; it requires the lengths to be set.
func (c *aeadContext) SetKey(key []byte) error {
	if c.ivLen == 0 || c.tagLen == 0 {
		return newError(ErrInvalidState, ErrCodeInvalidState, "%s: key supplied before iv and tag lengths", c.prim.Name)
	}
	aead, err := c.prim.newAEAD(key, c.ivLen, c.tagLen)
	if err != nil {
		return wrapError(ErrProcessing, err, ErrCodeProcessing, "failed to create "+c.prim.Name+" context")
	}
	c.aead = aead
	return nil
}

func (c *aeadContext) BlockSize() int { return 1 }

func (c *aeadContext) Init(iv []byte) error {
	if c.aead == nil {
		return newError(ErrInvalidState, ErrCodeInvalidState, "%s: context has no key", c.prim.Name)
	}
	if len(iv) < c.ivLen {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "%s: iv length %d, want %d", c.prim.Name, len(iv), c.ivLen)
	}
	c.iv = append(c.iv[:0], iv[:c.ivLen]...)
	c.aad = c.aad[:0]
	c.in = c.in[:0]
	c.tag = c.tag[:0]
	return nil
}

// SetAAD supplies the additional authenticated data for the current message.
func (c *aeadContext) SetAAD(aad []byte) {
	c.aad = append(c.aad[:0], aad...)
}

// SetTag supplies the expected tag before a decrypting Final.
func (c *aeadContext) SetTag(tag []byte) error {
	if len(tag) < c.tagLen {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "%s: tag length %d, want %d", c.prim.Name, len(tag), c.tagLen)
	}
	c.tag = append(c.tag[:0], tag[:c.tagLen]...)
	return nil
}

// Tag copies the tag produced by the last encrypting Final into dst.
func (c *aeadContext) Tag(dst []byte) error {
	if len(dst) < c.tagLen || len(c.tag) != c.tagLen {
		return newError(ErrProcessing, ErrCodeProcessing, "%s: tag unavailable", c.prim.Name)
	}
	copy(dst, c.tag)
	return nil
}

func (c *aeadContext) Update(dst, src []byte) (int, error) {
	c.in = append(c.in, src...)
	return 0, nil
}

func (c *aeadContext) Final(dst []byte) (int, error) {
	n := len(c.in)
	if len(dst) < n {
		return 0, newError(ErrProcessing, ErrCodeProcessing, "output buffer too small")
	}
	if c.encrypt {
		c.out = c.aead.Seal(c.out[:0], c.iv, c.in, c.aad)
		copy(dst, c.out[:n])
		c.tag = append(c.tag[:0], c.out[n:]...)
		return n, nil
	}
	if len(c.tag) != c.tagLen {
		return 0, newError(ErrInvalidState, ErrCodeInvalidState, "%s: no tag supplied for decryption", c.prim.Name)
	}
	c.in = append(c.in, c.tag...)
	plain, err := c.aead.Open(c.out[:0], c.iv, c.in, c.aad)
	if err != nil {
		return 0, wrapError(ErrAuthFailed, err, ErrCodeAuthFailed, c.prim.Name+": tag mismatch")
	}
	c.out = plain
	copy(dst, plain)
	return len(plain), nil
}

// reset wipes buffered message material.
func (c *aeadContext) reset() {
	clearBuffer(c.in[:cap(c.in)])
	clearBuffer(c.out[:cap(c.out)])
	c.iv, c.aad, c.in, c.out, c.tag = nil, nil, nil, nil, nil
	c.aead = nil
}
