// primitive.go: Streaming cipher contexts over Go block ciphers.
//
// The engine drives every cipher through the same Init/Update/Final cycle so
// that the segmented driver can feed data in arbitrary pieces. Block modes keep
// at most one partial block buffered between Update calls; no padding is ever
// applied, a partial block left at Final is an error.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"crypto/cipher"
)

// cipherContext is a streaming cipher context.
type cipherContext interface {
	// BlockSize is the granularity at which output is emitted (1 for stream modes).
	BlockSize() int
	// Init resets the context to its keyed state and loads the IV.
	Init(iv []byte) error
	// Update consumes src and writes the output that became available to dst.
	Update(dst, src []byte) (int, error)
	// Final flushes the context and writes any trailing output to dst.
	Final(dst []byte) (int, error)
}

// cipherDuplicator is implemented by contexts that can produce an independent
// copy of their keyed, pre-data state.
type cipherDuplicator interface {
	Dup() cipherContext
}

type cipherMode uint8

const (
	modeCBC cipherMode = iota + 1
	modeCTR
	modeECB
)

// blockCipherContext runs CBC, CTR or ECB over a cipher.Block.
type blockCipherContext struct {
	block   cipher.Block
	mode    cipherMode
	encrypt bool

	bm     cipher.BlockMode
	stream cipher.Stream
	buf    []byte
	nbuf   int
}

func newBlockCipherContext(block cipher.Block, mode cipherMode, encrypt bool) *blockCipherContext {
	return &blockCipherContext{
		block:   block,
		mode:    mode,
		encrypt: encrypt,
		buf:     make([]byte, block.BlockSize()),
	}
}

func (c *blockCipherContext) BlockSize() int {
	if c.mode == modeCTR {
		return 1
	}
	return c.block.BlockSize()
}

func (c *blockCipherContext) Init(iv []byte) error {
	bs := c.block.BlockSize()
	c.nbuf = 0
	switch c.mode {
	case modeECB:
		if c.encrypt {
			c.bm = ecbEncrypter{c.block}
		} else {
			c.bm = ecbDecrypter{c.block}
		}
		return nil
	case modeCBC, modeCTR:
		if len(iv) < bs {
			return newError(ErrInvalidArgument, ErrCodeInvalidArgument,
				"iv length %d shorter than block size %d", len(iv), bs)
		}
	}
	switch {
	case c.mode == modeCTR:
		c.stream = cipher.NewCTR(c.block, iv[:bs])
	case c.encrypt:
		c.bm = cipher.NewCBCEncrypter(c.block, iv[:bs])
	default:
		c.bm = cipher.NewCBCDecrypter(c.block, iv[:bs])
	}
	return nil
}

func (c *blockCipherContext) Update(dst, src []byte) (int, error) {
	if c.mode == modeCTR {
		if c.stream == nil {
			return 0, newError(ErrInvalidState, ErrCodeInvalidState, "cipher context not initialised")
		}
		if len(dst) < len(src) {
			return 0, newError(ErrProcessing, ErrCodeProcessing, "output buffer too small")
		}
		c.stream.XORKeyStream(dst[:len(src)], src)
		return len(src), nil
	}
	if c.bm == nil {
		return 0, newError(ErrInvalidState, ErrCodeInvalidState, "cipher context not initialised")
	}

	bs := len(c.buf)
	total := c.nbuf + len(src)
	if len(dst) < total/bs*bs {
		return 0, newError(ErrProcessing, ErrCodeProcessing, "output buffer too small")
	}

	n := 0
	if c.nbuf > 0 {
		need := bs - c.nbuf
		if len(src) < need {
			c.nbuf += copy(c.buf[c.nbuf:], src)
			return 0, nil
		}
		copy(c.buf[c.nbuf:], src[:need])
		c.bm.CryptBlocks(dst[:bs], c.buf)
		c.nbuf = 0
		n = bs
		src = src[need:]
	}
	full := len(src) / bs * bs
	if full > 0 {
		c.bm.CryptBlocks(dst[n:n+full], src[:full])
		n += full
	}
	c.nbuf = copy(c.buf, src[full:])
	return n, nil
}

func (c *blockCipherContext) Final(dst []byte) (int, error) {
	if c.nbuf != 0 {
		c.nbuf = 0
		return 0, newError(ErrProcessing, ErrCodeProcessing, "data length is not a multiple of the block size")
	}
	return 0, nil
}

func (c *blockCipherContext) Dup() cipherContext {
	return c.dupBlock()
}

func (c *blockCipherContext) dupBlock() *blockCipherContext {
	return newBlockCipherContext(c.block, c.mode, c.encrypt)
}

// reset drops any buffered state and the mode instance.
func (c *blockCipherContext) reset() {
	clearBuffer(c.buf)
	c.nbuf = 0
	c.bm = nil
	c.stream = nil
}

// ecbEncrypter and ecbDecrypter expose a raw block cipher as a cipher.BlockMode.
type ecbEncrypter struct{ b cipher.Block }

func (x ecbEncrypter) BlockSize() int { return x.b.BlockSize() }

func (x ecbEncrypter) CryptBlocks(dst, src []byte) {
	bs := x.b.BlockSize()
	for len(src) > 0 {
		x.b.Encrypt(dst[:bs], src[:bs])
		src, dst = src[bs:], dst[bs:]
	}
}

type ecbDecrypter struct{ b cipher.Block }

func (x ecbDecrypter) BlockSize() int { return x.b.BlockSize() }

func (x ecbDecrypter) CryptBlocks(dst, src []byte) {
	bs := x.b.BlockSize()
	for len(src) > 0 {
		x.b.Decrypt(dst[:bs], src[:bs])
		src, dst = src[bs:], dst[bs:]
	}
}
