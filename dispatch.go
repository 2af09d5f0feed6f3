// dispatch.go: Symmetric operation dispatcher and chain executor.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"crypto/subtle"
	"errors"
)

// processSym runs op through the plan of sess using lane laneID's contexts.
// scratch is lane memory of at least 2*maxDigestSize bytes. The first failing
// step ends the operation.
func processSym(op *Operation, sess *Session, laneID int, scratch []byte) error {
	if op.Sym == nil || op.Sym.Src == nil {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "symmetric operation without source buffer")
	}
	lc, err := sess.laneContexts(laneID)
	if err != nil {
		return err
	}
	src, dst := op.Sym.Src, op.Sym.Dst
	if dst == nil {
		dst = src
	}

	switch sess.chain {
	case ChainCipherOnly:
		return processCipherOp(op, sess, lc, src, dst)
	case ChainAuthOnly:
		return processAuthOp(op, sess, lc, src, dst, scratch)
	case ChainCipherAuth:
		if err := processCipherOp(op, sess, lc, src, dst); err != nil {
			return err
		}
		if src != dst {
			if err := copyPlaintext(op, src, dst); err != nil {
				return err
			}
		}
		return processAuthOp(op, sess, lc, dst, dst, scratch)
	case ChainAuthCipher:
		if err := processAuthOp(op, sess, lc, src, dst, scratch); err != nil {
			return err
		}
		return processCipherOp(op, sess, lc, src, dst)
	case ChainCombined:
		return processCombinedOp(op, sess, lc, src, dst)
	case ChainCipherBPI:
		return processDOCSISOp(op, sess, lc, src, dst)
	}
	return newError(ErrInvalidSession, ErrCodeInvalidSession, "session has no execution plan")
}

// processCipherOp runs the cipher leg. Out of place the destination must be a
// single segment; in place the source chain may be segmented.
func processCipherOp(op *Operation, sess *Session, lc *laneContext, src, dst *Segment) error {
	region := op.Sym.Cipher
	iv, err := sess.ivFrom(op)
	if err != nil {
		return err
	}
	inplace := src == dst

	var out []byte
	if !inplace {
		if !dst.Contiguous() {
			return newError(ErrProcessing, ErrCodeProcessing, "segmented destination is only supported in place")
		}
		if out, err = dst.region(region.Offset, region.Length); err != nil {
			return err
		}
	}

	if sess.cipher.prim.kind == kindDES3CTR {
		block, ok := lc.cipher.(*blockCipherContext)
		if !ok {
			return newError(ErrInvalidState, ErrCodeInvalidState, "3des-ctr session without block context")
		}
		return des3ctrProcess(src, region.Offset, out, iv, region.Length, block.block, inplace)
	}
	return cipherProcess(src, region.Offset, out, iv, region.Length, lc.cipher, inplace)
}

// processAuthOp computes the digest of the auth region of src and either
// checks it or stores it.
func processAuthOp(op *Operation, sess *Session, lc *laneContext, src, dst *Segment, scratch []byte) error {
	region := op.Sym.Auth
	sum := scratch[:lc.auth.Size()]
	if err := authProcess(src, region.Offset, region.Length, lc.auth, sum); err != nil {
		return err
	}
	n := sess.auth.digestLen
	end := region.Offset + region.Length

	if sess.auth.op == AuthOpVerify {
		expected := op.Sym.Digest
		if expected == nil {
			expected = scratch[len(sum) : len(sum)+n]
			if err := src.ReadAt(expected, end); err != nil {
				return err
			}
		}
		if len(expected) < n {
			return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "digest shorter than %d bytes", n)
		}
		if subtle.ConstantTimeCompare(sum[:n], expected[:n]) != 1 {
			return newError(ErrAuthFailed, ErrCodeAuthFailed, "%s digest mismatch", sess.auth.prim.Name)
		}
		return nil
	}

	if op.Sym.Digest != nil {
		if len(op.Sym.Digest) < n {
			return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "digest buffer shorter than %d bytes", n)
		}
		copy(op.Sym.Digest, sum[:n])
		return nil
	}
	return dst.WriteAt(sum[:n], end)
}

// copyPlaintext copies the authenticated-but-not-encrypted prefix
// [auth.offset, cipher.offset) from src to an out-of-place destination so the
// digest can be computed over the destination.
func copyPlaintext(op *Operation, src, dst *Segment) error {
	authOff, cipherOff := op.Sym.Auth.Offset, op.Sym.Cipher.Offset
	if authOff > cipherOff {
		L.Debug("auth region starts after cipher region, nothing copied", "auth_offset", authOff, "cipher_offset", cipherOff)
		return nil
	}
	if authOff == cipherOff {
		return nil
	}
	buf, err := gather(src, authOff, cipherOff-authOff)
	if err != nil {
		return err
	}
	defer putBuffer(buf)
	return dst.WriteAt(*buf, authOff)
}

// processCombinedOp runs an AEAD or GMAC operation in a single pass. GMAC
// writes no payload, so its chains may be segmented; AEAD payloads need a
// contiguous destination.
func processCombinedOp(op *Operation, sess *Session, lc *laneContext, src, dst *Segment) error {
	iv, err := sess.ivFrom(op)
	if err != nil {
		return err
	}
	ctx := lc.aead
	tagLen := sess.aead.tagLen

	var (
		off, srclen int
		aad         []byte
	)
	if sess.aead.gmac {
		off = op.Sym.Auth.Offset + op.Sym.Auth.Length
		data, err := gather(src, op.Sym.Auth.Offset, op.Sym.Auth.Length)
		if err != nil {
			return err
		}
		defer putBuffer(data)
		aad = *data
	} else {
		off, srclen = op.Sym.AEAD.Offset, op.Sym.AEAD.Length
		if aad, err = sess.aadFrom(op); err != nil {
			return err
		}
	}

	var out []byte
	if srclen > 0 {
		if !dst.Contiguous() {
			return newError(ErrProcessing, ErrCodeProcessing, "aead payloads need a contiguous destination")
		}
		if out, err = dst.region(off, srclen); err != nil {
			return err
		}
	}

	if err := ctx.Init(iv); err != nil {
		return err
	}
	ctx.SetAAD(aad)

	tagAt := off + srclen
	tag := op.Sym.Digest
	if tag == nil {
		buf := getBuffer(tagLen)
		defer putBuffer(buf)
		tag = *buf
	}
	if !sess.aead.encrypt {
		if op.Sym.Digest == nil {
			if err := src.ReadAt(tag, tagAt); err != nil {
				return err
			}
		}
		if err := ctx.SetTag(tag); err != nil {
			return err
		}
	}

	n, err := cipherUpdate(src, off, out, srclen, ctx, false)
	if err == nil {
		_, err = ctx.Final(out[n:])
	}
	if err != nil {
		if errors.Is(err, ErrAuthFailed) && sess.auth.op == AuthOpVerify {
			return err
		}
		return newError(ErrProcessing, ErrCodeProcessing, "%s processing failed: %v", sess.aead.prim.Name, err)
	}

	if !sess.aead.encrypt {
		return nil
	}
	if err := ctx.Tag(tag); err != nil {
		return err
	}
	if op.Sym.Digest != nil {
		return nil
	}
	return dst.WriteAt(tag, tagAt)
}

// aadFrom returns the AAD of an AEAD operation, skipping the CCM header area.
func (s *Session) aadFrom(op *Operation) ([]byte, error) {
	start := 0
	if s.aead.prim.Algorithm == AEADAESCCM {
		start = ccmAADOffset
	}
	end := start + s.aead.aadLen
	if s.aead.aadLen == 0 {
		return nil, nil
	}
	if end > len(op.Sym.AAD) {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument,
			"aad field of %d bytes cannot hold %d bytes at offset %d", len(op.Sym.AAD), s.aead.aadLen, start)
	}
	return op.Sym.AAD[start:end], nil
}

// processDOCSISOp runs DOCSIS BPI over contiguous source and destination regions.
func processDOCSISOp(op *Operation, sess *Session, lc *laneContext, src, dst *Segment) error {
	region := op.Sym.Cipher
	iv, err := sess.ivFrom(op)
	if err != nil {
		return err
	}
	in, err := src.region(region.Offset, region.Length)
	if err != nil {
		return err
	}
	out, err := dst.region(region.Offset, region.Length)
	if err != nil {
		return err
	}
	return docsisBPIProcess(in, out, iv, lc.cipher, lc.bpi, sess.cipher.encrypt)
}
