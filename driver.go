// driver.go: Segmented buffer crypto driver.
//
// The driver streams a region of a segment chain through a cipher or auth
// context. In place, output is written back over the chain; a block mode may
// owe the tail of a segment until enough bytes of the next one arrive, so the
// straddling block is produced in a scratch block and scattered back.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"crypto/cipher"
	"encoding/binary"
)

// cipherUpdate feeds srclen bytes of src, starting at offset, through ctx.
// Out of place the output goes to dst; in place it replaces the input bytes
// and dst is ignored. It returns the number of bytes emitted.
func cipherUpdate(src *Segment, offset int, dst []byte, srclen int, ctx cipherContext, inplace bool) (int, error) {
	if srclen == 0 {
		return 0, nil
	}
	seg, off, err := src.locate(offset)
	if err != nil {
		return 0, err
	}

	bs := ctx.BlockSize()
	scratch := getBuffer(bs)
	defer putBuffer(scratch)
	temp := *scratch

	var (
		written int
		owed    int // consumed but not yet emitted
		out     = segCursor{seg: seg, pos: off}
	)
	for remaining := srclen; remaining > 0; {
		if seg == nil {
			return written, newError(ErrInvalidState, ErrCodeInvalidState, "segment chain shorter than offset+length")
		}
		chunk := seg.Data[off:]
		if len(chunk) > remaining {
			chunk = chunk[:remaining]
		}
		remaining -= len(chunk)

		if !inplace {
			n, err := ctx.Update(dst[written:], chunk)
			if err != nil {
				return written, err
			}
			written += n
		} else {
			if owed > 0 {
				head := bs - owed
				if head > len(chunk) {
					head = len(chunk)
				}
				n, err := ctx.Update(temp, chunk[:head])
				if err != nil {
					return written, err
				}
				if n > 0 {
					if err := out.write(temp[:n]); err != nil {
						return written, err
					}
					written += n
				}
				owed += head - n
				chunk = chunk[head:]
			}
			if len(chunk) > 0 {
				n, err := ctx.Update(chunk, chunk)
				if err != nil {
					return written, err
				}
				out.skip(n)
				written += n
				owed = len(chunk) - n
			}
		}
		seg, off = seg.Next, 0
	}
	return written, nil
}

// cipherProcess runs one complete Init/Update/Final cycle over the region.
func cipherProcess(src *Segment, offset int, dst []byte, iv []byte, srclen int, ctx cipherContext, inplace bool) error {
	if err := ctx.Init(iv); err != nil {
		return err
	}
	n, err := cipherUpdate(src, offset, dst, srclen, ctx, inplace)
	if err != nil {
		return err
	}
	var tail []byte
	if !inplace {
		tail = dst[n:]
	}
	_, err = ctx.Final(tail)
	return err
}

// des3ctrProcess implements triple DES counter mode on top of the EDE3 block
// function: every 8 bytes the 64-bit big-endian counter taken from the IV is
// encrypted and incremented, and the keystream is XORed into the output.
func des3ctrProcess(src *Segment, offset int, dst []byte, iv []byte, srclen int, block cipher.Block, inplace bool) error {
	const bs = 8
	if len(iv) < bs {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "3des-ctr iv must be %d bytes", bs)
	}
	if srclen == 0 {
		return nil
	}
	if !inplace && len(dst) < srclen {
		return newError(ErrProcessing, ErrCodeProcessing, "output buffer too small")
	}
	seg, off, err := src.locate(offset)
	if err != nil {
		return err
	}

	var ctr, ks [bs]byte
	counter := binary.BigEndian.Uint64(iv[:bs])
	for i := 0; i < srclen; i++ {
		for seg != nil && off >= len(seg.Data) {
			seg, off = seg.Next, 0
		}
		if seg == nil {
			return newError(ErrInvalidState, ErrCodeInvalidState, "segment chain shorter than offset+length")
		}
		if i%bs == 0 {
			binary.BigEndian.PutUint64(ctr[:], counter)
			block.Encrypt(ks[:], ctr[:])
			counter++
		}
		b := seg.Data[off] ^ ks[i%bs]
		if inplace {
			seg.Data[off] = b
		} else {
			dst[i] = b
		}
		off++
	}
	return nil
}

// docsisBPIProcess runs DOCSIS BPI over contiguous source and destination
// regions. A region shorter than a block is XORed with ECB(IV). Otherwise the
// aligned prefix is CBC processed and the residual is XORed with the ECB
// encryption of the last full ciphertext block: the freshly produced one when
// encrypting, the source one when decrypting. Decryption handles the residual
// first so an in-place region still holds ciphertext when it is read.
func docsisBPIProcess(src, dst []byte, iv []byte, cbc cipherContext, ecb *blockCipherContext, encrypt bool) error {
	bs := ecb.block.BlockSize()
	if len(iv) < bs {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "docsis bpi iv must be %d bytes", bs)
	}
	scratch := getBuffer(bs)
	defer putBuffer(scratch)
	ks := *scratch

	srclen := len(src)
	if srclen < bs {
		ecb.block.Encrypt(ks, iv[:bs])
		xorInto(dst, src, ks)
		return nil
	}

	last := srclen % bs
	aligned := srclen - last
	chain := &Segment{Data: src[:aligned]}

	if !encrypt && last > 0 {
		ecb.block.Encrypt(ks, src[aligned-bs:aligned])
		xorInto(dst[aligned:], src[aligned:], ks)
	}
	if err := cipherProcess(chain, 0, dst[:aligned], iv, aligned, cbc, false); err != nil {
		return err
	}
	if encrypt && last > 0 {
		ecb.block.Encrypt(ks, dst[aligned-bs:aligned])
		xorInto(dst[aligned:], src[aligned:], ks)
	}
	return nil
}

func xorInto(dst, src, ks []byte) {
	for i := range src {
		dst[i] = src[i] ^ ks[i]
	}
}

// authProcess computes the digest of srclen bytes of src starting at offset.
func authProcess(src *Segment, offset, srclen int, ctx authContext, out []byte) error {
	if err := ctx.Init(); err != nil {
		return err
	}
	if srclen > 0 {
		seg, off, err := src.locate(offset)
		if err != nil {
			return err
		}
		for remaining := srclen; remaining > 0; seg, off = seg.Next, 0 {
			if seg == nil {
				return newError(ErrInvalidState, ErrCodeInvalidState, "segment chain shorter than offset+length")
			}
			chunk := seg.Data[off:]
			if len(chunk) > remaining {
				chunk = chunk[:remaining]
			}
			if err := ctx.Update(chunk); err != nil {
				return err
			}
			remaining -= len(chunk)
		}
	}
	_, err := ctx.Final(out)
	return err
}
