// dispatch_test.go: Symmetric operations through the public API.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev_test

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/aead/cmac"
	cryptodev "github.com/agilira/hephaestus"
	"github.com/pion/dtls/v3/pkg/crypto/ccm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

func seq(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func newTestEngine(t *testing.T, cfg cryptodev.Config) *cryptodev.Engine {
	t.Helper()
	e, err := cryptodev.NewEngine(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Init(context.Background()))
	t.Cleanup(func() { _ = e.Shutdown() })
	return e
}

// run pushes one operation through lane 0 and returns it with its status.
func run(t *testing.T, e *cryptodev.Engine, op *cryptodev.Operation) *cryptodev.Operation {
	t.Helper()
	require.Equal(t, 1, e.Enqueue(0, []*cryptodev.Operation{op}), "status %s", op.Status)
	done := e.Dequeue(0, 4)
	require.Len(t, done, 1)
	require.Same(t, op, done[0])
	return op
}

func cbcEncrypt(key, iv, in []byte) []byte {
	block, _ := aes.NewCipher(key)
	out := make([]byte, len(in))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, in)
	return out
}

func hmacSHA256(key []byte, parts ...[]byte) []byte {
	m := hmac.New(sha256.New, key)
	for _, p := range parts {
		m.Write(p)
	}
	return m.Sum(nil)
}

func TestAES128CBCZeroVector(t *testing.T) {
	e := newTestEngine(t, cryptodev.Config{})
	sess, err := e.BuildSession(cryptodev.CipherStep(cryptodev.CipherXform{
		Algorithm: cryptodev.CipherAESCBC,
		Op:        cryptodev.CipherOpEncrypt,
		Key:       make([]byte, 16),
		IV:        cryptodev.IVParams{Length: 16},
	}))
	require.NoError(t, err)

	src := cryptodev.NewChain(make([]byte, 16))
	op := run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
		Src:    src,
		Cipher: cryptodev.DataRegion{Length: 16},
	}, make([]byte, 16)))

	assert.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, "66e94bd4ef8a2c3b884cfa59ca342b2e", hex.EncodeToString(src.Bytes()))
}

func TestHMACSHA256KnownAnswer(t *testing.T) {
	const want = "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"
	msg := []byte("The quick brown fox jumps over the lazy dog")
	e := newTestEngine(t, cryptodev.Config{})
	sess, err := e.BuildSession(cryptodev.AuthStep(cryptodev.AuthXform{
		Algorithm: cryptodev.AuthSHA256HMAC,
		Op:        cryptodev.AuthOpGenerate,
		Key:       []byte("key"),
	}))
	require.NoError(t, err)

	t.Run("digest buffer", func(t *testing.T) {
		digest := make([]byte, 32)
		op := run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
			Src:    cryptodev.SplitChain(msg, 5),
			Auth:   cryptodev.DataRegion{Length: len(msg)},
			Digest: digest,
		}, nil))
		assert.Equal(t, cryptodev.StatusSuccess, op.Status)
		assert.Equal(t, want, hex.EncodeToString(digest))
	})

	t.Run("digest after region", func(t *testing.T) {
		buf := append(append([]byte(nil), msg...), make([]byte, 32)...)
		src := cryptodev.SplitChain(buf, 3)
		op := run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
			Src:  src,
			Auth: cryptodev.DataRegion{Length: len(msg)},
		}, nil))
		assert.Equal(t, cryptodev.StatusSuccess, op.Status)
		assert.Equal(t, want, hex.EncodeToString(src.Bytes()[len(msg):]))
	})
}

func TestDigestTruncationAndVerifyFromSource(t *testing.T) {
	key := []byte("secret")
	msg := seq(100)
	full := hmacSHA256(key, msg)
	e := newTestEngine(t, cryptodev.Config{})

	gen, err := e.BuildSession(cryptodev.AuthStep(cryptodev.AuthXform{
		Algorithm: cryptodev.AuthSHA256HMAC, Op: cryptodev.AuthOpGenerate, Key: key, DigestLength: 12,
	}))
	require.NoError(t, err)
	digest := make([]byte, 12)
	op := run(t, e, cryptodev.NewSymOp(gen, &cryptodev.SymOp{
		Src: cryptodev.NewChain(msg), Auth: cryptodev.DataRegion{Length: len(msg)}, Digest: digest,
	}, nil))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, full[:12], digest)

	verify, err := e.BuildSession(cryptodev.AuthStep(cryptodev.AuthXform{
		Algorithm: cryptodev.AuthSHA256HMAC, Op: cryptodev.AuthOpVerify, Key: key, DigestLength: 12,
	}))
	require.NoError(t, err)

	buf := append(append([]byte(nil), msg...), full[:12]...)
	op = run(t, e, cryptodev.NewSymOp(verify, &cryptodev.SymOp{
		Src: cryptodev.SplitChain(buf, 4), Auth: cryptodev.DataRegion{Length: len(msg)},
	}, nil))
	assert.Equal(t, cryptodev.StatusSuccess, op.Status)

	buf[len(buf)-1] ^= 1
	op = run(t, e, cryptodev.NewSymOp(verify, &cryptodev.SymOp{
		Src: cryptodev.SplitChain(buf, 4), Auth: cryptodev.DataRegion{Length: len(msg)},
	}, nil))
	assert.Equal(t, cryptodev.StatusAuthFailed, op.Status)
}

func TestKnownDigests(t *testing.T) {
	e := newTestEngine(t, cryptodev.Config{})
	tests := []struct {
		name string
		algo cryptodev.AuthAlgorithm
		key  []byte
		msg  []byte
		want string
	}{
		{"sha256", cryptodev.AuthSHA256, nil, []byte("abc"), "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"sha3-256", cryptodev.AuthSHA3_256, nil, []byte("abc"), "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532"},
		{"aes-cmac empty", cryptodev.AuthAESCMAC, unhex(t, "2b7e151628aed2a6abf7158809cf4f3c"), nil, "bb1d6929e95937287fa37d129b756746"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := e.BuildSession(cryptodev.AuthStep(cryptodev.AuthXform{
				Algorithm: tt.algo, Op: cryptodev.AuthOpGenerate, Key: tt.key,
			}))
			require.NoError(t, err)
			want := unhex(t, tt.want)
			digest := make([]byte, len(want))
			src := cryptodev.NewChain(append([]byte(nil), tt.msg...))
			op := run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
				Src: src, Auth: cryptodev.DataRegion{Length: len(tt.msg)}, Digest: digest,
			}, nil))
			require.Equal(t, cryptodev.StatusSuccess, op.Status)
			assert.Equal(t, want, digest)
		})
	}
}

func TestCMACMatchesLibrary(t *testing.T) {
	key := seq(32)
	msg := seq(77)
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	want, err := cmac.Sum(msg, block, 16)
	require.NoError(t, err)

	e := newTestEngine(t, cryptodev.Config{})
	sess, err := e.BuildSession(cryptodev.AuthStep(cryptodev.AuthXform{
		Algorithm: cryptodev.AuthAESCMAC, Op: cryptodev.AuthOpGenerate, Key: key,
	}))
	require.NoError(t, err)
	digest := make([]byte, 16)
	op := run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
		Src: cryptodev.SplitChain(msg, 5), Auth: cryptodev.DataRegion{Length: len(msg)}, Digest: digest,
	}, nil))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, want, digest)
}

func cbcHMACChain(order cryptodev.ChainOrder, cop cryptodev.CipherOp, aop cryptodev.AuthOp, ckey, akey []byte) *cryptodev.Xform {
	c := cryptodev.CipherStep(cryptodev.CipherXform{
		Algorithm: cryptodev.CipherAESCBC, Op: cop, Key: ckey, IV: cryptodev.IVParams{Length: 16},
	})
	a := cryptodev.AuthStep(cryptodev.AuthXform{
		Algorithm: cryptodev.AuthSHA256HMAC, Op: aop, Key: akey,
	})
	if order == cryptodev.ChainCipherAuth {
		return cryptodev.Chain(c, a)
	}
	return cryptodev.Chain(a, c)
}

func TestCipherAuthVersusAuthCipher(t *testing.T) {
	ckey, akey, iv := seq(16), []byte("mac key"), seq(16)
	plain := seq(64)
	ct := cbcEncrypt(ckey, iv, plain)
	e := newTestEngine(t, cryptodev.Config{})

	generate := func(order cryptodev.ChainOrder) ([]byte, []byte) {
		sess, err := e.BuildSession(cbcHMACChain(order, cryptodev.CipherOpEncrypt, cryptodev.AuthOpGenerate, ckey, akey))
		require.NoError(t, err)
		require.Equal(t, order, sess.ChainOrder())
		buf := append(append([]byte(nil), plain...), make([]byte, 32)...)
		src := cryptodev.SplitChain(buf, 5)
		op := run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
			Src:    src,
			Cipher: cryptodev.DataRegion{Length: 64},
			Auth:   cryptodev.DataRegion{Length: 64},
		}, iv))
		require.Equal(t, cryptodev.StatusSuccess, op.Status)
		out := src.Bytes()
		return out[:64], out[64:]
	}

	gotCT1, encThenMAC := generate(cryptodev.ChainCipherAuth)
	gotCT2, macThenEnc := generate(cryptodev.ChainAuthCipher)
	assert.Equal(t, ct, gotCT1)
	assert.Equal(t, ct, gotCT2)
	assert.Equal(t, hmacSHA256(akey, ct), encThenMAC)
	assert.Equal(t, hmacSHA256(akey, plain), macThenEnc)
	assert.NotEqual(t, encThenMAC, macThenEnc)

	// Receiver side of encrypt-then-MAC: verify the ciphertext, then decrypt.
	sess, err := e.BuildSession(cbcHMACChain(cryptodev.ChainAuthCipher, cryptodev.CipherOpDecrypt, cryptodev.AuthOpVerify, ckey, akey))
	require.NoError(t, err)
	buf := append(append([]byte(nil), ct...), encThenMAC...)
	src := cryptodev.SplitChain(buf, 3)
	op := run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
		Src: src, Cipher: cryptodev.DataRegion{Length: 64}, Auth: cryptodev.DataRegion{Length: 64},
	}, iv))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, plain, src.Bytes()[:64])

	buf[3] ^= 0x80
	op = run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
		Src: cryptodev.NewChain(buf), Cipher: cryptodev.DataRegion{Length: 64}, Auth: cryptodev.DataRegion{Length: 64},
	}, iv))
	assert.Equal(t, cryptodev.StatusAuthFailed, op.Status)
}

func TestCipherAuthOutOfPlaceCopiesHeader(t *testing.T) {
	ckey, akey, iv := seq(16), []byte("k"), seq(16)
	header, plain := seq(16), seq(48)
	e := newTestEngine(t, cryptodev.Config{})
	sess, err := e.BuildSession(cbcHMACChain(cryptodev.ChainCipherAuth, cryptodev.CipherOpEncrypt, cryptodev.AuthOpGenerate, ckey, akey))
	require.NoError(t, err)

	src := cryptodev.SplitChain(append(append([]byte(nil), header...), plain...), 3)
	dstBuf := make([]byte, 16+48+32)
	op := run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
		Src:    src,
		Dst:    cryptodev.NewChain(dstBuf),
		Cipher: cryptodev.DataRegion{Offset: 16, Length: 48},
		Auth:   cryptodev.DataRegion{Offset: 0, Length: 64},
	}, iv))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)

	ct := cbcEncrypt(ckey, iv, plain)
	assert.Equal(t, header, dstBuf[:16])
	assert.Equal(t, ct, dstBuf[16:64])
	assert.Equal(t, hmacSHA256(akey, header, ct), dstBuf[64:])
}

func TestOutOfPlaceSegmentedDestinationFails(t *testing.T) {
	e := newTestEngine(t, cryptodev.Config{})
	sess, err := e.BuildSession(cryptodev.CipherStep(cryptodev.CipherXform{
		Algorithm: cryptodev.CipherAESCTR, Key: seq(16), IV: cryptodev.IVParams{Length: 16},
	}))
	require.NoError(t, err)
	op := run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
		Src:    cryptodev.NewChain(seq(32)),
		Dst:    cryptodev.SplitChain(make([]byte, 32), 2),
		Cipher: cryptodev.DataRegion{Length: 32},
	}, seq(16)))
	assert.Equal(t, cryptodev.StatusError, op.Status)
}

func aeadSession(t *testing.T, e *cryptodev.Engine, algo cryptodev.AEADAlgorithm, op cryptodev.AEADOp, key []byte, ivLen, tagLen, aadLen int) *cryptodev.Session {
	t.Helper()
	sess, err := e.BuildSession(cryptodev.AEADStep(cryptodev.AEADXform{
		Algorithm: algo, Op: op, Key: key,
		IV: cryptodev.IVParams{Length: ivLen}, DigestLength: tagLen, AADLength: aadLen,
	}))
	require.NoError(t, err)
	return sess
}

func TestAESGCMRoundTripAndTamper(t *testing.T) {
	key, iv, aad, plain := seq(32), seq(12), []byte("header!!"), seq(1024)
	block, _ := aes.NewCipher(key)
	gcm, _ := cipher.NewGCM(block)
	sealed := gcm.Seal(nil, iv, plain, aad)

	e := newTestEngine(t, cryptodev.Config{})
	enc := aeadSession(t, e, cryptodev.AEADAESGCM, cryptodev.AEADOpEncrypt, key, 12, 16, len(aad))
	dec := aeadSession(t, e, cryptodev.AEADAESGCM, cryptodev.AEADOpDecrypt, key, 12, 16, len(aad))

	// Segmented source, tag written after the region in place.
	buf := append(append([]byte(nil), plain...), make([]byte, 16)...)
	src := cryptodev.NewChain(buf)
	op := run(t, e, cryptodev.NewSymOp(enc, &cryptodev.SymOp{
		Src: src, AEAD: cryptodev.DataRegion{Length: len(plain)}, AAD: aad,
	}, iv))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, sealed, buf)

	// Decrypt out of place from a segmented source with an explicit tag.
	out := make([]byte, len(plain))
	tag := append([]byte(nil), sealed[len(plain):]...)
	op = run(t, e, cryptodev.NewSymOp(dec, &cryptodev.SymOp{
		Src: cryptodev.SplitChain(sealed[:len(plain)], 5), Dst: cryptodev.NewChain(out),
		AEAD: cryptodev.DataRegion{Length: len(plain)}, AAD: aad, Digest: tag,
	}, iv))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, plain, out)

	tag[0] ^= 1
	op = run(t, e, cryptodev.NewSymOp(dec, &cryptodev.SymOp{
		Src: cryptodev.SplitChain(sealed[:len(plain)], 5), Dst: cryptodev.NewChain(make([]byte, len(plain))),
		AEAD: cryptodev.DataRegion{Length: len(plain)}, AAD: aad, Digest: tag,
	}, iv))
	assert.Equal(t, cryptodev.StatusAuthFailed, op.Status)
}

func TestAESCCMRoundTripAndTamper(t *testing.T) {
	const nonceLen, tagLen = 11, 8
	key, nonce, aad, plain := seq(16), seq(nonceLen), []byte("ccm aad"), seq(100)
	block, _ := aes.NewCipher(key)
	ref, err := ccm.NewCCM(block, tagLen, nonceLen)
	require.NoError(t, err)
	sealed := ref.Seal(nil, nonce, plain, aad)

	// The nonce follows the flags byte, the AAD follows the 18 reserved bytes.
	private := append([]byte{0}, nonce...)
	aadField := append(make([]byte, 18), aad...)

	e := newTestEngine(t, cryptodev.Config{})
	enc := aeadSession(t, e, cryptodev.AEADAESCCM, cryptodev.AEADOpEncrypt, key, nonceLen, tagLen, len(aad))
	dec := aeadSession(t, e, cryptodev.AEADAESCCM, cryptodev.AEADOpDecrypt, key, nonceLen, tagLen, len(aad))

	buf := append(append([]byte(nil), plain...), make([]byte, tagLen)...)
	op := run(t, e, cryptodev.NewSymOp(enc, &cryptodev.SymOp{
		Src: cryptodev.NewChain(buf), AEAD: cryptodev.DataRegion{Length: len(plain)}, AAD: aadField,
	}, private))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, sealed, buf)

	op = run(t, e, cryptodev.NewSymOp(dec, &cryptodev.SymOp{
		Src: cryptodev.NewChain(buf), AEAD: cryptodev.DataRegion{Length: len(plain)}, AAD: aadField,
	}, private))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, plain, buf[:len(plain)])

	copy(buf, sealed)
	buf[len(buf)-1] ^= 0x10
	op = run(t, e, cryptodev.NewSymOp(dec, &cryptodev.SymOp{
		Src: cryptodev.NewChain(buf), AEAD: cryptodev.DataRegion{Length: len(plain)}, AAD: aadField,
	}, private))
	assert.Equal(t, cryptodev.StatusAuthFailed, op.Status)

	// An AAD field too short for the reserved area is an error.
	op = run(t, e, cryptodev.NewSymOp(enc, &cryptodev.SymOp{
		Src: cryptodev.NewChain(make([]byte, 108)), AEAD: cryptodev.DataRegion{Length: 100}, AAD: aad,
	}, private))
	assert.Equal(t, cryptodev.StatusError, op.Status)
}

func TestChaCha20Poly1305RoundTrip(t *testing.T) {
	key, nonce, aad, plain := seq(32), seq(12), []byte("aad"), seq(333)
	ref, err := chacha20poly1305.New(key)
	require.NoError(t, err)
	sealed := ref.Seal(nil, nonce, plain, aad)

	e := newTestEngine(t, cryptodev.Config{})
	enc := aeadSession(t, e, cryptodev.AEADChaCha20Poly1305, cryptodev.AEADOpEncrypt, key, 12, 16, len(aad))
	dec := aeadSession(t, e, cryptodev.AEADChaCha20Poly1305, cryptodev.AEADOpDecrypt, key, 12, 16, len(aad))

	buf := append(append([]byte(nil), plain...), make([]byte, 16)...)
	op := run(t, e, cryptodev.NewSymOp(enc, &cryptodev.SymOp{
		Src: cryptodev.NewChain(buf), AEAD: cryptodev.DataRegion{Length: len(plain)}, AAD: aad,
	}, nonce))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, sealed, buf)

	op = run(t, e, cryptodev.NewSymOp(dec, &cryptodev.SymOp{
		Src: cryptodev.NewChain(buf), AEAD: cryptodev.DataRegion{Length: len(plain)}, AAD: aad,
	}, nonce))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, plain, buf[:len(plain)])
}

func TestAESGMAC(t *testing.T) {
	key, iv, msg := seq(16), seq(12), seq(90)
	block, _ := aes.NewCipher(key)
	gcm, _ := cipher.NewGCM(block)
	want := gcm.Seal(nil, iv, nil, msg)

	e := newTestEngine(t, cryptodev.Config{})
	gmac := func(op cryptodev.AuthOp) *cryptodev.Session {
		sess, err := e.BuildSession(cryptodev.AuthStep(cryptodev.AuthXform{
			Algorithm: cryptodev.AuthAESGMAC, Op: op, Key: key, IV: cryptodev.IVParams{Length: 12},
		}))
		require.NoError(t, err)
		require.Equal(t, cryptodev.ChainCombined, sess.ChainOrder())
		return sess
	}

	tag := make([]byte, 16)
	op := run(t, e, cryptodev.NewSymOp(gmac(cryptodev.AuthOpGenerate), &cryptodev.SymOp{
		Src: cryptodev.SplitChain(msg, 5), Auth: cryptodev.DataRegion{Length: len(msg)}, Digest: tag,
	}, iv))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, want, tag)

	verify := gmac(cryptodev.AuthOpVerify)
	buf := append(append([]byte(nil), msg...), want...)
	op = run(t, e, cryptodev.NewSymOp(verify, &cryptodev.SymOp{
		Src: cryptodev.NewChain(buf), Auth: cryptodev.DataRegion{Length: len(msg)},
	}, iv))
	assert.Equal(t, cryptodev.StatusSuccess, op.Status)

	buf[0] ^= 1
	op = run(t, e, cryptodev.NewSymOp(verify, &cryptodev.SymOp{
		Src: cryptodev.NewChain(buf), Auth: cryptodev.DataRegion{Length: len(msg)},
	}, iv))
	assert.Equal(t, cryptodev.StatusAuthFailed, op.Status)
}

func TestAESGMACSegmentedChain(t *testing.T) {
	key, iv, msg := seq(32), seq(12), seq(40)
	block, _ := aes.NewCipher(key)
	gcm, _ := cipher.NewGCM(block)
	want := gcm.Seal(nil, iv, nil, msg)

	e := newTestEngine(t, cryptodev.Config{})
	build := func(op cryptodev.AuthOp) *cryptodev.Session {
		sess, err := e.BuildSession(cryptodev.AuthStep(cryptodev.AuthXform{
			Algorithm: cryptodev.AuthAESGMAC, Op: op, Key: key, IV: cryptodev.IVParams{Length: 12},
		}))
		require.NoError(t, err)
		return sess
	}

	// The tag lands after the region and straddles a segment boundary.
	src := cryptodev.SplitChain(append(append([]byte(nil), msg...), make([]byte, 16)...), 4)
	op := run(t, e, cryptodev.NewSymOp(build(cryptodev.AuthOpGenerate), &cryptodev.SymOp{
		Src: src, Auth: cryptodev.DataRegion{Length: len(msg)},
	}, iv))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	out := src.Bytes()
	assert.Equal(t, msg, out[:len(msg)])
	assert.Equal(t, want, out[len(msg):])

	verify := build(cryptodev.AuthOpVerify)
	op = run(t, e, cryptodev.NewSymOp(verify, &cryptodev.SymOp{
		Src: cryptodev.SplitChain(out, 5), Auth: cryptodev.DataRegion{Length: len(msg)},
	}, iv))
	assert.Equal(t, cryptodev.StatusSuccess, op.Status)

	out[len(out)-1] ^= 1
	op = run(t, e, cryptodev.NewSymOp(verify, &cryptodev.SymOp{
		Src: cryptodev.SplitChain(out, 5), Auth: cryptodev.DataRegion{Length: len(msg)},
	}, iv))
	assert.Equal(t, cryptodev.StatusAuthFailed, op.Status)
}

// docsisReference implements DOCSIS BPI encryption on a flat buffer.
func docsisReference(block cipher.Block, iv, in []byte) []byte {
	bs := block.BlockSize()
	out := make([]byte, len(in))
	ks := make([]byte, bs)
	if len(in) < bs {
		block.Encrypt(ks, iv)
		for i := range in {
			out[i] = in[i] ^ ks[i]
		}
		return out
	}
	aligned := len(in) / bs * bs
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[:aligned], in[:aligned])
	block.Encrypt(ks, out[aligned-bs:aligned])
	for i := aligned; i < len(in); i++ {
		out[i] = in[i] ^ ks[i-aligned]
	}
	return out
}

func TestDOCSISBPI(t *testing.T) {
	key, iv := seq(16), seq(16)
	block, _ := aes.NewCipher(key)
	e := newTestEngine(t, cryptodev.Config{})

	bpi := func(op cryptodev.CipherOp) *cryptodev.Session {
		sess, err := e.BuildSession(cryptodev.CipherStep(cryptodev.CipherXform{
			Algorithm: cryptodev.CipherAESDOCSISBPI, Op: op, Key: key, IV: cryptodev.IVParams{Length: 16},
		}))
		require.NoError(t, err)
		require.Equal(t, cryptodev.ChainCipherBPI, sess.ChainOrder())
		return sess
	}
	enc, dec := bpi(cryptodev.CipherOpEncrypt), bpi(cryptodev.CipherOpDecrypt)

	for _, n := range []int{1, 10, 16, 24, 32, 47} {
		plain := seq(n)
		want := docsisReference(block, iv, plain)

		buf := append([]byte(nil), plain...)
		op := run(t, e, cryptodev.NewSymOp(enc, &cryptodev.SymOp{
			Src: cryptodev.NewChain(buf), Cipher: cryptodev.DataRegion{Length: n},
		}, iv))
		require.Equal(t, cryptodev.StatusSuccess, op.Status, "len %d", n)
		assert.Equal(t, want, buf, "encrypt len %d", n)

		out := make([]byte, n)
		op = run(t, e, cryptodev.NewSymOp(dec, &cryptodev.SymOp{
			Src: cryptodev.NewChain(buf), Dst: cryptodev.NewChain(out), Cipher: cryptodev.DataRegion{Length: n},
		}, iv))
		require.Equal(t, cryptodev.StatusSuccess, op.Status, "len %d", n)
		assert.Equal(t, plain, out, "decrypt len %d", n)

		op = run(t, e, cryptodev.NewSymOp(dec, &cryptodev.SymOp{
			Src: cryptodev.NewChain(buf), Cipher: cryptodev.DataRegion{Length: n},
		}, iv))
		require.Equal(t, cryptodev.StatusSuccess, op.Status, "len %d", n)
		assert.Equal(t, plain, buf, "in-place decrypt len %d", n)
	}
}

func TestAESECB(t *testing.T) {
	key := seq(16)
	plain := seq(64)
	block, _ := aes.NewCipher(key)
	want := make([]byte, len(plain))
	for i := 0; i < len(plain); i += 16 {
		block.Encrypt(want[i:i+16], plain[i:i+16])
	}

	e := newTestEngine(t, cryptodev.Config{})
	sess, err := e.BuildSession(cryptodev.CipherStep(cryptodev.CipherXform{
		Algorithm: cryptodev.CipherAESECB, Op: cryptodev.CipherOpEncrypt, Key: key,
	}))
	require.NoError(t, err)
	src := cryptodev.SplitChain(plain, 5)
	op := run(t, e, cryptodev.NewSymOp(sess, &cryptodev.SymOp{
		Src: src, Cipher: cryptodev.DataRegion{Length: len(plain)},
	}, nil))
	require.Equal(t, cryptodev.StatusSuccess, op.Status)
	assert.Equal(t, want, src.Bytes())
}
