// resolver.go: Capability resolver mapping (algorithm, key length) pairs to primitives.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/hmac"
	"crypto/md5"  // #nosec G501 -- MD5 is an offered digest, not used internally
	"crypto/sha1" // #nosec G505 -- SHA1 is an offered digest, not used internally
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"github.com/aead/cmac"
	"github.com/pion/dtls/v3/pkg/crypto/ccm"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/sha3"
)

// Provider names. Single DES lives in the legacy provider and is only usable
// while that provider is loaded.
const (
	ProviderDefault = "default"
	ProviderLegacy  = "legacy"
)

// cipherKind tells the driver how a cipher primitive is executed.
type cipherKind uint8

const (
	kindLib     cipherKind = iota + 1 // streamed through a cipherContext
	kindDES3CTR                       // counter mode built on the EDE3 block function
	kindBPI                           // DOCSIS BPI: CBC body plus ECB residual
)

// CipherPrimitive is a resolved symmetric cipher.
type CipherPrimitive struct {
	Algorithm CipherAlgorithm
	Name      string
	KeyLen    int
	BlockSize int
	IVLen     int
	Provider  string

	kind     cipherKind
	mode     cipherMode
	newBlock func(key []byte) (cipher.Block, error)
}

type cipherKey struct {
	algo   CipherAlgorithm
	keyLen int
}

func aesBlock(key []byte) (cipher.Block, error) { return aes.NewCipher(key) }

func desBlock(key []byte) (cipher.Block, error) { return des.NewCipher(key) }

// edeBlock builds a triple DES block cipher from an 8, 16 or 24 byte key.
func edeBlock(key []byte) (cipher.Block, error) {
	ede, err := CipherKeyEDE(key)
	if err != nil {
		return nil, err
	}
	defer Zeroize(ede)
	return des.NewTripleDESCipher(ede)
}

var cipherTable = func() map[cipherKey]CipherPrimitive {
	t := make(map[cipherKey]CipherPrimitive)
	add := func(p CipherPrimitive) { t[cipherKey{p.Algorithm, p.KeyLen}] = p }

	for _, kl := range []int{16, 24, 32} {
		add(CipherPrimitive{Algorithm: CipherAESCBC, Name: "aes-cbc", KeyLen: kl, BlockSize: aes.BlockSize, IVLen: aes.BlockSize,
			Provider: ProviderDefault, kind: kindLib, mode: modeCBC, newBlock: aesBlock})
		add(CipherPrimitive{Algorithm: CipherAESCTR, Name: "aes-ctr", KeyLen: kl, BlockSize: aes.BlockSize, IVLen: aes.BlockSize,
			Provider: ProviderDefault, kind: kindLib, mode: modeCTR, newBlock: aesBlock})
		add(CipherPrimitive{Algorithm: CipherAESECB, Name: "aes-ecb", KeyLen: kl, BlockSize: aes.BlockSize,
			Provider: ProviderDefault, kind: kindLib, mode: modeECB, newBlock: aesBlock})
	}
	for _, kl := range []int{16, 32} {
		add(CipherPrimitive{Algorithm: CipherAESDOCSISBPI, Name: "aes-docsisbpi", KeyLen: kl, BlockSize: aes.BlockSize, IVLen: aes.BlockSize,
			Provider: ProviderDefault, kind: kindBPI, mode: modeCBC, newBlock: aesBlock})
	}

	add(CipherPrimitive{Algorithm: Cipher3DESCBC, Name: "des-cbc", KeyLen: 8, BlockSize: des.BlockSize, IVLen: des.BlockSize,
		Provider: ProviderDefault, kind: kindLib, mode: modeCBC, newBlock: edeBlock})
	add(CipherPrimitive{Algorithm: Cipher3DESCBC, Name: "des-ede-cbc", KeyLen: 16, BlockSize: des.BlockSize, IVLen: des.BlockSize,
		Provider: ProviderDefault, kind: kindLib, mode: modeCBC, newBlock: edeBlock})
	add(CipherPrimitive{Algorithm: Cipher3DESCBC, Name: "des-ede3-cbc", KeyLen: 24, BlockSize: des.BlockSize, IVLen: des.BlockSize,
		Provider: ProviderDefault, kind: kindLib, mode: modeCBC, newBlock: edeBlock})
	for _, kl := range []int{8, 16, 24} {
		add(CipherPrimitive{Algorithm: Cipher3DESCTR, Name: "des-ede3-ecb", KeyLen: kl, BlockSize: des.BlockSize, IVLen: des.BlockSize,
			Provider: ProviderDefault, kind: kindDES3CTR, mode: modeECB, newBlock: edeBlock})
	}

	add(CipherPrimitive{Algorithm: CipherDESCBC, Name: "des-cbc", KeyLen: 8, BlockSize: des.BlockSize, IVLen: des.BlockSize,
		Provider: ProviderLegacy, kind: kindLib, mode: modeCBC, newBlock: desBlock})
	add(CipherPrimitive{Algorithm: CipherDESDOCSISBPI, Name: "des-docsisbpi", KeyLen: 8, BlockSize: des.BlockSize, IVLen: des.BlockSize,
		Provider: ProviderLegacy, kind: kindBPI, mode: modeCBC, newBlock: desBlock})
	return t
}()

// ResolveCipher maps a cipher algorithm and key length to a primitive.
// Pairs without a mapping fail with ErrUnsupported.
func ResolveCipher(algo CipherAlgorithm, keyLen int) (*CipherPrimitive, error) {
	p, ok := cipherTable[cipherKey{algo, keyLen}]
	if !ok {
		return nil, newError(ErrUnsupported, ErrCodeUnsupported, "cipher %s with %d byte key", algo, keyLen)
	}
	return &p, nil
}

// CipherKeyEDE expands a DES key into the 24-byte K1||K2||K3 form used by
// triple DES: 24 bytes are copied, 16 bytes become K1||K2||K1 and 8 bytes
// become K||K||K.
func CipherKeyEDE(key []byte) ([]byte, error) {
	out := make([]byte, 24)
	switch len(key) {
	case 24:
		copy(out, key)
	case 16:
		copy(out, key)
		copy(out[16:], key[:8])
	case 8:
		copy(out, key)
		copy(out[8:], key)
		copy(out[16:], key)
	default:
		return nil, newError(ErrInvalidKeyLength, ErrCodeInvalidKeyLen, "triple DES key must be 8, 16 or 24 bytes (got %d)", len(key))
	}
	return out, nil
}

// newContexts builds the primary contexts for the primitive. The second
// context is only set for DOCSIS BPI, where it is the ECB residual cipher.
func (p *CipherPrimitive) newContexts(key []byte, encrypt bool) (cipherContext, *blockCipherContext, error) {
	block, err := p.newBlock(key)
	if err != nil {
		return nil, nil, wrapError(ErrProcessing, err, ErrCodeProcessing, "failed to create "+p.Name+" cipher")
	}
	switch p.kind {
	case kindDES3CTR:
		return newBlockCipherContext(block, modeECB, true), nil, nil
	case kindBPI:
		return newBlockCipherContext(block, modeCBC, encrypt), newBlockCipherContext(block, modeECB, true), nil
	default:
		return newBlockCipherContext(block, p.mode, encrypt), nil, nil
	}
}

type authKind uint8

const (
	authDigest authKind = iota + 1
	authHMAC
	authCMAC
	authGMAC
)

// AuthPrimitive is a resolved digest or MAC.
type AuthPrimitive struct {
	Algorithm  AuthAlgorithm
	Name       string
	DigestSize int
	Provider   string

	kind    authKind
	newHash func() hash.Hash
}

type authEntry struct {
	name    string
	kind    authKind
	size    int
	newHash func() hash.Hash
}

func newSHA3224() hash.Hash { return sha3.New224() }
func newSHA3256() hash.Hash { return sha3.New256() }
func newSHA3384() hash.Hash { return sha3.New384() }
func newSHA3512() hash.Hash { return sha3.New512() }

var authTable = map[AuthAlgorithm]authEntry{
	AuthMD5:          {"md5", authDigest, md5.Size, md5.New},
	AuthMD5HMAC:      {"md5-hmac", authHMAC, md5.Size, md5.New},
	AuthSHA1:         {"sha1", authDigest, sha1.Size, sha1.New},
	AuthSHA1HMAC:     {"sha1-hmac", authHMAC, sha1.Size, sha1.New},
	AuthSHA224:       {"sha224", authDigest, sha256.Size224, sha256.New224},
	AuthSHA224HMAC:   {"sha224-hmac", authHMAC, sha256.Size224, sha256.New224},
	AuthSHA256:       {"sha256", authDigest, sha256.Size, sha256.New},
	AuthSHA256HMAC:   {"sha256-hmac", authHMAC, sha256.Size, sha256.New},
	AuthSHA384:       {"sha384", authDigest, sha512.Size384, sha512.New384},
	AuthSHA384HMAC:   {"sha384-hmac", authHMAC, sha512.Size384, sha512.New384},
	AuthSHA512:       {"sha512", authDigest, sha512.Size, sha512.New},
	AuthSHA512HMAC:   {"sha512-hmac", authHMAC, sha512.Size, sha512.New},
	AuthSHA3_224:     {"sha3-224", authDigest, 28, newSHA3224},
	AuthSHA3_224HMAC: {"sha3-224-hmac", authHMAC, 28, newSHA3224},
	AuthSHA3_256:     {"sha3-256", authDigest, 32, newSHA3256},
	AuthSHA3_256HMAC: {"sha3-256-hmac", authHMAC, 32, newSHA3256},
	AuthSHA3_384:     {"sha3-384", authDigest, 48, newSHA3384},
	AuthSHA3_384HMAC: {"sha3-384-hmac", authHMAC, 48, newSHA3384},
	AuthSHA3_512:     {"sha3-512", authDigest, 64, newSHA3512},
	AuthSHA3_512HMAC: {"sha3-512-hmac", authHMAC, 64, newSHA3512},
	AuthAESCMAC:      {"aes-cmac", authCMAC, aes.BlockSize, nil},
	AuthAESGMAC:      {"aes-gmac", authGMAC, 16, nil},
}

// maxDigestSize bounds every digest the engine produces.
const maxDigestSize = sha512.Size

// ResolveAuth maps an auth algorithm and key length to a primitive. Plain
// digests ignore the key length, HMAC accepts any non-empty key, CMAC and
// GMAC need an AES key length.
func ResolveAuth(algo AuthAlgorithm, keyLen int) (*AuthPrimitive, error) {
	e, ok := authTable[algo]
	if !ok {
		return nil, newError(ErrUnsupported, ErrCodeUnsupported, "auth algorithm %s", algo)
	}
	if e.kind == authHMAC && keyLen == 0 {
		return nil, newError(ErrUnsupported, ErrCodeUnsupported, "auth %s without a key", algo)
	}
	if e.kind == authCMAC || e.kind == authGMAC {
		switch keyLen {
		case 16, 24, 32:
		default:
			return nil, newError(ErrUnsupported, ErrCodeUnsupported, "auth %s with %d byte key", algo, keyLen)
		}
	}
	return &AuthPrimitive{
		Algorithm:  algo,
		Name:       e.name,
		DigestSize: e.size,
		Provider:   ProviderDefault,
		kind:       e.kind,
		newHash:    e.newHash,
	}, nil
}

// newContext builds a keyed auth context. GMAC is served by the AEAD path and
// has no auth context.
func (p *AuthPrimitive) newContext(key []byte) (authContext, error) {
	switch p.kind {
	case authDigest:
		return newHashContext(func() (hash.Hash, error) { return p.newHash(), nil })
	case authHMAC:
		return newHashContext(func() (hash.Hash, error) { return hmac.New(p.newHash, key), nil })
	case authCMAC:
		return newHashContext(func() (hash.Hash, error) {
			block, err := aes.NewCipher(key)
			if err != nil {
				return nil, err
			}
			return cmac.New(block)
		})
	default:
		return nil, newError(ErrUnsupported, ErrCodeUnsupported, "auth %s has no standalone context", p.Name)
	}
}

// AEADPrimitive is a resolved AEAD algorithm.
type AEADPrimitive struct {
	Algorithm AEADAlgorithm
	Name      string
	KeyLen    int
	Provider  string

	newAEAD  func(key []byte, ivLen, tagLen int) (cipher.AEAD, error)
	validTag func(n int) bool
}

func newGCM(key []byte, ivLen, tagLen int) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if ivLen == 12 {
		return cipher.NewGCM(block)
	}
	return cipher.NewGCMWithNonceSize(block, ivLen)
}

func newCCM(key []byte, ivLen, tagLen int) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	c, err := ccm.NewCCM(block, tagLen, ivLen)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newChaCha20Poly1305(key []byte, ivLen, tagLen int) (cipher.AEAD, error) {
	switch ivLen {
	case chacha20poly1305.NonceSize:
		return chacha20poly1305.New(key)
	case chacha20poly1305.NonceSizeX:
		return chacha20poly1305.NewX(key)
	}
	return nil, fmt.Errorf("chacha20-poly1305: unsupported nonce length %d", ivLen)
}

func tag16(n int) bool { return n == 16 }

func ccmTag(n int) bool { return n >= 4 && n <= 16 && n%2 == 0 }

// ResolveAEAD maps an AEAD algorithm and key length to a primitive.
func ResolveAEAD(algo AEADAlgorithm, keyLen int) (*AEADPrimitive, error) {
	switch algo {
	case AEADAESGCM, AEADAESCCM:
		switch keyLen {
		case 16, 24, 32:
		default:
			return nil, newError(ErrUnsupported, ErrCodeUnsupported, "aead %s with %d byte key", algo, keyLen)
		}
		if algo == AEADAESGCM {
			return &AEADPrimitive{Algorithm: algo, Name: "aes-gcm", KeyLen: keyLen, Provider: ProviderDefault,
				newAEAD: newGCM, validTag: tag16}, nil
		}
		return &AEADPrimitive{Algorithm: algo, Name: "aes-ccm", KeyLen: keyLen, Provider: ProviderDefault,
			newAEAD: newCCM, validTag: ccmTag}, nil
	case AEADChaCha20Poly1305:
		if keyLen != chacha20poly1305.KeySize {
			return nil, newError(ErrUnsupported, ErrCodeUnsupported, "aead %s with %d byte key", algo, keyLen)
		}
		return &AEADPrimitive{Algorithm: algo, Name: "chacha20-poly1305", KeyLen: keyLen, Provider: ProviderDefault,
			newAEAD: newChaCha20Poly1305, validTag: tag16}, nil
	}
	return nil, newError(ErrUnsupported, ErrCodeUnsupported, "aead algorithm %s", algo)
}

// gmacPrimitive is the GCM primitive GMAC sessions run on.
func gmacPrimitive(keyLen int) (*AEADPrimitive, error) {
	return ResolveAEAD(AEADAESGCM, keyLen)
}
