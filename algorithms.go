// algorithms.go: Algorithm identifiers for cipher, authentication and AEAD transforms.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import "fmt"

// CipherAlgorithm identifies a symmetric cipher algorithm and mode.
type CipherAlgorithm uint8

const (
	CipherAESCBC       CipherAlgorithm = iota + 1 // AES in CBC mode
	CipherAESCTR                                  // AES in counter mode
	CipherAESECB                                  // AES in ECB mode
	CipherAESDOCSISBPI                            // DOCSIS BPI with AES
	Cipher3DESCBC                                 // triple DES in CBC mode (8, 16 or 24 byte keys)
	Cipher3DESCTR                                 // triple DES in counter mode
	CipherDESCBC                                  // single DES in CBC mode
	CipherDESDOCSISBPI                            // DOCSIS BPI with single DES
)

var cipherNames = map[CipherAlgorithm]string{
	CipherAESCBC:       "aes-cbc",
	CipherAESCTR:       "aes-ctr",
	CipherAESECB:       "aes-ecb",
	CipherAESDOCSISBPI: "aes-docsisbpi",
	Cipher3DESCBC:      "3des-cbc",
	Cipher3DESCTR:      "3des-ctr",
	CipherDESCBC:       "des-cbc",
	CipherDESDOCSISBPI: "des-docsisbpi",
}

func (a CipherAlgorithm) String() string {
	if name, ok := cipherNames[a]; ok {
		return name
	}
	return fmt.Sprintf("cipher(%d)", uint8(a))
}

// AuthAlgorithm identifies a digest or MAC algorithm.
type AuthAlgorithm uint8

const (
	AuthMD5 AuthAlgorithm = iota + 1
	AuthMD5HMAC
	AuthSHA1
	AuthSHA1HMAC
	AuthSHA224
	AuthSHA224HMAC
	AuthSHA256
	AuthSHA256HMAC
	AuthSHA384
	AuthSHA384HMAC
	AuthSHA512
	AuthSHA512HMAC
	AuthSHA3_224
	AuthSHA3_224HMAC
	AuthSHA3_256
	AuthSHA3_256HMAC
	AuthSHA3_384
	AuthSHA3_384HMAC
	AuthSHA3_512
	AuthSHA3_512HMAC
	AuthAESCMAC
	AuthAESGMAC
)

var authNames = map[AuthAlgorithm]string{
	AuthMD5:          "md5",
	AuthMD5HMAC:      "md5-hmac",
	AuthSHA1:         "sha1",
	AuthSHA1HMAC:     "sha1-hmac",
	AuthSHA224:       "sha224",
	AuthSHA224HMAC:   "sha224-hmac",
	AuthSHA256:       "sha256",
	AuthSHA256HMAC:   "sha256-hmac",
	AuthSHA384:       "sha384",
	AuthSHA384HMAC:   "sha384-hmac",
	AuthSHA512:       "sha512",
	AuthSHA512HMAC:   "sha512-hmac",
	AuthSHA3_224:     "sha3-224",
	AuthSHA3_224HMAC: "sha3-224-hmac",
	AuthSHA3_256:     "sha3-256",
	AuthSHA3_256HMAC: "sha3-256-hmac",
	AuthSHA3_384:     "sha3-384",
	AuthSHA3_384HMAC: "sha3-384-hmac",
	AuthSHA3_512:     "sha3-512",
	AuthSHA3_512HMAC: "sha3-512-hmac",
	AuthAESCMAC:      "aes-cmac",
	AuthAESGMAC:      "aes-gmac",
}

func (a AuthAlgorithm) String() string {
	if name, ok := authNames[a]; ok {
		return name
	}
	return fmt.Sprintf("auth(%d)", uint8(a))
}

// AEADAlgorithm identifies an authenticated-encryption algorithm.
type AEADAlgorithm uint8

const (
	AEADAESGCM AEADAlgorithm = iota + 1
	AEADAESCCM
	AEADChaCha20Poly1305
)

var aeadNames = map[AEADAlgorithm]string{
	AEADAESGCM:           "aes-gcm",
	AEADAESCCM:           "aes-ccm",
	AEADChaCha20Poly1305: "chacha20-poly1305",
}

func (a AEADAlgorithm) String() string {
	if name, ok := aeadNames[a]; ok {
		return name
	}
	return fmt.Sprintf("aead(%d)", uint8(a))
}

// CipherOp is the direction of a cipher transform.
type CipherOp uint8

const (
	CipherOpEncrypt CipherOp = iota
	CipherOpDecrypt
)

// AuthOp tells whether an auth transform produces or checks a digest.
type AuthOp uint8

const (
	AuthOpGenerate AuthOp = iota
	AuthOpVerify
)

// AEADOp is the direction of an AEAD transform.
type AEADOp uint8

const (
	AEADOpEncrypt AEADOp = iota
	AEADOpDecrypt
)
