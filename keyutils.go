// keyutils.go: Key material helpers: generation, hex import/export, zeroization and fingerprints.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	goerrors "github.com/agilira/go-errors"
)

// randReader is the entropy source for key, IV and asymmetric nonce generation.
var randReader io.Reader = rand.Reader

// KeyToHex encodes key material as a lowercase hexadecimal string.
func KeyToHex(key []byte) string {
	return hex.EncodeToString(key)
}

// KeyFromHex decodes a hexadecimal string to key material.
//
// Example:
//
//	key, err := cryptodev.KeyFromHex("000102030405060708090a0b0c0d0e0f")
//	if err != nil {
//		log.Fatal(err)
//	}
func KeyFromHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, goerrors.Wrap(err, "HEX_DECODE_ERROR", "failed to decode hex key")
	}
	return key, nil
}

// Zeroize overwrites b with zeros. Sessions call it on every key they copied
// when they are reset or destroyed.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GetKeyFingerprint returns the first 8 bytes of SHA-256(key) as 16 hex
// characters, or "" for an empty key. The engine logs fingerprints, never keys.
func GetKeyFingerprint(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	sum := sha256.Sum256(key)
	return fmt.Sprintf("%016x", sum[:8])
}

// GenerateKey returns size bytes of key material from the system CSPRNG.
//
// Example:
//
//	key, err := cryptodev.GenerateKey(32) // AES-256
//	if err != nil {
//		log.Fatal(err)
//	}
func GenerateKey(size int) ([]byte, error) {
	if size <= 0 {
		return nil, goerrors.New("INVALID_KEY_SIZE", "key size must be positive")
	}
	key := make([]byte, size)
	if _, err := io.ReadFull(randReader, key); err != nil {
		return nil, goerrors.Wrap(err, "KEY_GEN_ERROR", "failed to generate key")
	}
	return key, nil
}

// GenerateIV returns a random IV or nonce of the given size.
func GenerateIV(size int) ([]byte, error) {
	if size <= 0 {
		return nil, goerrors.New("INVALID_IV_SIZE", "iv size must be positive")
	}
	iv := make([]byte, size)
	if _, err := io.ReadFull(randReader, iv); err != nil {
		return nil, goerrors.Wrap(err, "IV_GEN_ERROR", "failed to generate iv")
	}
	return iv, nil
}
