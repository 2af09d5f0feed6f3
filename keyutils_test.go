// keyutils_test.go: Test cases for key utilities.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"errors"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}

func TestGenerateKey_ValidLength(t *testing.T) {
	for _, size := range []int{8, 16, 24, 32} {
		key, err := GenerateKey(size)
		if err != nil {
			t.Fatalf("GenerateKey(%d) error: %v", size, err)
		}
		if len(key) != size {
			t.Errorf("Expected key length %d, got %d", size, len(key))
		}
		Zeroize(key)
	}
	if _, err := GenerateKey(0); err == nil {
		t.Error("Expected error for zero key size")
	}
}

func TestGenerateIV_ValidAndInvalid(t *testing.T) {
	iv, err := GenerateIV(12)
	if err != nil {
		t.Fatalf("GenerateIV() error: %v", err)
	}
	if len(iv) != 12 {
		t.Errorf("Expected iv length 12, got %d", len(iv))
	}
	if _, err := GenerateIV(-5); err == nil {
		t.Error("Expected error for negative iv size")
	}
}

func TestKeyHexRoundTrip(t *testing.T) {
	key, _ := GenerateKey(24)
	restored, err := KeyFromHex(KeyToHex(key))
	if err != nil {
		t.Fatalf("KeyFromHex() error: %v", err)
	}
	if string(key) != string(restored) {
		t.Errorf("Hex round-trip failed: expected %x, got %x", key, restored)
	}
	if _, err := KeyFromHex("nothex!!"); err == nil {
		t.Error("Expected error for invalid hex input")
	}
}

func TestZeroize(t *testing.T) {
	key := []byte("sensitive-data")
	Zeroize(key)
	for _, b := range key {
		if b != 0 {
			t.Error("Zeroize failed: found non-zero byte")
		}
	}
	Zeroize(nil) // must not panic
}

func TestGetKeyFingerprint(t *testing.T) {
	fp1 := GetKeyFingerprint([]byte("key-one-1234567890123456"))
	fp2 := GetKeyFingerprint([]byte("key-two-1234567890123456"))
	if fp1 == fp2 {
		t.Error("Expected different fingerprints for different keys")
	}
	if len(fp1) != 16 {
		t.Errorf("Expected 16 hex characters, got %q", fp1)
	}
	if GetKeyFingerprint(nil) != "" {
		t.Error("Expected empty fingerprint for nil key")
	}
}

func TestGenerateWithFailingEntropy(t *testing.T) {
	original := randReader
	defer func() { randReader = original }()
	randReader = failingReader{}

	if _, err := GenerateKey(16); err == nil {
		t.Error("Expected error when random generation fails")
	}
	if _, err := GenerateIV(16); err == nil {
		t.Error("Expected error when random generation fails")
	}
}
