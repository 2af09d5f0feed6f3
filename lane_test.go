// lane_test.go: Lane internals: session arena and sessionless slots.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionArena(t *testing.T) {
	a := newSessionArena(2)
	assert.Equal(t, 2, a.available())

	s1 := a.acquire()
	s2 := a.acquire()
	require.NotNil(t, s1)
	require.NotNil(t, s2)
	assert.NotSame(t, s1, s2)
	assert.Nil(t, a.acquire(), "arena exhausted")
	assert.Equal(t, 0, a.available())

	require.NoError(t, buildSession(s1, aesCBCStep(CipherOpEncrypt), 1, allProviders{}))
	assert.Equal(t, ChainCipherOnly, s1.chain)
	a.release(s1)
	assert.Equal(t, 1, a.available())
	assert.Equal(t, ChainNotSupported, s1.chain, "released slots are wiped")
	assert.Nil(t, s1.cipher.key)

	assert.Same(t, s1, a.acquire())
}

func TestSessionlessReturnsSlot(t *testing.T) {
	l := newLane(0, 8, 2, allProviders{})
	op := NewSessionlessOp(aesCBCStep(CipherOpEncrypt), &SymOp{
		Src:    NewChain(make([]byte, 32)),
		Cipher: DataRegion{Length: 32},
	}, make([]byte, 16))

	require.Equal(t, 1, l.Enqueue([]*Operation{op}))
	assert.Equal(t, StatusSuccess, op.Status)
	assert.Nil(t, op.Session)
	assert.Equal(t, 2, l.arena.available())

	// A failing operation hands its slot back too.
	failing := NewSessionlessOp(aesCBCStep(CipherOpEncrypt), &SymOp{
		Src:    NewChain(make([]byte, 20)),
		Cipher: DataRegion{Length: 20},
	}, make([]byte, 16))
	require.Equal(t, 1, l.Enqueue([]*Operation{failing}))
	assert.Equal(t, StatusError, failing.Status)
	assert.Equal(t, 2, l.arena.available())

	// So does one whose transform chain cannot be built.
	broken := NewSessionlessOp(CipherStep(CipherXform{Algorithm: CipherAESCBC, Key: make([]byte, 7)}), &SymOp{
		Src: NewChain(make([]byte, 16)),
	}, nil)
	assert.Equal(t, 0, l.Enqueue([]*Operation{broken}))
	assert.Equal(t, StatusInvalidSession, broken.Status)
	assert.Equal(t, 2, l.arena.available())
}

func TestSessionlessArenaExhausted(t *testing.T) {
	l := newLane(0, 8, 0, allProviders{})
	op := NewSessionlessOp(aesCBCStep(CipherOpEncrypt), &SymOp{
		Src:    NewChain(make([]byte, 16)),
		Cipher: DataRegion{Length: 16},
	}, make([]byte, 16))
	assert.Equal(t, 0, l.Enqueue([]*Operation{op}))
	assert.Equal(t, StatusInvalidSession, op.Status)
	assert.Equal(t, uint64(1), l.Stats().EnqueueErrCount)
}

func TestSessionlessHonoursProviders(t *testing.T) {
	l := newLane(0, 8, 1, onlyProviders{ProviderDefault})
	op := NewSessionlessOp(CipherStep(CipherXform{
		Algorithm: CipherDESCBC, Key: make([]byte, 8), IV: IVParams{Length: 8},
	}), &SymOp{Src: NewChain(make([]byte, 8)), Cipher: DataRegion{Length: 8}}, make([]byte, 8))
	assert.Equal(t, 0, l.Enqueue([]*Operation{op}))
	assert.Equal(t, StatusInvalidSession, op.Status)
	assert.Equal(t, 1, l.arena.available())
}

func TestLaneNilOperation(t *testing.T) {
	l := newLane(3, 8, 1, allProviders{})
	assert.Equal(t, 0, l.Enqueue([]*Operation{nil}))
	st := l.Stats()
	assert.Equal(t, 3, st.ID)
	assert.Equal(t, uint64(1), st.EnqueueErrCount)
	assert.Zero(t, st.EnqueuedCount)
}
