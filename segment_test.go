// segment_test.go: Segment chain tests.
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

func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestNewChain(t *testing.T) {
	assert.Nil(t, NewChain())

	c := NewChain([]byte{1, 2}, []byte{3}, []byte{4, 5, 6})
	require.NotNil(t, c)
	assert.Equal(t, 6, c.Len())
	assert.Equal(t, 3, c.Segments())
	assert.False(t, c.Contiguous())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, c.Bytes())
	assert.True(t, NewChain([]byte{1}).Contiguous())
}

func TestSplitChain(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		n        int
		segments int
	}{
		{"single", 10, 1, 1},
		{"even", 10, 2, 2},
		{"remainder", 10, 3, 3},
		{"clamped to length", 3, 5, 3},
		{"zero segments", 4, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := sequence(tt.length)
			c := SplitChain(data, tt.n)
			assert.Equal(t, tt.segments, c.Segments())
			assert.Equal(t, data, c.Bytes())

			// The chain owns copies.
			c.Data[0] ^= 0xff
			assert.Equal(t, byte(0), data[0])
		})
	}
}

func TestSegmentReadWriteAcrossBoundaries(t *testing.T) {
	c := NewChain(make([]byte, 3), make([]byte, 2), make([]byte, 5))

	require.NoError(t, c.WriteAt([]byte{9, 8, 7, 6}, 2))
	assert.Equal(t, []byte{0, 0, 9, 8, 7, 6, 0, 0, 0, 0}, c.Bytes())

	got := make([]byte, 4)
	require.NoError(t, c.ReadAt(got, 2))
	assert.Equal(t, []byte{9, 8, 7, 6}, got)

	assert.ErrorIs(t, c.WriteAt([]byte{1, 2}, 9), ErrInvalidState)
	assert.ErrorIs(t, c.ReadAt(got, 10), ErrInvalidState)
	assert.ErrorIs(t, c.ReadAt(got, -1), ErrInvalidState)
	assert.NoError(t, c.ReadAt(nil, 100))
}

func TestSegmentLocateSkipsEmptySegments(t *testing.T) {
	c := NewChain([]byte{1, 2}, []byte{}, []byte{3})
	seg, off, err := c.locate(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, seg.Data)
	assert.Equal(t, 0, off)
}

func TestSegmentRegion(t *testing.T) {
	c := NewChain(sequence(8), sequence(4))

	r, err := c.region(2, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3, 4, 5}, r)

	_, err = c.region(6, 4)
	assert.ErrorIs(t, err, ErrInvalidState)

	var empty *Segment
	_, err = empty.region(0, 0)
	assert.ErrorIs(t, err, ErrInvalidState)
}
