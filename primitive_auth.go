// primitive_auth.go: Digest and MAC contexts.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"hash"
)

// authContext computes a digest or MAC incrementally.
type authContext interface {
	// Init returns the context to its keyed state.
	Init() error
	Update(p []byte) error
	// Final writes Size() bytes of digest into dst.
	Final(dst []byte) (int, error)
	Size() int
}

type authDuplicator interface {
	Dup() (authContext, error)
}

// hashContext wraps any hash.Hash: plain digests, HMAC and CMAC all share it,
// the difference lives in the build function.
type hashContext struct {
	build func() (hash.Hash, error)
	h     hash.Hash
}

func newHashContext(build func() (hash.Hash, error)) (*hashContext, error) {
	h, err := build()
	if err != nil {
		return nil, wrapError(ErrProcessing, err, ErrCodeProcessing, "failed to create auth context")
	}
	return &hashContext{build: build, h: h}, nil
}

func (c *hashContext) Init() error {
	c.h.Reset()
	return nil
}

func (c *hashContext) Update(p []byte) error {
	// hash.Hash.Write never returns an error.
	_, _ = c.h.Write(p)
	return nil
}

func (c *hashContext) Final(dst []byte) (int, error) {
	size := c.h.Size()
	if len(dst) < size {
		return 0, newError(ErrProcessing, ErrCodeProcessing, "digest buffer too small")
	}
	sum := c.h.Sum(dst[:0])
	return len(sum), nil
}

func (c *hashContext) Size() int {
	return c.h.Size()
}

func (c *hashContext) Dup() (authContext, error) {
	return newHashContext(c.build)
}
