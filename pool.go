// pool.go: Scratch buffer pools for the data path
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"sync"
	"sync/atomic"
)

// Size classes of the scratch pools.
const (
	blockScratchSize  = 32   // one cipher block or IV
	digestScratchSize = 128  // digests, tags and short AAD
	packetScratchSize = 2048 // a packet worth of gathered data
)

var (
	blockPool = sync.Pool{
		New: func() interface{} {
			poolCounters.allocated.Add(1)
			buf := make([]byte, blockScratchSize)
			return &buf
		},
	}

	digestPool = sync.Pool{
		New: func() interface{} {
			poolCounters.allocated.Add(1)
			buf := make([]byte, digestScratchSize)
			return &buf
		},
	}

	packetPool = sync.Pool{
		New: func() interface{} {
			poolCounters.allocated.Add(1)
			buf := make([]byte, packetScratchSize)
			return &buf
		},
	}
)

var poolCounters struct {
	blockGets  atomic.Uint64
	digestGets atomic.Uint64
	packetGets atomic.Uint64
	oversize   atomic.Uint64
	allocated  atomic.Uint64
}

func init() {
	WarmupPools(4)
}

// getBuffer retrieves a buffer of exactly size bytes from the matching pool.
func getBuffer(size int) *[]byte {
	var buf *[]byte
	switch {
	case size <= blockScratchSize:
		poolCounters.blockGets.Add(1)
		buf = blockPool.Get().(*[]byte)
	case size <= digestScratchSize:
		poolCounters.digestGets.Add(1)
		buf = digestPool.Get().(*[]byte)
	case size <= packetScratchSize:
		poolCounters.packetGets.Add(1)
		buf = packetPool.Get().(*[]byte)
	default:
		poolCounters.oversize.Add(1)
		b := make([]byte, size)
		return &b
	}
	*buf = (*buf)[:size]
	return buf
}

// clearBuffer zeroes buf; the loop form is recognised by the compiler as memclr.
func clearBuffer(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// putBuffer zeroes a buffer and returns it to its pool. Buffers of other
// capacities are left to the garbage collector.
func putBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	clearBuffer((*buf)[:cap(*buf)])

	switch cap(*buf) {
	case blockScratchSize:
		blockPool.Put(buf)
	case digestScratchSize:
		digestPool.Put(buf)
	case packetScratchSize:
		packetPool.Put(buf)
	}
}

// gather copies n bytes at offset out of a chain into a pooled buffer.
// The caller returns the buffer with putBuffer.
func gather(src *Segment, offset, n int) (*[]byte, error) {
	if n < 0 {
		return nil, newError(ErrInvalidState, ErrCodeInvalidState, "negative gather length %d", n)
	}
	buf := getBuffer(n)
	if err := src.ReadAt(*buf, offset); err != nil {
		putBuffer(buf)
		return nil, err
	}
	return buf, nil
}

// PoolStats counts pool traffic since the process started. Allocated counts
// pooled buffers created because a pool was empty; Oversize counts requests
// larger than the packet class, which bypass the pools.
type PoolStats struct {
	BlockGets  uint64 `json:"block_gets"`
	DigestGets uint64 `json:"digest_gets"`
	PacketGets uint64 `json:"packet_gets"`
	Oversize   uint64 `json:"oversize"`
	Allocated  uint64 `json:"allocated"`
}

// GetPoolStats returns the current statistics of the pools.
func GetPoolStats() PoolStats {
	return PoolStats{
		BlockGets:  poolCounters.blockGets.Load(),
		DigestGets: poolCounters.digestGets.Load(),
		PacketGets: poolCounters.packetGets.Load(),
		Oversize:   poolCounters.oversize.Load(),
		Allocated:  poolCounters.allocated.Load(),
	}
}

// WarmupPools pre-allocates count buffers in every pool.
func WarmupPools(count int) {
	bufs := make([]*[]byte, 0, 3*count)
	for i := 0; i < count; i++ {
		bufs = append(bufs,
			getBuffer(blockScratchSize),
			getBuffer(digestScratchSize),
			getBuffer(packetScratchSize))
	}
	for _, b := range bufs {
		putBuffer(b)
	}
}
