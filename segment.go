// segment.go: Scatter-gather buffer chains used as operation sources and destinations.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

// Segment is one link of a scatter-gather buffer chain. Data is the valid data
// region of the segment; offsets used by operations are measured over the
// concatenation of every segment's Data, starting at the head of the chain.
type Segment struct {
	Data []byte
	Next *Segment
}

// NewChain links the given byte slices, in order, into a segment chain.
// The slices are not copied. It returns nil when no part is given.
func NewChain(parts ...[]byte) *Segment {
	var head, tail *Segment
	for _, p := range parts {
		seg := &Segment{Data: p}
		if head == nil {
			head = seg
		} else {
			tail.Next = seg
		}
		tail = seg
	}
	return head
}

// SplitChain copies data into a chain of n segments of near-equal length.
// The last segment absorbs the remainder; n is clamped to [1, len(data)].
func SplitChain(data []byte, n int) *Segment {
	if n > len(data) {
		n = len(data)
	}
	if n < 1 {
		n = 1
	}
	size := len(data) / n
	parts := make([][]byte, n)
	for i := 0; i < n; i++ {
		start := i * size
		end := start + size
		if i == n-1 {
			end = len(data)
		}
		parts[i] = append([]byte(nil), data[start:end]...)
	}
	return NewChain(parts...)
}

// Len returns the total data length of the chain.
func (s *Segment) Len() int {
	n := 0
	for seg := s; seg != nil; seg = seg.Next {
		n += len(seg.Data)
	}
	return n
}

// Segments returns the number of links in the chain.
func (s *Segment) Segments() int {
	n := 0
	for seg := s; seg != nil; seg = seg.Next {
		n++
	}
	return n
}

// Contiguous reports whether the chain is a single segment.
func (s *Segment) Contiguous() bool {
	return s != nil && s.Next == nil
}

// Bytes returns a flattened copy of the chain.
func (s *Segment) Bytes() []byte {
	out := make([]byte, 0, s.Len())
	for seg := s; seg != nil; seg = seg.Next {
		out = append(out, seg.Data...)
	}
	return out
}

// locate returns the segment holding the byte at offset and the offset inside it.
func (s *Segment) locate(offset int) (*Segment, int, error) {
	if offset < 0 {
		return nil, 0, newError(ErrInvalidState, ErrCodeInvalidState, "negative offset %d", offset)
	}
	seg := s
	for seg != nil && offset >= len(seg.Data) {
		offset -= len(seg.Data)
		seg = seg.Next
	}
	if seg == nil {
		return nil, 0, newError(ErrInvalidState, ErrCodeInvalidState, "offset runs past the end of the segment chain")
	}
	return seg, offset, nil
}

// region returns the window [offset, offset+n) of the first segment. Callers
// that need a flat destination use it; it fails when the window leaves the segment.
func (s *Segment) region(offset, n int) ([]byte, error) {
	if s == nil || offset < 0 || n < 0 || offset+n > len(s.Data) {
		return nil, newError(ErrInvalidState, ErrCodeInvalidState,
			"region [%d,%d) outside of the first segment", offset, offset+n)
	}
	return s.Data[offset : offset+n], nil
}

// ReadAt copies len(p) bytes starting at the chain offset into p.
func (s *Segment) ReadAt(p []byte, offset int) error {
	if len(p) == 0 {
		return nil
	}
	seg, off, err := s.locate(offset)
	if err != nil {
		return err
	}
	c := segCursor{seg: seg, pos: off}
	return c.read(p)
}

// WriteAt copies p into the chain starting at offset.
func (s *Segment) WriteAt(p []byte, offset int) error {
	if len(p) == 0 {
		return nil
	}
	seg, off, err := s.locate(offset)
	if err != nil {
		return err
	}
	c := segCursor{seg: seg, pos: off}
	return c.write(p)
}

// segCursor walks a chain byte by byte across segment boundaries.
type segCursor struct {
	seg *Segment
	pos int
}

func (c *segCursor) next() error {
	for c.seg != nil && c.pos >= len(c.seg.Data) {
		c.pos -= len(c.seg.Data)
		c.seg = c.seg.Next
	}
	if c.seg == nil {
		return newError(ErrInvalidState, ErrCodeInvalidState, "cursor ran past the end of the segment chain")
	}
	return nil
}

func (c *segCursor) write(p []byte) error {
	for len(p) > 0 {
		if err := c.next(); err != nil {
			return err
		}
		n := copy(c.seg.Data[c.pos:], p)
		c.pos += n
		p = p[n:]
	}
	return nil
}

func (c *segCursor) read(p []byte) error {
	for len(p) > 0 {
		if err := c.next(); err != nil {
			return err
		}
		n := copy(p, c.seg.Data[c.pos:])
		c.pos += n
		p = p[n:]
	}
	return nil
}

func (c *segCursor) skip(n int) {
	c.pos += n
}
