// arena.go: Lane-local arena of sessionless session slots.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

// sessionArena hands out preallocated sessions to sessionless operations.
// It belongs to one lane and is not safe for concurrent use.
type sessionArena struct {
	slots []Session
	free  []*Session
}

func newSessionArena(size int) *sessionArena {
	a := &sessionArena{
		slots: make([]Session, size),
		free:  make([]*Session, 0, size),
	}
	for i := range a.slots {
		a.free = append(a.free, &a.slots[i])
	}
	return a
}

// acquire takes a slot, or returns nil when the arena is exhausted.
func (a *sessionArena) acquire() *Session {
	n := len(a.free)
	if n == 0 {
		return nil
	}
	s := a.free[n-1]
	a.free[n-1] = nil
	a.free = a.free[:n-1]
	return s
}

// release wipes s and puts it back.
func (a *sessionArena) release(s *Session) {
	s.reset()
	a.free = append(a.free, s)
}

func (a *sessionArena) available() int { return len(a.free) }
