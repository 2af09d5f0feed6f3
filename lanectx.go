// lanectx.go: Per-lane context cache.
//
// A session built for several lanes never streams data through its primary
// contexts. Each lane gets its own copy, made on the lane's first operation
// and kept until the session is destroyed, so lanes never share mutable state.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

// laneContext is the set of contexts one lane runs a session with.
type laneContext struct {
	cipher cipherContext
	bpi    *blockCipherContext
	auth   authContext
	aead   *aeadContext
	ready  bool
}

func (lc *laneContext) release() {
	if c, ok := lc.cipher.(*blockCipherContext); ok {
		c.reset()
	}
	if lc.bpi != nil {
		lc.bpi.reset()
	}
	if lc.aead != nil {
		lc.aead.reset()
	}
	*lc = laneContext{}
}

// contextCloner produces a lane copy of a session's primary contexts.
type contextCloner interface {
	clone(s *Session) (laneContext, error)
}

// dupCloner duplicates contexts natively and rebuilds the ones that cannot be
// duplicated (AEAD contexts).
type dupCloner struct{}

func (dupCloner) clone(s *Session) (laneContext, error) {
	var lc laneContext
	p := &s.primary
	if p.cipher != nil {
		if d, ok := p.cipher.(cipherDuplicator); ok {
			lc.cipher = d.Dup()
		} else {
			c, _, err := s.buildCipherContexts()
			if err != nil {
				return laneContext{}, err
			}
			lc.cipher = c
		}
	}
	if p.bpi != nil {
		lc.bpi = p.bpi.dupBlock()
	}
	if p.auth != nil {
		if d, ok := p.auth.(authDuplicator); ok {
			a, err := d.Dup()
			if err != nil {
				return laneContext{}, err
			}
			lc.auth = a
		} else {
			a, err := s.buildAuthContext()
			if err != nil {
				return laneContext{}, err
			}
			lc.auth = a
		}
	}
	if p.aead != nil {
		a, err := s.buildAEADContext()
		if err != nil {
			return laneContext{}, err
		}
		lc.aead = a
	}
	lc.ready = true
	return lc, nil
}

// rebuildCloner rebuilds every context from the key and parameters kept in the session.
type rebuildCloner struct{}

func (rebuildCloner) clone(s *Session) (laneContext, error) {
	var lc laneContext
	var err error
	if s.primary.cipher != nil {
		if lc.cipher, lc.bpi, err = s.buildCipherContexts(); err != nil {
			return laneContext{}, err
		}
	}
	if s.primary.auth != nil {
		if lc.auth, err = s.buildAuthContext(); err != nil {
			return laneContext{}, err
		}
	}
	if s.primary.aead != nil {
		if lc.aead, err = s.buildAEADContext(); err != nil {
			return laneContext{}, err
		}
	}
	lc.ready = true
	return lc, nil
}

// laneContexts returns the contexts lane laneID must use for s, cloning them
// on first use.
func (s *Session) laneContexts(laneID int) (*laneContext, error) {
	if len(s.lanes) == 0 {
		return &s.primary, nil
	}
	if laneID < 0 || laneID >= len(s.lanes) {
		return nil, newError(ErrLaneOutOfRange, ErrCodeLaneRange,
			"lane %d outside of the %d lanes the session was built for", laneID, len(s.lanes))
	}
	lc := &s.lanes[laneID]
	if !lc.ready {
		cloner := s.cloner
		if cloner == nil {
			cloner = defaultCloner
		}
		c, err := cloner.clone(s)
		if err != nil {
			return nil, err
		}
		*lc = c
	}
	return lc, nil
}
