// asym_session.go: Asymmetric sessions holding the domain parameters of one family.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"sync"
	"time"

	timecache "github.com/agilira/go-timecache"
)

// AsymSession holds the precomputed parameters of exactly one asymmetric
// family. It is immutable once built and safe to share across lanes until
// Destroy is called.
type AsymSession struct {
	typ AsymXformType

	rsa   *rsaKey
	dsa   *dsaKey
	dh    *dhGroup
	mod   *modParams
	curve Curve
	sm2   *sm2Key
	eddsa *eddsaKey

	createdAt time.Time
	once      sync.Once
}

// BuildAsymSession validates x and builds the session for its family.
func BuildAsymSession(x *AsymXform) (*AsymSession, error) {
	if x == nil {
		return nil, newError(ErrInvalidArgument, ErrCodeInvalidArgument, "nil asymmetric transform")
	}
	s := &AsymSession{typ: x.Type}
	var err error
	switch x.Type {
	case AsymRSA:
		if x.RSA == nil {
			return nil, missingParams(x.Type)
		}
		s.rsa, err = newRSAKey(x.RSA)
	case AsymDSA:
		if x.DSA == nil {
			return nil, missingParams(x.Type)
		}
		s.dsa, err = newDSAKey(x.DSA)
	case AsymDH:
		if x.DH == nil {
			return nil, missingParams(x.Type)
		}
		s.dh, err = newDHGroup(x.DH)
	case AsymModExp:
		s.mod, err = newModParams(x.ModExp, true)
	case AsymModInv:
		s.mod, err = newModParams(x.ModInv, false)
	case AsymECFPM:
		if x.EC == nil {
			return nil, missingParams(x.Type)
		}
		if coordSize(x.EC.Curve) == 0 {
			return nil, newError(ErrUnsupported, ErrCodeUnsupported, "curve %d has no fixed-point multiplication", x.EC.Curve)
		}
		s.curve = x.EC.Curve
	case AsymSM2:
		if x.SM2 == nil {
			return nil, missingParams(x.Type)
		}
		s.curve = CurveSM2
		s.sm2, err = newSM2Key(x.SM2)
	case AsymEdDSA:
		if x.EdDSA == nil {
			return nil, missingParams(x.Type)
		}
		s.curve = x.EdDSA.Curve
		s.eddsa, err = newEdDSAKey(x.EdDSA)
	default:
		return nil, newError(ErrUnsupported, ErrCodeUnsupported, "unknown asymmetric transform %s", x.Type)
	}
	if err != nil {
		L.Error("asymmetric session build failed", "family", x.Type, "err", err)
		return nil, err
	}
	s.createdAt = timecache.CachedTime()
	return s, nil
}

func missingParams(t AsymXformType) error {
	return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "%s transform without parameters", t)
}

// Type returns the family of the session.
func (s *AsymSession) Type() AsymXformType { return s.typ }

// CreatedAt returns the (cached) time the session was built.
func (s *AsymSession) CreatedAt() time.Time { return s.createdAt }

// Destroy wipes private material. Operations must not use the session afterwards.
func (s *AsymSession) Destroy() {
	s.once.Do(func() {
		switch {
		case s.rsa != nil:
			s.rsa.destroy()
		case s.dsa != nil:
			s.dsa.destroy()
		case s.dh != nil:
			s.dh.destroy()
		case s.sm2 != nil:
			s.sm2.destroy()
		case s.eddsa != nil:
			s.eddsa.destroy()
		}
		s.typ = 0
	})
}
