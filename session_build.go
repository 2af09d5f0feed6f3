// session_build.go: Session parameter builder.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	timecache "github.com/agilira/go-timecache"
)

// ccmAADOffset is where CCM's AAD starts inside the caller's AAD field; the
// bytes before it are reserved for the B0 block and the encoded AAD length.
const ccmAADOffset = 18

// providerSet tells the builder which primitive providers are loaded.
type providerSet interface {
	Loaded(name string) bool
}

// allProviders is a providerSet with every provider loaded.
type allProviders struct{}

func (allProviders) Loaded(string) bool { return true }

// ChainOrderOf derives the execution plan of a transform chain. Anything other
// than a single step or a cipher/auth pair is rejected with ErrNotSupported.
func ChainOrderOf(x *Xform) (ChainOrder, error) {
	if x == nil {
		return ChainNotSupported, newError(ErrNotSupported, ErrCodeNotSupported, "empty transform chain")
	}
	if x.Next == nil {
		switch x.Type {
		case XformCipher:
			return ChainCipherOnly, nil
		case XformAuth:
			return ChainAuthOnly, nil
		case XformAEAD:
			return ChainCombined, nil
		}
	} else if x.Next.Next == nil {
		switch {
		case x.Type == XformCipher && x.Next.Type == XformAuth:
			return ChainCipherAuth, nil
		case x.Type == XformAuth && x.Next.Type == XformCipher:
			return ChainAuthCipher, nil
		}
	}
	return ChainNotSupported, newError(ErrNotSupported, ErrCodeNotSupported, "unsupported transform chain")
}

// buildSession fills s from the transform chain. On any failure s is reset,
// so a session is either fully built or empty.
func buildSession(s *Session, x *Xform, laneCount int, providers providerSet) (err error) {
	order, err := ChainOrderOf(x)
	if err != nil {
		return err
	}

	var (
		cx *CipherXform
		ax *AuthXform
		ex *AEADXform
	)
	for step := x; step != nil; step = step.Next {
		switch step.Type {
		case XformCipher:
			cx = step.Cipher
			if cx == nil {
				return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "cipher transform without parameters")
			}
		case XformAuth:
			ax = step.Auth
			if ax == nil {
				return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "auth transform without parameters")
			}
		case XformAEAD:
			ex = step.AEAD
			if ex == nil {
				return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "aead transform without parameters")
			}
		}
	}

	s.chain = order
	defer func() {
		if err != nil {
			s.reset()
		}
	}()

	if cx != nil {
		if err = s.setCipher(cx, providers); err != nil {
			return err
		}
	}
	if ax != nil {
		if err = s.setAuth(ax, providers); err != nil {
			return err
		}
	}
	if ex != nil {
		if err = s.setAEAD(ex, providers); err != nil {
			return err
		}
	}

	if laneCount > 1 {
		s.lanes = make([]laneContext, laneCount)
	}
	s.createdAt = timecache.CachedTime().UTC()
	return nil
}

func checkProvider(providers providerSet, name, algo string) error {
	if !providers.Loaded(name) {
		return newError(ErrProviderNotLoaded, ErrCodeProviderMissing, "provider %s required by %s is not loaded", name, algo)
	}
	return nil
}

func (s *Session) setCipher(x *CipherXform, providers providerSet) error {
	prim, err := ResolveCipher(x.Algorithm, len(x.Key))
	if err != nil {
		return err
	}
	if err := checkProvider(providers, prim.Provider, prim.Name); err != nil {
		return err
	}
	if prim.IVLen > 0 && x.IV.Length != prim.IVLen {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument,
			"%s needs a %d byte iv (got %d)", x.Algorithm, prim.IVLen, x.IV.Length)
	}
	if prim.kind == kindBPI {
		if s.chain != ChainCipherOnly {
			return newError(ErrNotSupported, ErrCodeNotSupported, "%s cannot be chained with authentication", x.Algorithm)
		}
		s.chain = ChainCipherBPI
	}

	s.cipher = cipherState{
		prim:    prim,
		encrypt: x.Op == CipherOpEncrypt,
		key:     append([]byte(nil), x.Key...),
	}
	s.iv = x.IV
	s.primary.cipher, s.primary.bpi, err = s.buildCipherContexts()
	return err
}

func (s *Session) setAuth(x *AuthXform, providers providerSet) error {
	prim, err := ResolveAuth(x.Algorithm, len(x.Key))
	if err != nil {
		return err
	}
	if err := checkProvider(providers, prim.Provider, prim.Name); err != nil {
		return err
	}

	if prim.kind == authGMAC {
		if s.chain != ChainAuthOnly {
			return newError(ErrNotSupported, ErrCodeNotSupported, "aes-gmac cannot be chained with a cipher")
		}
		tagLen := x.DigestLength
		if tagLen == 0 {
			tagLen = prim.DigestSize
		}
		gcm, err := gmacPrimitive(len(x.Key))
		if err != nil {
			return err
		}
		s.chain = ChainCombined
		s.auth.op = x.Op
		s.iv = x.IV
		s.aead = aeadState{
			prim:    gcm,
			encrypt: x.Op == AuthOpGenerate,
			key:     append([]byte(nil), x.Key...),
			ivLen:   x.IV.Length,
			tagLen:  tagLen,
			gmac:    true,
		}
		s.primary.aead, err = s.buildAEADContext()
		return err
	}

	digestLen := x.DigestLength
	if digestLen == 0 {
		digestLen = prim.DigestSize
	}
	if digestLen < 0 || digestLen > prim.DigestSize {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument,
			"%s digest length %d exceeds %d", x.Algorithm, digestLen, prim.DigestSize)
	}
	s.auth = authState{
		prim:      prim,
		op:        x.Op,
		digestLen: digestLen,
		key:       append([]byte(nil), x.Key...),
	}
	s.primary.auth, err = s.buildAuthContext()
	return err
}

func (s *Session) setAEAD(x *AEADXform, providers providerSet) error {
	prim, err := ResolveAEAD(x.Algorithm, len(x.Key))
	if err != nil {
		return err
	}
	if err := checkProvider(providers, prim.Provider, prim.Name); err != nil {
		return err
	}
	if !prim.validTag(x.DigestLength) {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument,
			"%s does not support a %d byte tag", x.Algorithm, x.DigestLength)
	}
	if x.AADLength < 0 {
		return newError(ErrInvalidArgument, ErrCodeInvalidArgument, "negative aad length")
	}

	s.iv = x.IV
	if x.Algorithm == AEADAESCCM {
		// The first IV byte holds the CCM flags; the nonce follows it.
		s.iv.Offset++
	}
	s.auth.op = AuthOpGenerate
	if x.Op == AEADOpDecrypt {
		s.auth.op = AuthOpVerify
	}
	s.aead = aeadState{
		prim:    prim,
		encrypt: x.Op == AEADOpEncrypt,
		key:     append([]byte(nil), x.Key...),
		ivLen:   x.IV.Length,
		tagLen:  x.DigestLength,
		aadLen:  x.AADLength,
	}
	s.primary.aead, err = s.buildAEADContext()
	return err
}

// buildCipherContexts creates fresh cipher contexts from the stored key.
func (s *Session) buildCipherContexts() (cipherContext, *blockCipherContext, error) {
	return s.cipher.prim.newContexts(s.cipher.key, s.cipher.encrypt)
}

func (s *Session) buildAuthContext() (authContext, error) {
	return s.auth.prim.newContext(s.auth.key)
}

// buildAEADContext runs the two-phase AEAD setup: lengths first, then the key.
func (s *Session) buildAEADContext() (*aeadContext, error) {
	ctx := newAEADContext(s.aead.prim, s.aead.encrypt)
	if err := ctx.SetIVLength(s.aead.ivLen); err != nil {
		return nil, err
	}
	if err := ctx.SetTagLength(s.aead.tagLen); err != nil {
		return nil, err
	}
	if err := ctx.SetKey(s.aead.key); err != nil {
		return nil, err
	}
	return ctx, nil
}

// BuildSession builds a session for laneCount lanes with every provider
// available. Engines build sessions through Engine.BuildSession, which also
// enforces the loaded provider set.
func BuildSession(x *Xform, laneCount int) (*Session, error) {
	s := &Session{}
	if err := buildSession(s, x, laneCount, allProviders{}); err != nil {
		return nil, err
	}
	return s, nil
}
