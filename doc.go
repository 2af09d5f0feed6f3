// Package cryptodev is a poll-mode symmetric and asymmetric crypto engine.
//
// Callers describe the work once as a session (algorithms, keys, chain order),
// then submit batches of operations to execution lanes. Enqueue processes the
// batch synchronously and parks the completed operations on the lane's
// completion queue; Dequeue collects them with their status filled in.
//
// The engine offers:
//   - Ciphers: AES-CBC/CTR/ECB, 3DES-CBC/CTR, DES-CBC (legacy provider)
//   - DOCSIS BPI for AES and DES, including runt frames and residual blocks
//   - Digests and MACs: MD5, SHA-1, SHA-2, SHA-3, their HMACs, AES-CMAC, AES-GMAC
//   - AEAD: AES-GCM, AES-CCM, ChaCha20-Poly1305
//   - Public key: RSA, DSA, DH, modular exponentiation and inverse, EC
//     fixed-point multiplication, SM2 and EdDSA (Ed25519, Ed448)
//   - Segmented buffers processed in place, including segments shorter than a block
//   - Per-lane context clones so sessions can be shared between lanes
//
// # Quick Start
//
//	engine, err := cryptodev.NewEngine(cryptodev.Config{Lanes: 2})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := engine.Init(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Shutdown()
//
//	sess, err := engine.BuildSession(cryptodev.CipherStep(cryptodev.CipherXform{
//		Algorithm: cryptodev.CipherAESCBC,
//		Op:        cryptodev.CipherOpEncrypt,
//		Key:       key,
//		IV:        cryptodev.IVParams{Offset: 0, Length: 16},
//	}))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sess.Destroy()
//
//	src := cryptodev.SplitChain(payload, 3)
//	op := cryptodev.NewSymOp(sess, &cryptodev.SymOp{
//		Src:    src,
//		Cipher: cryptodev.DataRegion{Offset: 0, Length: src.Len()},
//	}, iv)
//
//	engine.Enqueue(0, []*cryptodev.Operation{op})
//	for _, done := range engine.Dequeue(0, 32) {
//		fmt.Println(done.Status)
//	}
//
// # Chains
//
// A session is built from one transform or a cipher/auth pair. The order of
// the pair decides the plan: cipher then auth (encrypt-then-MAC) or auth then
// cipher. AEAD transforms and AES-GMAC run as a single combined pass. DOCSIS
// BPI runs alone. Anything else is rejected with ErrNotSupported.
//
// Digests are written after the authenticated region unless SymOp.Digest is
// set, and read from the same place when verifying.
//
// # Error Handling
//
// Build-time errors wrap exported sentinels, so errors.Is works on them, and
// carry a coded github.com/agilira/go-errors value with the detail:
//
//	sess, err := engine.BuildSession(x)
//	if errors.Is(err, cryptodev.ErrUnsupported) {
//		// no primitive for this algorithm and key length
//	}
//
// Processing errors never cross an operation: they are turned into the
// operation's Status.
//
// # Providers
//
// Primitives belong to providers. Init loads the default provider, and the
// legacy provider when Config.LegacyProvider is set; single DES needs the
// legacy provider. Shutdown unloads them.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package cryptodev
