// kat.go: Known-answer self test.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"fmt"

	cryptodev "github.com/agilira/hephaestus"
	"github.com/spf13/cobra"
)

type knownAnswer struct {
	name    string
	xform   func() *cryptodev.Xform
	input   string // hex
	iv      string // hex
	want    string // hex, expected digest or ciphertext
	private int    // bytes of private area for the IV
	digest  bool
}

var knownAnswers = []knownAnswer{
	{
		name: "aes-128-cbc zero block",
		xform: func() *cryptodev.Xform {
			return cryptodev.CipherStep(cryptodev.CipherXform{
				Algorithm: cryptodev.CipherAESCBC,
				Op:        cryptodev.CipherOpEncrypt,
				Key:       make([]byte, 16),
				IV:        cryptodev.IVParams{Length: 16},
			})
		},
		input:   "00000000000000000000000000000000",
		iv:      "00000000000000000000000000000000",
		want:    "66e94bd4ef8a2c3b884cfa59ca342b2e",
		private: 16,
	},
	{
		name: "hmac-sha256",
		xform: func() *cryptodev.Xform {
			return cryptodev.AuthStep(cryptodev.AuthXform{
				Algorithm: cryptodev.AuthSHA256HMAC,
				Op:        cryptodev.AuthOpGenerate,
				Key:       []byte("key"),
			})
		},
		input:  fmt.Sprintf("%x", "The quick brown fox jumps over the lazy dog"),
		want:   "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		digest: true,
	},
	{
		name: "sha256 abc",
		xform: func() *cryptodev.Xform {
			return cryptodev.AuthStep(cryptodev.AuthXform{
				Algorithm: cryptodev.AuthSHA256,
				Op:        cryptodev.AuthOpGenerate,
			})
		},
		input:  "616263",
		want:   "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		digest: true,
	},
}

func newKATCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "kat",
		Short: "Run known-answer tests through the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := startEngine(cmd.Context(), *cfgFile)
			if err != nil {
				return err
			}
			defer func() { _ = engine.Shutdown() }()

			failed := 0
			for _, ka := range knownAnswers {
				if err := runKnownAnswer(engine, ka); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", ka.name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", ka.name)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d known-answer tests failed", failed, len(knownAnswers))
			}
			return nil
		},
	}
}

func runKnownAnswer(engine *cryptodev.Engine, ka knownAnswer) error {
	sess, err := engine.BuildSession(ka.xform())
	if err != nil {
		return err
	}
	defer sess.Destroy()

	input, err := cryptodev.KeyFromHex(ka.input)
	if err != nil {
		return err
	}
	want, err := cryptodev.KeyFromHex(ka.want)
	if err != nil {
		return err
	}
	private := make([]byte, ka.private)
	if ka.iv != "" {
		iv, err := cryptodev.KeyFromHex(ka.iv)
		if err != nil {
			return err
		}
		copy(private, iv)
	}

	sym := &cryptodev.SymOp{Src: cryptodev.NewChain(input)}
	if ka.digest {
		sym.Auth = cryptodev.DataRegion{Length: len(input)}
		sym.Digest = make([]byte, len(want))
	} else {
		sym.Cipher = cryptodev.DataRegion{Length: len(input)}
	}
	op := cryptodev.NewSymOp(sess, sym, private)

	if engine.Enqueue(0, []*cryptodev.Operation{op}) != 1 {
		return fmt.Errorf("operation not enqueued: %s", op.Status)
	}
	done := engine.Dequeue(0, 1)
	if len(done) != 1 || done[0].Status != cryptodev.StatusSuccess {
		return fmt.Errorf("operation status %s", op.Status)
	}

	got := sym.Src.Bytes()
	if ka.digest {
		got = sym.Digest
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("got %x, want %x", got, want)
	}
	return nil
}
