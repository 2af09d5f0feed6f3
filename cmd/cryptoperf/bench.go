// bench.go: Per-lane throughput run.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"sync"
	"time"

	cryptodev "github.com/agilira/hephaestus"
	"github.com/spf13/cobra"
)

type benchOptions struct {
	ops       int
	size      int
	segments  int
	burst     int
	algorithm string
}

func newBenchCmd(cfgFile *string) *cobra.Command {
	opts := benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure throughput on every lane",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := startEngine(cmd.Context(), *cfgFile)
			if err != nil {
				return err
			}
			defer func() { _ = engine.Shutdown() }()

			elapsed, err := runBench(engine, opts)
			if err != nil {
				return err
			}
			st := engine.Stats()
			total := float64(st.SucceededCount)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d lanes, %d ops of %d bytes in %s\n",
				opts.algorithm, engine.LaneCount(), st.SucceededCount, opts.size, elapsed.Round(time.Millisecond))
			fmt.Fprintf(cmd.OutOrStdout(), "%.0f ops/s, %.1f MB/s\n",
				total/elapsed.Seconds(), total*float64(opts.size)/elapsed.Seconds()/1e6)
			for _, ls := range st.Lanes {
				fmt.Fprintf(cmd.OutOrStdout(), "lane %d: enqueued=%d dequeued=%d failed=%d\n",
					ls.ID, ls.EnqueuedCount, ls.DequeuedCount, ls.FailedCount)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.ops, "ops", 100000, "operations per lane")
	cmd.Flags().IntVar(&opts.size, "size", 1024, "payload size in bytes")
	cmd.Flags().IntVar(&opts.segments, "segments", 1, "segments per payload")
	cmd.Flags().IntVar(&opts.burst, "burst", 32, "operations per enqueue call")
	cmd.Flags().StringVar(&opts.algorithm, "algorithm", "aes-cbc", "aes-cbc, aes-ctr, aes-gcm or sha256-hmac")
	return cmd
}

func benchXform(algorithm string, key []byte) (*cryptodev.Xform, int, error) {
	switch algorithm {
	case "aes-cbc":
		return cryptodev.CipherStep(cryptodev.CipherXform{
			Algorithm: cryptodev.CipherAESCBC, Op: cryptodev.CipherOpEncrypt,
			Key: key, IV: cryptodev.IVParams{Length: 16},
		}), 0, nil
	case "aes-ctr":
		return cryptodev.CipherStep(cryptodev.CipherXform{
			Algorithm: cryptodev.CipherAESCTR, Op: cryptodev.CipherOpEncrypt,
			Key: key, IV: cryptodev.IVParams{Length: 16},
		}), 0, nil
	case "aes-gcm":
		return cryptodev.AEADStep(cryptodev.AEADXform{
			Algorithm: cryptodev.AEADAESGCM, Op: cryptodev.AEADOpEncrypt,
			Key: key, IV: cryptodev.IVParams{Length: 12}, DigestLength: 16,
		}), 16, nil
	case "sha256-hmac":
		return cryptodev.AuthStep(cryptodev.AuthXform{
			Algorithm: cryptodev.AuthSHA256HMAC, Op: cryptodev.AuthOpGenerate, Key: key,
		}), 32, nil
	}
	return nil, 0, fmt.Errorf("unknown algorithm %q", algorithm)
}

// runBench drives every lane from its own goroutine and returns the wall time.
func runBench(engine *cryptodev.Engine, opts benchOptions) (time.Duration, error) {
	if opts.size <= 0 || opts.size%16 != 0 || opts.burst <= 0 || opts.segments <= 0 {
		return 0, fmt.Errorf("size must be a positive multiple of 16; burst and segments must be positive")
	}
	key, err := cryptodev.GenerateKey(16)
	if err != nil {
		return 0, err
	}
	defer cryptodev.Zeroize(key)
	iv, err := cryptodev.GenerateIV(16)
	if err != nil {
		return 0, err
	}

	x, digestLen, err := benchXform(opts.algorithm, key)
	if err != nil {
		return 0, err
	}
	sess, err := engine.BuildSession(x)
	if err != nil {
		return 0, err
	}
	defer sess.Destroy()
	cryptodev.WarmupPools(opts.burst)

	var wg sync.WaitGroup
	start := time.Now()
	for lane := 0; lane < engine.LaneCount(); lane++ {
		wg.Add(1)
		go func(lane int) {
			defer wg.Done()
			benchLane(engine, sess, lane, opts, digestLen, iv)
		}(lane)
	}
	wg.Wait()
	return time.Since(start), nil
}

func benchLane(engine *cryptodev.Engine, sess *cryptodev.Session, lane int, opts benchOptions, digestLen int, private []byte) {
	ops := make([]*cryptodev.Operation, opts.burst)
	for i := range ops {
		sym := &cryptodev.SymOp{
			Src:    cryptodev.SplitChain(make([]byte, opts.size), opts.segments),
			Digest: make([]byte, digestLen),
		}
		switch sess.ChainOrder() {
		case cryptodev.ChainAuthOnly:
			sym.Auth = cryptodev.DataRegion{Length: opts.size}
		case cryptodev.ChainCombined:
			sym.Src = cryptodev.NewChain(make([]byte, opts.size))
			sym.AEAD = cryptodev.DataRegion{Length: opts.size}
		default:
			sym.Cipher = cryptodev.DataRegion{Length: opts.size}
		}
		ops[i] = cryptodev.NewSymOp(sess, sym, private)
	}

	for done := 0; done < opts.ops; {
		n := opts.burst
		if left := opts.ops - done; left < n {
			n = left
		}
		queued := engine.Enqueue(lane, ops[:n])
		for drained := 0; drained < queued; {
			drained += len(engine.Dequeue(lane, queued-drained))
		}
		if queued == 0 {
			return
		}
		done += queued
	}
}
