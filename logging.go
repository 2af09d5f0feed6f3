// logging.go: Package logger.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Tests and embedding applications may swap it.
var L = clog.NewWithOptions(os.Stderr, clog.Options{
	Prefix: "cryptodev",
	Level:  clog.WarnLevel,
})

// SetLogLevel parses a level name ("debug", "info", "warn", "error") and
// applies it to L. An empty name leaves the level unchanged.
func SetLogLevel(level string) error {
	if level == "" {
		return nil
	}
	lvl, err := clog.ParseLevel(level)
	if err != nil {
		return wrapError(ErrInvalidConfig, err, ErrCodeConfig, "invalid log level")
	}
	L.SetLevel(lvl)
	return nil
}
