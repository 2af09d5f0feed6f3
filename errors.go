// errors.go: Error taxonomy and operation status codes for the crypto engine.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Public standard errors. They can be used with errors.Is() for error checking;
// the detail travels in the wrapped go-errors value.
var (
	// ErrInvalidArgument is returned when a transform or operation carries a malformed parameter.
	ErrInvalidArgument = errors.New("cryptodev: invalid argument")

	// ErrInvalidKeyLength is returned when a key length has no meaning for the algorithm.
	ErrInvalidKeyLength = errors.New("cryptodev: invalid key length")

	// ErrUnsupported is returned when an (algorithm, key length) pair has no primitive mapping.
	ErrUnsupported = errors.New("cryptodev: unsupported algorithm")

	// ErrNotSupported is returned for transform chains the engine cannot execute.
	ErrNotSupported = errors.New("cryptodev: transform chain not supported")

	// ErrAuthFailed is returned when a digest, tag or signature does not verify.
	ErrAuthFailed = errors.New("cryptodev: authentication failed")

	// ErrProcessing is returned when a primitive call fails while processing data.
	ErrProcessing = errors.New("cryptodev: processing error")

	// ErrInvalidState is returned when a buffer or context is not in the expected state,
	// for instance when an offset runs past the end of a segment chain.
	ErrInvalidState = errors.New("cryptodev: invalid state")

	// ErrInvalidSession is returned when an operation carries no usable session.
	ErrInvalidSession = errors.New("cryptodev: invalid session")

	// ErrProviderNotLoaded is returned when the provider backing a primitive is not loaded.
	ErrProviderNotLoaded = errors.New("cryptodev: provider not loaded")

	// ErrLaneOutOfRange is returned when a lane id does not exist on the engine.
	ErrLaneOutOfRange = errors.New("cryptodev: lane out of range")

	// ErrInvalidConfig is returned when an engine configuration fails validation.
	ErrInvalidConfig = errors.New("cryptodev: invalid configuration")
)

// Error codes for rich error handling
const (
	ErrCodeInvalidArgument goerrors.ErrorCode = "CRYPTODEV_INVALID_ARGUMENT"
	ErrCodeInvalidKeyLen   goerrors.ErrorCode = "CRYPTODEV_INVALID_KEY_LENGTH"
	ErrCodeUnsupported     goerrors.ErrorCode = "CRYPTODEV_UNSUPPORTED"
	ErrCodeNotSupported    goerrors.ErrorCode = "CRYPTODEV_CHAIN_NOT_SUPPORTED"
	ErrCodeAuthFailed      goerrors.ErrorCode = "CRYPTODEV_AUTH_FAILED"
	ErrCodeProcessing      goerrors.ErrorCode = "CRYPTODEV_PROCESSING"
	ErrCodeInvalidState    goerrors.ErrorCode = "CRYPTODEV_INVALID_STATE"
	ErrCodeInvalidSession  goerrors.ErrorCode = "CRYPTODEV_INVALID_SESSION"
	ErrCodeProviderMissing goerrors.ErrorCode = "CRYPTODEV_PROVIDER_NOT_LOADED"
	ErrCodeLaneRange       goerrors.ErrorCode = "CRYPTODEV_LANE_RANGE"
	ErrCodeConfig          goerrors.ErrorCode = "CRYPTODEV_CONFIG"
)

// newError builds the sentinel+coded error pair used across the package.
func newError(sentinel error, code goerrors.ErrorCode, format string, args ...interface{}) error {
	richErr := goerrors.New(code, fmt.Sprintf(format, args...))
	return fmt.Errorf("%w: %w", sentinel, richErr)
}

// wrapError is newError for a failing primitive call.
func wrapError(sentinel error, err error, code goerrors.ErrorCode, msg string) error {
	richErr := goerrors.Wrap(err, code, msg)
	return fmt.Errorf("%w: %w", sentinel, richErr)
}

// Status is the outcome recorded on an operation once the engine has looked at it.
type Status uint8

const (
	// StatusNotProcessed is the state of an operation before it is processed.
	StatusNotProcessed Status = iota
	// StatusSuccess means every step of the operation completed.
	StatusSuccess
	// StatusAuthFailed means a digest, tag or signature did not verify.
	StatusAuthFailed
	// StatusInvalidSession means the session could not be resolved or built.
	StatusInvalidSession
	// StatusInvalidArgs means the operation requested something the session cannot do.
	StatusInvalidArgs
	// StatusError means a primitive or buffer error stopped the operation.
	StatusError
)

var statusNames = [...]string{
	StatusNotProcessed:   "not_processed",
	StatusSuccess:        "success",
	StatusAuthFailed:     "auth_failed",
	StatusInvalidSession: "invalid_session",
	StatusInvalidArgs:    "invalid_args",
	StatusError:          "error",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// statusFor maps an asymmetric processing error onto the status recorded on the operation.
func statusFor(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrAuthFailed):
		return StatusAuthFailed
	case errors.Is(err, ErrInvalidSession):
		return StatusInvalidSession
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrNotSupported):
		return StatusInvalidArgs
	default:
		return StatusError
	}
}

func isArgumentError(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// symStatus maps a symmetric processing error. Symmetric operations only
// distinguish authentication failures from every other error.
func symStatus(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrAuthFailed):
		return StatusAuthFailed
	case errors.Is(err, ErrInvalidSession):
		return StatusInvalidSession
	default:
		return StatusError
	}
}
