// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coordinator

import (
	"github.com/pkg/errors"
)

// ErrInterrupted is returned from a coordinator checkpoint after Interrupt
// has been called.  Callers treat it as a normal shutdown.
var ErrInterrupted = errors.New("rollup coordinator interrupted")

// IsInterruptError returns whether the error, at its cause, is
// ErrInterrupted.
func IsInterruptError(err error) bool {
	return errors.Cause(err) == ErrInterrupted
}

// AssertError identifies an error that indicates an internal code consistency
// issue and should be treated as a critical and unrecoverable error.
type AssertError string

// Error returns the assertion error as a human-readable string and satisfies
// the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}
