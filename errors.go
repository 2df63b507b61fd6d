/*
 * errors.go, part of slikmc.
 *
 * Copyright 2026 The slikmc authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import (
	"errors"
	"fmt"
	"strings"
)

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing its type or wrapping it around something else.
type Error interface {
	Error() string
	Decorate(string) []string //Each call returns the "decoration" slice resulting from the current call. An empty string just returns the current value.
}

// CriticalError is an Error that can tell whether it comes from a broken internal invariant (critical)
// or from bad input given at the API boundary (not critical).
type CriticalError interface {
	Error
	Critical() bool
}

// CError is the error type of the chem package.
type CError struct {
	msg      string
	deco     []string
	critical bool
}

// NewError returns a new CError. critical should be true only for broken internal invariants,
// bad input is never critical.
func NewError(msg string, critical bool, deco ...string) CError {
	return CError{msg: msg, deco: deco, critical: critical}
}

func (err CError) Error() string {
	if len(err.deco) == 0 {
		return err.msg
	}
	return fmt.Sprintf("%s: %s", strings.Join(err.deco, ": "), err.msg)
}

// Decorate adds dec to the decoration slice and returns the result.
// Use ErrDecorate when the decorated error has to be passed up.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns true if the error signals a broken internal invariant.
func (err CError) Critical() bool { return err.critical }

// IsCritical returns true if err, or any error it wraps, is a critical error.
// Errors that don't declare themselves as critical or not are taken as critical.
func IsCritical(err error) bool {
	if err == nil {
		return false
	}
	var c CriticalError
	if errors.As(err, &c) {
		return c.Critical()
	}
	return true
}

// ErrDecorate adds the caller's name to err, if it is a chem error,
// and returns it.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(CError); ok {
		e.deco = append(e.deco, caller)
		return e
	}
	return fmt.Errorf("%s: %w", caller, err)
}

// Error messages
const (
	ErrNilData        = "Nil data given"
	ErrOutOfRange     = "Index out of range"
	ErrNotAttached    = "The view doesn't own all its residues, attach it first"
	ErrStaleIndex     = "Spatial index is stale, commit the chain before querying it"
	ErrNoBackbone     = "Residue lacks backbone atoms"
	ErrRingBond       = "Bond is part of a ring and can't be rotated"
	ErrStateMismatch  = "State was not saved from this chain"
	ErrUndefinedAngle = "Angle is not defined"
)
