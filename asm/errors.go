// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
)

// Errors reported by the assembler. Each Diagnostic unwraps to one of
// these, so callers may test for a category with errors.Is.
var (
	ErrIllegalCombination   = errors.New("illegal combination of opcode and operands")
	ErrUnknownLabel         = errors.New("unknown label")
	ErrBranchOutOfRange     = errors.New("branch out of range")
	ErrInternal             = errors.New("internal error")
	ErrLabelRedefinition    = errors.New("label redefined")
	ErrIndirectPageBoundary = errors.New("indirect jump through page boundary")

	// ErrAssembly is returned by Assemble and AssembleFile when at least
	// one error diagnostic was recorded.
	ErrAssembly = errors.New("assembly failed")

	// ErrPassOrder is returned when an Assembler method is called in the
	// wrong state.
	ErrPassOrder = errors.New("assembler pass out of order")
)

// A Kind identifies the category of a diagnostic.
type Kind byte

// Diagnostic kinds. Kinds up to and including InternalError are errors;
// the rest are warnings.
const (
	IllegalCombination Kind = iota
	UnknownLabel
	BranchOutOfRange
	InternalError
	LabelRedefinition
	IndirectPageBoundary
)

var kindErr = []error{
	ErrIllegalCombination,
	ErrUnknownLabel,
	ErrBranchOutOfRange,
	ErrInternal,
	ErrLabelRedefinition,
	ErrIndirectPageBoundary,
}

var kindName = []string{
	"IllegalCombination",
	"UnknownLabel",
	"BranchOutOfRange",
	"InternalError",
	"LabelRedefinition",
	"IndirectPageBoundary",
}

func (k Kind) String() string {
	if int(k) < len(kindName) {
		return kindName[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsWarning returns true if diagnostics of this kind do not cause the
// assembly to fail.
func (k Kind) IsWarning() bool {
	return k >= LabelRedefinition
}

// A Diagnostic is an error or warning attached to a single source line.
type Diagnostic struct {
	Line   int    // 1-based source line number
	Column int    // 0-based column of the offending token
	Kind   Kind   // diagnostic category
	Msg    string // human-readable detail
}

func (d Diagnostic) Error() string {
	return d.Msg
}

// Unwrap returns the sentinel error for the diagnostic's kind.
func (d Diagnostic) Unwrap() error {
	if int(d.Kind) < len(kindErr) {
		return kindErr[d.Kind]
	}
	return nil
}

// String renders the diagnostic the way it is reported to the user.
func (d Diagnostic) String() string {
	severity := "Error"
	if d.Kind.IsWarning() {
		severity = "Warning"
	}
	return fmt.Sprintf("%s (line %d): %s", severity, d.Line, d.Msg)
}

// An encodeError is returned by the encoder. The driver turns it into a
// Diagnostic carrying the line number.
type encodeError struct {
	kind Kind
	msg  string
}

func (e *encodeError) Error() string {
	return e.msg
}

func (e *encodeError) Unwrap() error {
	return kindErr[e.kind]
}

func newEncodeError(kind Kind, format string, args ...any) error {
	return &encodeError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Return the diagnostic kind of an error produced by the encoder.
func errorKind(err error) Kind {
	var e *encodeError
	if errors.As(err, &e) {
		return e.kind
	}
	return InternalError
}
