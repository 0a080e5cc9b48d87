/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package errors

import (
	stderr "errors"
	"fmt"
)

// Error extends the standard error with the Kind taxonomy and the native
// cause, the way the teacher's errors.Error extends error with CodeError and
// a parent chain, trimmed to what the core's call sites actually need: no
// hierarchy, no trace capture, just a Kind and an optional wrapped cause.
type Error interface {
	error

	// Kind returns the taxonomy classification of this error.
	Kind() Kind

	// Native returns the original error this was classified from, or nil if
	// the Error was constructed directly from a Kind.
	Native() error

	// Unwrap supports errors.Is/errors.As against the native cause.
	Unwrap() error
}

type taggedError struct {
	kind   Kind
	native error
}

// New builds an Error from a Kind and an optional native cause. The native
// error, when present, is kept for Unwrap/logging but the Kind alone drives
// every control-flow decision in the core.
func New(kind Kind, native error) Error {
	return &taggedError{kind: kind, native: native}
}

func (e *taggedError) Kind() Kind {
	return e.kind
}

func (e *taggedError) Native() error {
	return e.native
}

func (e *taggedError) Unwrap() error {
	return e.native
}

func (e *taggedError) Error() string {
	if e.native != nil {
		return fmt.Sprintf("%s: %s", e.kind.String(), e.native.Error())
	}
	return e.kind.String()
}

// Is reports whether target carries the same Kind, following the pattern of
// the teacher's ers.Is comparing by classification rather than by identity.
func (e *taggedError) Is(target error) bool {
	var other Error
	if stderr.As(target, &other) {
		return other.Kind() == e.kind
	}
	return false
}

// IsKind is a convenience for the common "does this error belong to Kind k"
// check, usable on any error via errors.As underneath.
func IsKind(err error, k Kind) bool {
	var tagged Error
	if stderr.As(err, &tagged) {
		return tagged.Kind() == k
	}
	return false
}
