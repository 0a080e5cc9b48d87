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

// Package errors provides the normalized error taxonomy shared by every layer
// of the connection-management core: address resolution, socket primitives,
// the readiness notifier, the connection registry and the acceptor pipeline
// all report failures as a Kind from this package instead of raw syscall
// errnos, so callers never need to special-case a platform.
package errors

// Kind classifies a failure into the small, stable taxonomy every component
// of the core reports through. It intentionally drops the native error
// message: two failures of the same Kind are interchangeable from the
// caller's point of view.
type Kind int8

const (
	// Unknown is the zero value: no classification was possible or attempted.
	Unknown Kind = iota

	// WouldBlock reports a non-blocking operation that made no progress.
	WouldBlock

	// Interrupted reports a system call interrupted by a signal.
	Interrupted

	// TimedOut reports a configured timeout expiring.
	TimedOut

	// PeerClosed reports an orderly remote shutdown (a read returning 0).
	PeerClosed

	// BrokenPipe reports a write to an already-closed remote.
	BrokenPipe

	// ResourceExhausted reports file-table exhaustion or memory pressure.
	ResourceExhausted

	// InvalidArgument reports a bad address, a bad descriptor, or any other
	// caller mistake that retrying cannot fix.
	InvalidArgument

	// OSError reports any other native error, surfaced for observation.
	OSError
)

// String renders a Kind the way the core's log fields expect it: a short,
// lower-case token safe to use as a structured logging value.
func (k Kind) String() string {
	switch k {
	case WouldBlock:
		return "would-block"
	case Interrupted:
		return "interrupted"
	case TimedOut:
		return "timed-out"
	case PeerClosed:
		return "peer-closed"
	case BrokenPipe:
		return "broken-pipe"
	case ResourceExhausted:
		return "resource-exhausted"
	case InvalidArgument:
		return "invalid-argument"
	case OSError:
		return "os-error"
	default:
		return "unknown"
	}
}

// Int8 returns the Kind as an int8, mirroring the teacher's CodeError.Uint16
// style accessor used when a Kind must be embedded in a fixed-width record
// (notifier.EventRecord, for instance).
func (k Kind) Int8() int8 {
	return int8(k)
}

// Negative returns the Kind encoded as a negative int, the sentinel spec the
// core's Accept/OnReceive/OnSend/Poll contracts use to signal a fatal
// condition inline with an ordinary byte-count or descriptor return.
func (k Kind) Negative() int {
	if k == Unknown {
		return 0
	}
	return -int(k)
}

// FromNegative decodes a Kind back out of the sentinel produced by Negative.
// A non-negative value decodes to Unknown.
func FromNegative(v int) Kind {
	if v >= 0 {
		return Unknown
	}
	k := Kind(-v)
	if k < WouldBlock || k > OSError {
		return OSError
	}
	return k
}
