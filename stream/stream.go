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

// Package stream wraps a Descriptor as a pair of byte sinks, the primitive
// the excluded protocol layers push request/response bytes through
// (spec.md §4.5).
package stream

import (
	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/netcore/errors"
	libsck "github.com/nabbar/netcore/sock"
)

// Adapter reads and writes a Descriptor's byte stream, inheriting whatever
// blocking mode the Descriptor was left in.
type Adapter struct {
	d *libsck.Descriptor
}

// New wraps d for byte-stream access. It does not take ownership: closing
// the Adapter's underlying Descriptor remains the caller's responsibility.
func New(d *libsck.Descriptor) *Adapter {
	return &Adapter{d: d}
}

// FD returns the raw descriptor value the Adapter reads and writes, the
// identity a registry.Connection reports through Descriptor().
func (a *Adapter) FD() int32 {
	return a.d.Int()
}

// ReadSome reads into buf. It returns the byte count on success, 0 on a
// clean peer close, and a negative taxonomy Kind on error - zero and
// would-block are always distinguishable, since would-block surfaces as
// errors.WouldBlock.Negative(), never as a bare 0.
func (a *Adapter) ReadSome(buf []byte) int {
	n, err := unix.Read(int(a.d.Int()), buf)
	if err != nil {
		return liberr.Classify(err).Negative()
	}
	if n == 0 {
		return 0
	}
	return n
}

// WriteSome writes buf in a single kernel call, returning the byte count
// actually written (which may be less than len(buf)) or a negative
// taxonomy Kind on error.
func (a *Adapter) WriteSome(buf []byte) int {
	n, err := unix.Write(int(a.d.Int()), buf)
	if err != nil {
		return liberr.Classify(err).Negative()
	}
	return n
}

// WriteFully retries WriteSome until every byte of buf is sent or a
// non-transient error occurs. It returns the total bytes written (len(buf)
// on success) or a negative taxonomy Kind.
func (a *Adapter) WriteFully(buf []byte) int {
	total := 0
	for total < len(buf) {
		n := a.WriteSome(buf[total:])
		if n < 0 {
			kind := liberr.FromNegative(n)
			if kind == liberr.WouldBlock || kind == liberr.Interrupted {
				continue
			}
			return n
		}
		if n == 0 {
			return total
		}
		total += n
	}
	return total
}
