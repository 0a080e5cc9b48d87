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

// Package sock owns raw kernel socket file descriptors: creation, binding,
// blocking-mode and timeout control, and the platform socket options the
// configuration surface of spec.md §6 exposes (keep-alive, no-delay, buffer
// sizing, address reuse, v6-only). It deliberately exposes no recv/send -
// that belongs to package stream - and no readiness multiplexing - that
// belongs to package notifier.
package sock

import (
	"sync/atomic"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/netcore/errors"
)

// Invalid is the sentinel integer value of a closed or never-opened
// Descriptor, matching the POSIX convention of -1.
const Invalid int32 = -1

// Descriptor is an exclusively-owned handle to a kernel socket file
// descriptor (spec.md §3, "Descriptor"). It is move-only: copying a
// Descriptor by value and closing both copies would double-close the kernel
// slot, so every function that hands off ownership takes or returns a
// Descriptor, never a bare int32, and close is idempotent.
type Descriptor struct {
	fd int32
}

// New wraps a raw, already-open file descriptor for ownership transfer. The
// caller must not use fd directly again.
func New(fd int) Descriptor {
	return Descriptor{fd: int32(fd)}
}

// InvalidDescriptor returns a Descriptor holding no kernel resource.
func InvalidDescriptor() Descriptor {
	return Descriptor{fd: Invalid}
}

// Valid reports whether the Descriptor currently owns an open kernel socket.
func (d *Descriptor) Valid() bool {
	return atomic.LoadInt32(&d.fd) != Invalid
}

// Int returns the raw descriptor value without transferring ownership. Pass
// it to syscalls; do not close it directly.
func (d *Descriptor) Int() int32 {
	return atomic.LoadInt32(&d.fd)
}

// Close releases the kernel socket exactly once. Closing an already-closed
// or never-opened Descriptor is a no-op, matching spec.md's "close is
// idempotent" invariant.
func (d *Descriptor) Close() error {
	fd := atomic.SwapInt32(&d.fd, Invalid)
	if fd == Invalid {
		return nil
	}
	if err := unix.Close(int(fd)); err != nil {
		return liberr.New(liberr.OSError, err)
	}
	return nil
}

// Release yields the raw integer handle and voids this Descriptor's
// ownership without closing it. The caller becomes responsible for the
// kernel slot.
func (d *Descriptor) Release() int32 {
	return atomic.SwapInt32(&d.fd, Invalid)
}

// Reset closes whatever this Descriptor currently owns (if anything) and
// takes ownership of fd instead.
func (d *Descriptor) Reset(fd Descriptor) error {
	next := fd.Release()
	prev := atomic.SwapInt32(&d.fd, next)
	if prev != Invalid && prev != next {
		if err := unix.Close(int(prev)); err != nil {
			return liberr.New(liberr.OSError, err)
		}
	}
	return nil
}
