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

package sock

import (
	"time"

	libadr "github.com/nabbar/netcore/address"
)

// Options carries the per-socket tunables Recreate must reapply to a fresh
// descriptor. It deliberately excludes anything tied to the old descriptor's
// kernel state (the local bind, any peer) - Recreate discards both.
type Options struct {
	Blocking     bool
	SendTimeout  time.Duration
	RecvTimeout  time.Duration
	NoDelay      bool
	KeepAlive    bool
	KeepIdle     int
	KeepInterval int
	KeepCount    int
	BufferBytes  int
}

// Recreate answers spec.md's open question on descriptor replacement: a
// Descriptor that falls into an unrecoverable state (ENOTCONN, EBADF after an
// unexpected kernel-side close) is replaced outright rather than repaired.
// Recreate closes the existing Descriptor, opens a fresh socket for the same
// Address family and protocol, and reapplies the blocking mode and options
// the caller asks for. It does not rebind or relisten: the caller owns that
// decision, since a listener and a client descriptor resume very differently.
func Recreate(d *Descriptor, addr libadr.Address, opt Options) (Descriptor, error) {
	_ = d.Close()

	fresh, err := NewSocket(addr)
	if err != nil {
		return InvalidDescriptor(), err
	}

	if err := applyOptions(&fresh, opt); err != nil {
		_ = fresh.Close()
		return InvalidDescriptor(), err
	}

	return fresh, nil
}

func applyOptions(d *Descriptor, opt Options) error {
	if err := SetBlocking(d, opt.Blocking, opt.SendTimeout, opt.RecvTimeout); err != nil {
		return err
	}
	if opt.NoDelay {
		if err := SetNoDelay(d, true); err != nil {
			return err
		}
	}
	if opt.KeepAlive {
		if err := SetKeepAlive(d, true, opt.KeepIdle, opt.KeepInterval, opt.KeepCount); err != nil {
			return err
		}
	}
	if opt.BufferBytes > 0 {
		if err := SetBufferSize(d, opt.BufferBytes); err != nil {
			return err
		}
	}
	return nil
}
