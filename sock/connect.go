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
	"context"

	"golang.org/x/sys/unix"

	libadr "github.com/nabbar/netcore/address"
	liberr "github.com/nabbar/netcore/errors"
)

// Connect dials addr on d, a freshly created but unbound Descriptor. It
// honors ctx: cancellation while connect(2) is in flight closes d and
// returns a TimedOut Error rather than leaving the dial to complete
// unobserved.
func Connect(ctx context.Context, d *Descriptor, addr libadr.Address) error {
	sa, err := toSockaddr(addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- unix.Connect(int(d.Int()), sa) }()

	select {
	case err := <-errCh:
		if err != nil {
			return liberr.New(liberr.Classify(err), err)
		}
		return nil
	case <-ctx.Done():
		_ = d.Close()
		return liberr.New(liberr.TimedOut, ctx.Err())
	}
}
