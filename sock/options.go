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

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/netcore/errors"
)

// SetBlocking toggles a Descriptor's non-blocking flag and installs its
// SO_SNDTIMEO/SO_RCVTIMEO socket timeouts in the same call, per spec.md
// §4.1's blocking-mode contract: the two changes are applied atomically -
// a zero duration clears the corresponding timeout (block forever) - and a
// failure partway through (installing either timeout) reverts the
// non-blocking flag to what it was before this call, rather than leaving
// the descriptor in a mixed state.
//
// The server façades call SetBlocking(false, 0, 0) on their listening
// descriptor; the epoll notifier sets O_NONBLOCK itself on every descriptor
// it adds. SetBlocking(true, ...) gives a plain blocking read or write
// bounded by a deadline.
func SetBlocking(d *Descriptor, blocking bool, sendTimeout, recvTimeout time.Duration) error {
	fd := int(d.Int())

	prevFlags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return liberr.New(liberr.Classify(err), err)
	}

	if err := unix.SetNonblock(fd, !blocking); err != nil {
		return liberr.New(liberr.Classify(err), err)
	}

	if err := setSockoptTimeout(fd, unix.SO_SNDTIMEO, sendTimeout); err != nil {
		_, _ = unix.FcntlInt(uintptr(fd), unix.F_SETFL, prevFlags)
		return err
	}
	if err := setSockoptTimeout(fd, unix.SO_RCVTIMEO, recvTimeout); err != nil {
		_, _ = unix.FcntlInt(uintptr(fd), unix.F_SETFL, prevFlags)
		return err
	}

	return nil
}

func setSockoptTimeout(fd int, opt int, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, opt, &tv); err != nil {
		return liberr.New(liberr.Classify(err), err)
	}
	return nil
}

// SetReuseAddress allows a listener to rebind a local address still in
// TIME_WAIT, matching the teacher's socket/config reuse-address tunable.
func SetReuseAddress(d *Descriptor, enable bool) error {
	return setSockoptBool(d, unix.SOL_SOCKET, unix.SO_REUSEADDR, enable)
}

// SetIPv6Only restricts a v6 listener to v6 traffic only, refusing the
// dual-stack v4-mapped behavior most kernels default to.
func SetIPv6Only(d *Descriptor, enable bool) error {
	return setSockoptBool(d, unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, enable)
}

// SetNoDelay disables Nagle's algorithm, trading bandwidth for latency on a
// stream socket carrying small, latency-sensitive writes.
func SetNoDelay(d *Descriptor, enable bool) error {
	return setSockoptBool(d, unix.IPPROTO_TCP, unix.TCP_NODELAY, enable)
}

// SetKeepAlive enables TCP keep-alive probing with the given idle delay,
// probe interval and probe count before the kernel declares the peer dead.
func SetKeepAlive(d *Descriptor, enable bool, idle, interval int, count int) error {
	on := 0
	if enable {
		on = 1
	}
	if err := unix.SetsockoptInt(int(d.Int()), unix.SOL_SOCKET, unix.SO_KEEPALIVE, on); err != nil {
		return liberr.New(liberr.Classify(err), err)
	}
	if !enable {
		return nil
	}
	if idle > 0 {
		if err := setKeepAliveIdle(d, idle); err != nil {
			return err
		}
	}
	if interval > 0 {
		if err := setKeepAliveInterval(d, interval); err != nil {
			return err
		}
	}
	if count > 0 {
		if err := unix.SetsockoptInt(int(d.Int()), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, count); err != nil {
			return liberr.New(liberr.Classify(err), err)
		}
	}
	return nil
}

// SetBufferSize sets the kernel's send and receive buffer sizes for the
// socket, mirroring the teacher's TCPBufferBytes tunable.
func SetBufferSize(d *Descriptor, bytes int) error {
	if err := unix.SetsockoptInt(int(d.Int()), unix.SOL_SOCKET, unix.SO_SNDBUF, bytes); err != nil {
		return liberr.New(liberr.Classify(err), err)
	}
	if err := unix.SetsockoptInt(int(d.Int()), unix.SOL_SOCKET, unix.SO_RCVBUF, bytes); err != nil {
		return liberr.New(liberr.Classify(err), err)
	}
	return nil
}

func setSockoptBool(d *Descriptor, level, opt int, enable bool) error {
	v := 0
	if enable {
		v = 1
	}
	if err := unix.SetsockoptInt(int(d.Int()), level, opt, v); err != nil {
		return liberr.New(liberr.Classify(err), err)
	}
	return nil
}
