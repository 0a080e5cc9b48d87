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
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
)

// Classify maps a native error - a syscall.Errno, a net.Error, io.EOF, or an
// already-tagged Error - into the taxonomy Kind every component reports
// through. Unrecognized errors classify as OSError rather than Unknown: the
// caller asked for a reason, and "an OS error happened" is a more honest
// answer than silence.
func Classify(err error) Kind {
	if err == nil {
		return Unknown
	}

	var tagged Error
	if errors.As(err, &tagged) {
		return tagged.Kind()
	}

	if errors.Is(err, io.EOF) {
		return PeerClosed
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return classifyErrno(errno)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return TimedOut
		}
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return TimedOut
	}
	if errors.Is(err, net.ErrClosed) {
		return OSError
	}
	if strings.Contains(err.Error(), "broken pipe") {
		return BrokenPipe
	}

	return OSError
}

func classifyErrno(errno syscall.Errno) Kind {
	switch errno {
	case syscall.EAGAIN:
		return WouldBlock
	case syscall.EINTR:
		return Interrupted
	case syscall.ETIMEDOUT:
		return TimedOut
	case syscall.EPIPE:
		return BrokenPipe
	case syscall.EMFILE, syscall.ENFILE, syscall.ENOMEM, syscall.ENOBUFS:
		return ResourceExhausted
	case syscall.EINVAL, syscall.EBADF, syscall.EAFNOSUPPORT, syscall.EADDRNOTAVAIL:
		return InvalidArgument
	case syscall.ECONNRESET, syscall.ENOTCONN, syscall.ESHUTDOWN:
		return PeerClosed
	default:
		return OSError
	}
}

// ErrorFilter mirrors the teacher's socket.ErrorFilter: errors produced by an
// orderly local Close racing an in-flight read/write are noise, not a
// reportable condition, and are filtered to nil. Every other error passes
// through unchanged.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	if strings.Contains(err.Error(), "use of closed network connection") {
		return nil
	}
	return err
}
