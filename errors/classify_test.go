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

package errors_test

import (
	"fmt"
	"syscall"
	"testing"

	liberr "github.com/nabbar/netcore/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		nam string
		err error
		exp liberr.Kind
	}{
		{"nil", nil, liberr.Unknown},
		{"eagain", syscall.EAGAIN, liberr.WouldBlock},
		{"eintr", syscall.EINTR, liberr.Interrupted},
		{"etimedout", syscall.ETIMEDOUT, liberr.TimedOut},
		{"epipe", syscall.EPIPE, liberr.BrokenPipe},
		{"emfile", syscall.EMFILE, liberr.ResourceExhausted},
		{"einval", syscall.EINVAL, liberr.InvalidArgument},
		{"econnreset", syscall.ECONNRESET, liberr.PeerClosed},
		{"opaque", fmt.Errorf("weird native failure"), liberr.OSError},
	}

	for _, tc := range tests {
		t.Run(tc.nam, func(t *testing.T) {
			if got := liberr.Classify(tc.err); got != tc.exp {
				t.Errorf("Classify(%v) = %v, want %v", tc.err, got, tc.exp)
			}
		})
	}
}

func TestErrorFilter(t *testing.T) {
	tests := []struct {
		nam string
		err error
		nil bool
	}{
		{"nil error", nil, true},
		{"closed connection error", fmt.Errorf("use of closed network connection"), true},
		{"normal error", fmt.Errorf("connection timeout"), false},
		{"connection refused", fmt.Errorf("connection refused"), false},
	}

	for _, tc := range tests {
		t.Run(tc.nam, func(t *testing.T) {
			res := liberr.ErrorFilter(tc.err)
			if tc.nil && res != nil {
				t.Errorf("expected nil, got %v", res)
			}
			if !tc.nil && res == nil {
				t.Errorf("expected error, got nil")
			}
		})
	}
}

func TestNewAndKind(t *testing.T) {
	native := fmt.Errorf("boom")
	err := liberr.New(liberr.ResourceExhausted, native)

	if err.Kind() != liberr.ResourceExhausted {
		t.Errorf("Kind() = %v, want %v", err.Kind(), liberr.ResourceExhausted)
	}
	if err.Native() != native {
		t.Errorf("Native() did not round-trip")
	}
	if !liberr.IsKind(err, liberr.ResourceExhausted) {
		t.Errorf("IsKind should report true for matching kind")
	}
}

func TestNegativeRoundTrip(t *testing.T) {
	for k := liberr.WouldBlock; k <= liberr.OSError; k++ {
		n := k.Negative()
		if n >= 0 {
			t.Fatalf("Negative() for %v returned non-negative %d", k, n)
		}
		if got := liberr.FromNegative(n); got != k {
			t.Errorf("FromNegative(%d) = %v, want %v", n, got, k)
		}
	}
	if liberr.FromNegative(0) != liberr.Unknown {
		t.Errorf("FromNegative(0) should be Unknown")
	}
}
