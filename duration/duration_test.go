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

package duration_test

import (
	"testing"
	"time"

	libdur "github.com/nabbar/netcore/duration"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in  string
		exp time.Duration
	}{
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"5d", 5 * 24 * time.Hour},
		{"5d12h", 5*24*time.Hour + 12*time.Hour},
		{`"2m"`, 2 * time.Minute},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			d, err := libdur.Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tc.in, err)
			}
			if d.Time() != tc.exp {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, d.Time(), tc.exp)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, in := range []string{"30s", "2m0s", "1h30m0s", "5d0h0m0s"} {
		d, err := libdur.Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		d2, err := libdur.Parse(d.String())
		if err != nil {
			t.Fatalf("Parse(String()) error: %v", err)
		}
		if d != d2 {
			t.Errorf("round-trip mismatch: %v != %v (via %q)", d, d2, d.String())
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := libdur.Seconds(125)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error: %v", err)
	}

	var out libdur.Duration
	if err := out.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON error: %v", err)
	}
	if out != d {
		t.Errorf("JSON round-trip mismatch: %v != %v", out, d)
	}
}
