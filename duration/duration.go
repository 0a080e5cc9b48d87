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

// Package duration wraps time.Duration with day-aware parsing/formatting and
// text/JSON/YAML encoding, trimmed from the teacher's duration package down
// to what the socket/config tunables (spec.md §6) need: a config field that
// round-trips through a config file as "2m", "1h30m" or "5d12h".
package duration

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Duration is a time.Duration with day notation in its textual form.
type Duration time.Duration

// Parse parses a string such as "90s", "2m", "1h30m" or "5d12h" into a
// Duration. Days are a duration.Duration extension; the rest defers to
// time.ParseDuration.
func Parse(s string) (Duration, error) {
	s = strings.Trim(s, `"'`)

	if days, rest, ok := splitDays(s); ok {
		d, err := parseRest(rest)
		if err != nil {
			return 0, err
		}
		return Duration(time.Duration(days)*24*time.Hour) + d, nil
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return Duration(v), nil
}

func parseRest(rest string) (Duration, error) {
	if rest == "" {
		return 0, nil
	}
	v, err := time.ParseDuration(rest)
	if err != nil {
		return 0, err
	}
	return Duration(v), nil
}

func splitDays(s string) (days int64, rest string, ok bool) {
	idx := strings.IndexByte(s, 'd')
	if idx <= 0 {
		return 0, s, false
	}
	if _, err := fmt.Sscanf(s[:idx], "%d", &days); err != nil {
		return 0, s, false
	}
	return days, s[idx+1:], true
}

// Seconds returns a Duration of i seconds, mirroring the teacher's
// duration.Seconds helper used directly in config literals.
func Seconds(i int64) Duration {
	return Duration(time.Duration(i) * time.Second)
}

// Minutes returns a Duration of i minutes.
func Minutes(i int64) Duration {
	return Duration(time.Duration(i) * time.Minute)
}

// Time returns the time.Duration this Duration wraps.
func (d Duration) Time() time.Duration {
	return time.Duration(d)
}

// Days returns the number of whole days in the duration.
func (d Duration) Days() int64 {
	t := math.Floor(d.Time().Hours() / 24)
	if t > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(t)
}

// String renders the duration with an optional leading "Nd" day component.
func (d Duration) String() string {
	var (
		s string
		n = d.Days()
		i = d.Time()
	)

	if n > 0 {
		i -= time.Duration(n) * 24 * time.Hour
		s = fmt.Sprintf("%dd", n)
	}

	if n < 1 || i > 0 {
		s += i.String()
	}

	return s
}
