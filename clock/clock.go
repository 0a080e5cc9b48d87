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

// Package clock supplies the single source of "now" the registry and its
// connections use. It exists so that timeout and heartbeat tests never race
// a wall clock: the System clock is the production default, the Mock clock
// is advanced by hand from a test goroutine.
package clock

import (
	"sync"
	"time"
)

// Clock returns a monotonic count of fractional seconds. Every on-tick
// decision in the core (receive timeouts, heartbeat scheduling) is computed
// from a Clock rather than time.Now directly.
type Clock interface {
	// Now returns fractional seconds elapsed since the Clock was created.
	Now() float64
}

type systemClock struct {
	start time.Time
}

// System returns a Clock backed by the monotonic component of time.Now.
func System() Clock {
	return &systemClock{start: time.Now()}
}

func (c *systemClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// Mock is a Clock a test can advance deterministically, grounded on the
// teacher's pattern of substituting a fake time source rather than sleeping
// in tests (spec: "tests substitute it").
type Mock struct {
	mu  sync.Mutex
	now float64
}

// NewMock returns a Mock starting at t=0.
func NewMock() *Mock {
	return &Mock{}
}

// Now implements Clock.
func (m *Mock) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the Mock's clock forward by d and returns the new value.
func (m *Mock) Advance(d time.Duration) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d.Seconds()
	return m.now
}

// Set pins the Mock's clock to an absolute number of seconds.
func (m *Mock) Set(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = seconds
}
