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

// Package notifier abstracts the three native I/O-readiness mechanisms - a
// level-triggered poll-set, an edge-triggered interest set, and a dual-filter
// event queue - behind one contract, so the registry and acceptor packages
// never special-case a platform.
package notifier

import "fmt"

// Interest names which readiness conditions a descriptor should be watched
// for. Error and hang-up conditions are always observed implicitly.
type Interest uint8

const (
	// Readable watches for incoming data or a peer shutdown.
	Readable Interest = 1 << iota
	// Writable watches for outbound buffer space. Off by default per
	// spec.md §4.3 ("Writable is optional, off by default").
	Writable
)

// EventKind classifies a single EventRecord.
type EventKind uint8

const (
	// Recv reports a descriptor readable with no error pending.
	Recv EventKind = iota
	// Send reports a descriptor writable with no error pending.
	Send
	// Error reports a backend-flagged error or hang-up condition.
	Error
)

func (k EventKind) String() string {
	switch k {
	case Recv:
		return "recv"
	case Send:
		return "send"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// EventRecord is the tagged (descriptor, kind) pair a Poll call produces
// (spec.md §3, "EventRecord"). Native carries the raw errno when Kind is
// Error and the backend surfaced one, 0 otherwise.
type EventRecord struct {
	FD     int32
	Kind   EventKind
	Native int
}

// Backend selects a concrete Notifier implementation.
type Backend uint8

const (
	// Auto resolves to the best mechanism the build platform offers: epoll
	// on linux, kqueue on BSD/darwin, select everywhere else.
	Auto Backend = iota
	// LevelSet is the select-style bitmap fallback.
	LevelSet
	// EdgeInterest is the epoll-style one-shot interest list.
	EdgeInterest
	// DualFilter is the kqueue-style separate read/write filter list.
	DualFilter
)

func (b Backend) String() string {
	switch b {
	case Auto:
		return "auto"
	case LevelSet:
		return "level-set"
	case EdgeInterest:
		return "edge-interest"
	case DualFilter:
		return "dual-filter"
	default:
		return "unknown"
	}
}

// Parse resolves a configuration string (spec.md §6, notifier_backend) into
// a Backend. The empty string and "auto" both resolve to Auto.
func Parse(s string) (Backend, error) {
	switch s {
	case "", "auto":
		return Auto, nil
	case "level-set":
		return LevelSet, nil
	case "edge-interest":
		return EdgeInterest, nil
	case "dual-filter":
		return DualFilter, nil
	default:
		return Auto, fmt.Errorf("notifier: unknown backend %q", s)
	}
}

// Notifier is the unified readiness-multiplexing contract spec.md §4.2
// names: one of three concrete backends satisfies it, selected by platform
// and configuration.
type Notifier interface {
	// Add registers fd for the given Interest set. Adding an already
	// registered fd updates its interest.
	Add(fd int32, interest Interest) error

	// Remove unregisters fd. Idempotent: removing an absent fd is a no-op.
	Remove(fd int32) error

	// Count reports the number of descriptors currently registered.
	Count() int

	// Clear removes every registration and frees internal resources.
	Clear() error

	// Poll blocks up to timeout (fractional seconds; negative is infinite,
	// zero is non-blocking) and appends ready EventRecords to out. It
	// returns the number of events appended, 0 on timeout.
	Poll(timeout float64, out *[]EventRecord) (int, error)

	// Backend reports which concrete mechanism this Notifier uses.
	Backend() Backend
}
