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

// Package registry owns the connection map and the single dispatch cycle
// that drains the notifier and fans events out to each Connection's
// handlers. Every method here is owner-thread-only: the acceptor pipeline
// only ever constructs Connections and hands them to Join, it never touches
// the map or the notifier directly (spec.md §5, "Concurrency & resource
// model").
package registry

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	libclk "github.com/nabbar/netcore/clock"
	liberr "github.com/nabbar/netcore/errors"
	libntf "github.com/nabbar/netcore/notifier"
)

// Connection is the handler capability a registered stream must provide.
// Every method runs on the registry's owner thread only.
type Connection interface {
	// Descriptor returns the raw fd this Connection is registered under.
	Descriptor() int32

	// OnReceive is invoked when the notifier reports the descriptor
	// readable. It returns the number of bytes consumed, 0 when nothing
	// was available (a spurious wakeup), or a negative Kind on fatal error.
	OnReceive(maxBytes int, now float64) int

	// OnSend is invoked when the notifier reports the descriptor writable.
	OnSend(maxBytes int) int

	// OnError is an observational callback for a notifier-reported error.
	OnError(native int)

	// OnClose runs once when the Connection leaves the registry, whether by
	// error, peer hang-up, or explicit Unjoin.
	OnClose()

	// OnUpdate is the per-cycle timeout/heartbeat hook. Returning false
	// enrolls the Connection into the errored set for this cycle.
	OnUpdate(now float64) bool

	// Writable reports whether this Connection wants Writable interest
	// registered alongside Readable (spec.md §9 Open Question: off by
	// default, a per-connection toggle).
	Writable() bool
}

// Registry is the single-threaded connection map and dispatch loop (spec.md
// §3, "ConnectionRegistry").
type Registry struct {
	mu       sync.Mutex
	max      int
	notifier libntf.Notifier
	clock    libclk.Clock
	log      logrus.FieldLogger
	metrics  *metrics

	conns    map[int32]Connection
	errored  map[int32]Connection
	traceID  map[int32]string
	writable map[int32]bool

	scratch []libntf.EventRecord

	// debugOwner, recorded by EnableDebugOwnerCheck, catches a caller reaching
	// the registry from a second goroutine - every method here assumes a
	// single owner thread per spec.md §5.
	debugOwner int64
	debug      bool
}

// New builds a Registry bounded at maxConnections, driven by the given
// Notifier and Clock.
func New(maxConnections int, notifier libntf.Notifier, clock libclk.Clock, log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		max:      maxConnections,
		notifier: notifier,
		clock:    clock,
		log:      log,
		metrics:  newMetrics(),
		conns:    make(map[int32]Connection),
		errored:  make(map[int32]Connection),
		traceID:  make(map[int32]string),
		writable: make(map[int32]bool),
	}
}

// EnableDebugOwnerCheck turns on the single-owner-thread assertion. Intended
// for tests and development builds, not production hot paths.
func (r *Registry) EnableDebugOwnerCheck() {
	r.debug = true
	r.debugOwner = currentGoroutineID()
}

func (r *Registry) assertOwner() {
	if !r.debug {
		return
	}
	if id := currentGoroutineID(); id != r.debugOwner {
		panic(fmt.Sprintf("registry: accessed from goroutine %d, owned by %d", id, r.debugOwner))
	}
}

// Join inserts conn, registering it with the notifier under Readable
// interest (plus Writable when the Connection asks for it). It fails if the
// descriptor already has an entry, or the registry is at capacity.
func (r *Registry) Join(conn Connection) error {
	r.assertOwner()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joinLocked(conn)
}

func (r *Registry) joinLocked(conn Connection) error {
	fd := conn.Descriptor()
	if _, exists := r.conns[fd]; exists {
		return liberr.New(liberr.InvalidArgument, fmt.Errorf("registry: descriptor %d already joined", fd))
	}
	if r.max > 0 && len(r.conns) >= r.max {
		return liberr.New(liberr.ResourceExhausted, fmt.Errorf("registry: at capacity (%d)", r.max))
	}

	wantWrite := conn.Writable()
	interest := libntf.Readable
	if wantWrite {
		interest |= libntf.Writable
	}
	if err := r.notifier.Add(fd, interest); err != nil {
		return err
	}

	trace := uuid.NewString()
	r.conns[fd] = conn
	r.traceID[fd] = trace
	r.writable[fd] = wantWrite
	r.metrics.connectionsJoined.Inc()
	r.metrics.connectionsOpen.Set(float64(len(r.conns)))
	r.log.WithField("fd", fd).WithField("trace_id", trace).Debug("registry: connection joined")
	return nil
}

// JoinBatch joins each Connection in conns, returning the count
// successfully inserted. A failure on one does not prevent the rest.
func (r *Registry) JoinBatch(conns []Connection) int {
	r.assertOwner()
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, c := range conns {
		if err := r.joinLocked(c); err != nil {
			r.log.WithError(err).WithField("fd", c.Descriptor()).Debug("registry: batch join rejected")
			continue
		}
		count++
	}
	return count
}

// Unjoin removes conn from the notifier and then from the map. Calling it on
// an unregistered Connection is a no-op.
func (r *Registry) Unjoin(conn Connection) {
	r.assertOwner()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unjoinLocked(conn.Descriptor())
}

func (r *Registry) unjoinLocked(fd int32) {
	c, exists := r.conns[fd]
	if !exists {
		return
	}
	_ = r.notifier.Remove(fd)
	r.log.WithField("fd", fd).WithField("trace_id", r.traceID[fd]).Debug("registry: connection closed")
	delete(r.conns, fd)
	delete(r.errored, fd)
	delete(r.traceID, fd)
	delete(r.writable, fd)
	r.metrics.connectionsOpen.Set(float64(len(r.conns)))
	c.OnClose()
}

// OpenConnections reports the number of Connections currently joined.
func (r *Registry) OpenConnections() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.conns))
}

// ErrorSnapshot returns the errored set accumulated during the most recent
// Update. Callers must consume it before the next Update call: Update starts
// by releasing whatever is still in the set.
func (r *Registry) ErrorSnapshot() []Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Connection, 0, len(r.errored))
	for _, c := range r.errored {
		out = append(out, c)
	}
	return out
}

// Clear unregisters and drops every Connection.
func (r *Registry) Clear() {
	r.assertOwner()
	r.mu.Lock()
	defer r.mu.Unlock()
	for fd, c := range r.conns {
		_ = r.notifier.Remove(fd)
		c.OnClose()
	}
	r.conns = make(map[int32]Connection)
	r.errored = make(map[int32]Connection)
	r.traceID = make(map[int32]string)
	r.writable = make(map[int32]bool)
	r.metrics.connectionsOpen.Set(0)
}

// Update drives one dispatch cycle (spec.md §4.3): release last cycle's
// errored set, poll the notifier, dispatch Recv/Send/Error records, then run
// the per-connection OnUpdate heartbeat/timeout hook.
func (r *Registry) Update(timeout float64) error {
	r.assertOwner()
	r.mu.Lock()
	defer r.mu.Unlock()

	for fd := range r.errored {
		r.unjoinLocked(fd)
	}
	r.errored = make(map[int32]Connection)

	// Re-evaluate each Connection's Writable answer before polling, so a
	// toggle takes effect on this cycle's wait rather than the next one
	// (kqueue/epoll backends re-arm EVFILT_WRITE/EPOLLOUT accordingly).
	for fd, c := range r.conns {
		want := c.Writable()
		if r.writable[fd] == want {
			continue
		}
		interest := libntf.Readable
		if want {
			interest |= libntf.Writable
		}
		if err := r.notifier.Add(fd, interest); err != nil {
			r.log.WithError(err).WithField("fd", fd).Warn("registry: interest re-arm failed")
			continue
		}
		r.writable[fd] = want
	}

	r.scratch = r.scratch[:0]
	n, err := r.notifier.Poll(timeout, &r.scratch)
	if n < 0 {
		return err
	}

	now := r.clock.Now()

	// spec.md §5: within one Update cycle, every Recv is dispatched before
	// any Send, and every Send before any Error - three passes over the
	// same batch rather than one pass in poll-reported order.
	for _, ev := range r.scratch {
		if ev.Kind != libntf.Recv {
			continue
		}
		c, exists := r.conns[ev.FD]
		if !exists {
			continue
		}
		rc := c.OnReceive(defaultReadHint, now)
		r.metrics.recvEvents.Inc()
		if rc < 0 {
			r.errored[ev.FD] = c
		}
	}

	for _, ev := range r.scratch {
		if ev.Kind != libntf.Send {
			continue
		}
		c, exists := r.conns[ev.FD]
		if !exists {
			continue
		}
		rc := c.OnSend(defaultReadHint)
		r.metrics.sendEvents.Inc()
		if rc < 0 {
			r.errored[ev.FD] = c
		}
	}

	for _, ev := range r.scratch {
		if ev.Kind != libntf.Error {
			continue
		}
		c, exists := r.conns[ev.FD]
		if !exists {
			continue
		}
		c.OnError(ev.Native)
		r.metrics.errorEvents.Inc()
		r.errored[ev.FD] = c
	}

	for fd, c := range r.conns {
		if _, alreadyErrored := r.errored[fd]; alreadyErrored {
			continue
		}
		if !c.OnUpdate(now) {
			r.errored[fd] = c
		}
	}

	return nil
}

// defaultReadHint is the maximum-bytes hint passed to OnReceive/OnSend when
// the caller has no more specific buffer-sizing policy; stream.Adapter
// callers typically size their own buffers and ignore it.
const defaultReadHint = 64 * 1024
