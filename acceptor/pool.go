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

package acceptor

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sys/unix"

	libadr "github.com/nabbar/netcore/address"
	libsck "github.com/nabbar/netcore/sock"
)

// Published is a newly accepted connection handed off from an acceptor
// thread to the registry owner, queued until the owner calls Drain.
type Published struct {
	Descriptor libsck.Descriptor
	Peer       libadr.Address
}

// Pool runs a fixed-size set of acceptor threads against the same listening
// descriptor (spec.md §4.4, "the kernel serializes accept"). Shutdown is
// gated by a weighted semaphore of weight 1, the spec's "binary semaphore":
// Stop acquires it before flipping the shutdown flag, so it blocks until
// every thread has observed the flag and exited.
type Pool struct {
	acceptor *Acceptor
	size     int
	log      logrus.FieldLogger

	handoff chan Published

	gate    *semaphore.Weighted
	stopped chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewPool builds a Pool of size acceptor threads, each running a against
// the given Acceptor. handoffCapacity bounds the MPSC queue depth.
func NewPool(a *Acceptor, size int, handoffCapacity int, log logrus.FieldLogger) *Pool {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if size < 1 {
		size = 1
	}
	return &Pool{
		acceptor: a,
		size:     size,
		log:      log,
		handoff:  make(chan Published, handoffCapacity),
		gate:     semaphore.NewWeighted(1),
		stopped:  make(chan struct{}),
	}
}

// Start launches the acceptor threads. It returns immediately; call Stop to
// shut the pool down.
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
}

func (p *Pool) run(worker int) {
	defer p.wg.Done()

	state := Idle
	log := p.log.WithField("acceptor_worker", worker)

	for {
		select {
		case <-p.stopped:
			state = Stopped
			log.WithField("state", state.String()).Trace("acceptor: stopping")
			return
		default:
		}

		state = AwaitingReady
		fd, peer, err := p.acceptor.Accept()
		if err != nil {
			log.WithError(err).Error("acceptor: fatal accept error")
			state = Stopped
			return
		}
		if !fd.Valid() {
			state = Idle
			continue
		}

		state = Publishing
		select {
		case p.handoff <- Published{Descriptor: fd, Peer: peer}:
		case <-p.stopped:
			_ = fd.Close()
			return
		}
		state = Idle
	}
}

// Drain removes and returns every Published connection currently queued,
// without blocking. The registry owner calls this on its own goroutine (the
// server façades do so right before each Registry.Update), never the
// acceptor threads themselves.
func (p *Pool) Drain() []Published {
	out := make([]Published, 0, len(p.handoff))
	for {
		select {
		case pub := <-p.handoff:
			out = append(out, pub)
		default:
			return out
		}
	}
}

// Stop signals every acceptor thread to exit and waits for them to do so.
// It acquires the pool's binary semaphore first, so concurrent Stop calls
// serialize rather than race the shutdown flag.
func (p *Pool) Stop(ctx context.Context) error {
	if err := p.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.gate.Release(1)

	p.once.Do(func() {
		close(p.stopped)
		// close(2) alone does not wake a thread already blocked in select or
		// accept on this descriptor; shutdown(2) does.
		_ = unix.Shutdown(int(p.acceptor.listener.Int()), unix.SHUT_RDWR)
		_ = p.acceptor.listener.Close()
	})
	p.wg.Wait()
	return nil
}
