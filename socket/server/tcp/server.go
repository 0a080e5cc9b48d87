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

// Package tcp wires address, sock, notifier, registry and acceptor into the
// ready-to-use TCP listener façade spec.md leaves as an external collaborator
// but the teacher's socket/server/tcp exposes directly.
package tcp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	libacc "github.com/nabbar/netcore/acceptor"
	libadr "github.com/nabbar/netcore/address"
	libntf "github.com/nabbar/netcore/notifier"
	libptc "github.com/nabbar/netcore/network/protocol"
	libreg "github.com/nabbar/netcore/registry"
	libsck "github.com/nabbar/netcore/sock"
	libcfg "github.com/nabbar/netcore/socket/config"
	libstm "github.com/nabbar/netcore/stream"
)

var (
	ErrInvalidAddress  = fmt.Errorf("tcp server: invalid address")
	ErrInvalidHandler  = fmt.Errorf("tcp server: invalid handler")
	ErrShutdownTimeout = fmt.Errorf("tcp server: shutdown timeout")
	ErrGoneTimeout     = fmt.Errorf("tcp server: gone timeout")
	ErrInvalidInstance = fmt.Errorf("tcp server: invalid instance")
)

// UpdateFunc lets the caller apply per-descriptor socket options (buffer
// sizes, keep-alive) right after accept, before the connection is handed to
// HandlerFunc. It mirrors the teacher's updateConn func(net.Conn).
type UpdateFunc func(d *libsck.Descriptor)

// HandlerFunc builds the registry.Connection that will own a freshly
// accepted stream, the reactor-model equivalent of the teacher's
// libsck.HandlerFunc(libsck.Context).
type HandlerFunc func(peer libadr.Address, stream *libstm.Adapter) libreg.Connection

// ServerTCP is the façade's public surface, matching the names the teacher's
// ServerTcp exposes.
type ServerTCP interface {
	IsRunning() bool
	IsGone() bool
	OpenConnections() int64
	Serve(ctx context.Context) error
	Shutdown(ctx context.Context) error
	StopGone(ctx context.Context) error
}

type server struct {
	cfg     libcfg.Server
	update  UpdateFunc
	handler HandlerFunc
	log     logrus.FieldLogger

	local    libadr.Address
	listener libsck.Descriptor

	registry *libreg.Registry
	pool     *libacc.Pool

	running atomic.Bool
	gone    atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

// New validates cfg and builds a ServerTCP bound to cfg.Address, but does
// not start listening until Serve is called.
func New(update UpdateFunc, handler HandlerFunc, cfg libcfg.Server) (ServerTCP, error) {
	if handler == nil {
		return nil, ErrInvalidHandler
	}
	if cfg.Address == "" {
		return nil, ErrInvalidAddress
	}
	if cfg.Network == libptc.NetworkEmpty {
		cfg.Network = libptc.NetworkTCP
	}

	addrs, err := libadr.Resolve(hostOf(cfg.Address), portOf(cfg.Address), cfg.Network, preferenceOf(cfg.Network))
	if err != nil {
		return nil, ErrInvalidAddress
	}
	if len(addrs) == 0 {
		return nil, ErrInvalidAddress
	}

	s := &server{
		cfg:     cfg,
		update:  update,
		handler: handler,
		log:     logrus.StandardLogger(),
		local:   addrs[0],
	}
	s.gone.Store(true)
	return s, nil
}

func (s *server) IsRunning() bool {
	return s.running.Load()
}

func (s *server) IsGone() bool {
	return s.gone.Load()
}

func (s *server) OpenConnections() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry == nil {
		return 0
	}
	return s.registry.OpenConnections()
}

// Serve binds and listens, then runs the single-owner-thread registry loop
// until ctx is cancelled or Shutdown is called. It blocks.
func (s *server) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.running.Load() {
		s.mu.Unlock()
		return ErrInvalidInstance
	}

	d, err := libsck.NewSocket(s.local)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.cfg.ReuseAddress {
		_ = libsck.SetReuseAddress(&d, true)
	}
	if s.cfg.IPv6Only {
		_ = libsck.SetIPv6Only(&d, true)
	}
	if err := libsck.Bind(&d, s.local); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := libsck.Listen(&d, 128); err != nil {
		s.mu.Unlock()
		return err
	}
	_ = libsck.SetBlocking(&d, false, 0, 0)
	s.listener = d

	backend, err := libntf.Parse(s.cfg.NotifierBackend)
	if err != nil {
		backend = libntf.Auto
	}
	nf, err := libntf.New(backend, s.log)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	clk := systemClockOf()
	s.registry = libreg.New(s.cfg.MaxConnections, nf, clk, s.log)

	acc := libacc.New(s.listener, s.local, s.cfg.AcceptTimeout.Time().Seconds(), s.cfg.OverloadWait.Time(), s.log)
	threads := s.cfg.AcceptorThreads
	if threads < 1 {
		threads = 1
	}
	s.pool = libacc.NewPool(acc, threads, 256, s.log)
	s.pool.Start()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)
	s.gone.Store(false)
	s.mu.Unlock()

	defer close(s.done)
	defer s.running.Store(false)

	pollTimeout := 0.5
	for {
		select {
		case <-ctx.Done():
			return s.teardown()
		default:
		}

		for _, pub := range s.pool.Drain() {
			if s.update != nil {
				s.update(&pub.Descriptor)
			}
			conn := s.handler(pub.Peer, libstm.New(&pub.Descriptor))
			if err := s.registry.Join(conn); err != nil {
				s.log.WithError(err).WithField("peer", pub.Peer.String()).Warn("tcp server: join rejected")
			}
		}

		if err := s.registry.Update(pollTimeout); err != nil {
			s.log.WithError(err).Error("tcp server: registry update failed")
		}
	}
}

func (s *server) teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.pool != nil {
		_ = s.pool.Stop(ctx)
	}
	if s.registry != nil {
		s.registry.Clear()
	}
	_ = s.listener.Close()
	s.gone.Store(true)
	return nil
}

// Shutdown cancels the running Serve loop and waits for it to return, or for
// ctx to expire first.
func (s *server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running.Load() {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrShutdownTimeout
	}
}

// StopGone is Shutdown plus a wait for teardown to mark the server fully
// gone (listener closed, pool stopped, registry cleared), returning
// ErrGoneTimeout if ctx expires first.
func (s *server) StopGone(ctx context.Context) error {
	if err := s.Shutdown(ctx); err != nil {
		return err
	}
	for !s.IsGone() {
		select {
		case <-ctx.Done():
			return ErrGoneTimeout
		case <-time.After(time.Millisecond):
		}
	}
	return nil
}
