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

// Package unix is the Unix-domain twin of socket/client/tcp: a direct dial
// to a filesystem path, returning a stream.Adapter once connected.
package unix

import (
	"context"
	"fmt"
	"sync"

	libadr "github.com/nabbar/netcore/address"
	libptc "github.com/nabbar/netcore/network/protocol"
	libsck "github.com/nabbar/netcore/sock"
	libstm "github.com/nabbar/netcore/stream"
)

// ErrAddress reports an empty dial path.
var ErrAddress = fmt.Errorf("unix client: invalid address")

// ErrNotConnected reports an operation attempted before Connect succeeded,
// or repeated after Close.
var ErrNotConnected = fmt.Errorf("unix client: not connected")

// Client is a single outbound Unix-domain connection, dialed on demand and
// redialable after Close.
type Client interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	Stream() *libstm.Adapter
	Close() error
}

type client struct {
	path string

	mu     sync.Mutex
	d      libsck.Descriptor
	stream *libstm.Adapter
}

// New builds a Client targeting the Unix-domain socket at path.
func New(path string) (Client, error) {
	if path == "" {
		return nil, ErrAddress
	}
	return &client{path: path, d: libsck.InvalidDescriptor()}, nil
}

// Connect dials the target path, honoring ctx for cancellation during the
// connect(2) wait.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	addr := libadr.Address{Family: libadr.FamilyUnix, Path: c.path, Protocol: libptc.NetworkUnix}

	d, err := libsck.NewSocket(addr)
	if err != nil {
		return err
	}

	if err := libsck.Connect(ctx, &d, addr); err != nil {
		_ = d.Close()
		return err
	}

	c.d = d
	c.stream = libstm.New(&c.d)
	return nil
}

func (c *client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.d.Valid()
}

// Stream returns the byte-sink adapter for a connected Client, or nil if
// Connect has not succeeded yet.
func (c *client) Stream() *libstm.Adapter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.d.Valid() {
		return ErrNotConnected
	}
	c.stream = nil
	return c.d.Close()
}
