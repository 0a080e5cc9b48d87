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

// Package tcp is the dial-side mirror of socket/server/tcp: a direct,
// non-multiplexed connection to a TCP endpoint, returning a stream.Adapter
// once connected. A dialed connection is never "accepted", so it bypasses
// the registry and notifier entirely.
package tcp

import (
	"context"
	"fmt"
	"sync"

	libadr "github.com/nabbar/netcore/address"
	liberr "github.com/nabbar/netcore/errors"
	libptc "github.com/nabbar/netcore/network/protocol"
	libsck "github.com/nabbar/netcore/sock"
	libstm "github.com/nabbar/netcore/stream"
)

// ErrAddress reports an empty or unparsable dial target.
var ErrAddress = fmt.Errorf("tcp client: invalid address")

// ErrNotConnected reports an operation attempted before Connect succeeded.
var ErrNotConnected = fmt.Errorf("tcp client: not connected")

// Client is a single outbound TCP connection, dialed on demand and
// redialable after Close.
type Client interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	Stream() *libstm.Adapter
	Close() error
}

type client struct {
	address string
	network libptc.NetworkProtocol

	mu     sync.Mutex
	d      libsck.Descriptor
	stream *libstm.Adapter
}

// New builds a Client targeting address ("host:port"), defaulting to the
// dual-stack NetworkTCP transport.
func New(address string) (Client, error) {
	return NewWithNetwork(address, libptc.NetworkTCP)
}

// NewWithNetwork builds a Client targeting address over the given TCP
// variant (NetworkTCP, NetworkTCP4 or NetworkTCP6).
func NewWithNetwork(address string, network libptc.NetworkProtocol) (Client, error) {
	if address == "" {
		return nil, ErrAddress
	}
	return &client{address: address, network: network, d: libsck.InvalidDescriptor()}, nil
}

// Connect resolves the target address and dials it, honoring ctx for
// cancellation during the connect(2) wait.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	host, port, err := splitHostPort(c.address)
	if err != nil {
		return ErrAddress
	}

	pref := libadr.FamilyUnspec
	switch c.network {
	case libptc.NetworkTCP4:
		pref = libadr.FamilyV4
	case libptc.NetworkTCP6:
		pref = libadr.FamilyV6
	}

	addrs, err := libadr.Resolve(host, port, c.network, pref)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		return liberr.New(liberr.InvalidArgument, fmt.Errorf("tcp client: %q did not resolve", c.address))
	}

	d, err := libsck.NewSocket(addrs[0])
	if err != nil {
		return err
	}

	if err := libsck.Connect(ctx, &d, addrs[0]); err != nil {
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
