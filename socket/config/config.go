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

// Package config declares the Server and Client configuration surfaces of
// spec.md §6, decodable from a viper-backed config file via mapstructure
// tags, or constructed directly in code.
package config

import (
	"fmt"
	"net"

	libptc "github.com/nabbar/netcore/network/protocol"
	libdur "github.com/nabbar/netcore/duration"
)

// TLS is an inert placeholder mirroring the teacher's socket/config.TLS
// shape. TLS termination is out of scope for this core; the field exists so
// a config file written against a future TLS-aware layer still decodes.
type TLS struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// KeepAlive groups the TCP keep-alive tunables of spec.md §6's
// `keep_alive` option.
type KeepAlive struct {
	Enable     bool `mapstructure:"enable" yaml:"enable"`
	IdleSec    int  `mapstructure:"idle_s" yaml:"idle_s"`
	IntervalS  int  `mapstructure:"interval_s" yaml:"interval_s"`
	ProbeCount int  `mapstructure:"probe_count" yaml:"probe_count"`
}

// Client is the configuration surface for a single outbound dial
// (socket/client/tcp, socket/client/unix). It mirrors the teacher's
// socket/config.Client shape: a Network, an Address, and an inert TLS block.
type Client struct {
	Network libptc.NetworkProtocol `mapstructure:"network" yaml:"network"`
	Address string                 `mapstructure:"address" yaml:"address"`
	TLS     TLS                    `mapstructure:"tls" yaml:"tls"`
}

// Validate checks that Network is set, that a Unix Address is non-empty and
// that a non-empty TCP Address splits into host and port. It does not
// resolve the address, and an empty TCP Address passes.
func (c Client) Validate() error {
	return validateNetworkAddress(c.Network, c.Address)
}

// Server is the configuration surface for a listening socket
// (socket/server/tcp, socket/server/unix), extended with the full tunable
// set spec.md §6 enumerates.
type Server struct {
	Network libptc.NetworkProtocol `mapstructure:"network" yaml:"network"`
	Address string                 `mapstructure:"address" yaml:"address"`
	TLS     TLS                    `mapstructure:"tls" yaml:"tls"`

	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections"`
	RecvTimeout    libdur.Duration `mapstructure:"recv_timeout_seconds" yaml:"recv_timeout_seconds"`
	HeartbeatSec   libdur.Duration `mapstructure:"heartbeat_seconds" yaml:"heartbeat_seconds"`
	AcceptTimeout  libdur.Duration `mapstructure:"accept_timeout_seconds" yaml:"accept_timeout_seconds"`
	OverloadWait   libdur.Duration `mapstructure:"overload_wait_seconds" yaml:"overload_wait_seconds"`

	TCPBufferBytes int       `mapstructure:"tcp_buffer_bytes" yaml:"tcp_buffer_bytes"`
	TCPNoDelay     bool      `mapstructure:"tcp_no_delay" yaml:"tcp_no_delay"`
	KeepAlive      KeepAlive `mapstructure:"keep_alive" yaml:"keep_alive"`
	ReuseAddress   bool      `mapstructure:"reuse_address" yaml:"reuse_address"`
	IPv6Only       bool      `mapstructure:"ipv6_only" yaml:"ipv6_only"`

	AcceptorThreads int    `mapstructure:"acceptor_threads" yaml:"acceptor_threads"`
	NotifierBackend string `mapstructure:"notifier_backend" yaml:"notifier_backend"`
}

// Default returns a Server pre-filled with spec.md §6's documented
// defaults, leaving Network/Address for the caller to set.
func Default() Server {
	return Server{
		MaxConnections:  0,
		RecvTimeout:     libdur.Seconds(120),
		HeartbeatSec:    libdur.Seconds(30),
		AcceptTimeout:   libdur.Seconds(60),
		OverloadWait:    libdur.Seconds(10),
		TCPBufferBytes:  262144,
		TCPNoDelay:      false,
		ReuseAddress:    false,
		IPv6Only:        false,
		AcceptorThreads: 1,
		NotifierBackend: "auto",
	}
}

// Validate checks that Network/Address describe a bindable endpoint and
// that the tunables are internally consistent (spec.md §6:
// "max_connections required, >0").
func (s Server) Validate() error {
	if err := validateNetworkAddress(s.Network, s.Address); err != nil {
		return err
	}
	if s.MaxConnections <= 0 {
		return fmt.Errorf("max_connections must be > 0, got %d", s.MaxConnections)
	}
	if s.AcceptorThreads <= 0 {
		return fmt.Errorf("acceptor_threads must be > 0, got %d", s.AcceptorThreads)
	}
	if _, err := parseBackend(s.NotifierBackend); err != nil {
		return err
	}
	return nil
}

func validateNetworkAddress(network libptc.NetworkProtocol, address string) error {
	if network == libptc.NetworkEmpty {
		return fmt.Errorf("network protocol is required")
	}
	if network.IsUnix() {
		if address == "" {
			return fmt.Errorf("unix socket path is required")
		}
		return nil
	}
	if address == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(address); err != nil {
		return fmt.Errorf("invalid address %q: %w", address, err)
	}
	return nil
}

func parseBackend(s string) (string, error) {
	switch s {
	case "", "auto", "level-set", "edge-interest", "dual-filter":
		return s, nil
	default:
		return "", fmt.Errorf("unknown notifier_backend %q", s)
	}
}
