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

// Package protocol names the transport a socket.config.Server or
// socket.config.Client binds to, the way net.Dial and net.Listen take a
// network string - except typed, so a bad transport name is a compile-time
// mistake instead of a runtime one.
package protocol

import "strings"

// NetworkProtocol names one of the transports the core's socket/config and
// address packages understand.
type NetworkProtocol uint8

const (
	// NetworkEmpty is the zero value: no protocol configured.
	NetworkEmpty NetworkProtocol = iota
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnix
	NetworkUnixGram
)

// String returns the net-package-compatible name of the protocol, or "" for
// NetworkEmpty and any value outside the known range.
func (n NetworkProtocol) String() string {
	switch n {
	case NetworkTCP:
		return "tcp"
	case NetworkTCP4:
		return "tcp4"
	case NetworkTCP6:
		return "tcp6"
	case NetworkUDP:
		return "udp"
	case NetworkUDP4:
		return "udp4"
	case NetworkUDP6:
		return "udp6"
	case NetworkIP:
		return "ip"
	case NetworkIP4:
		return "ip4"
	case NetworkIP6:
		return "ip6"
	case NetworkUnix:
		return "unix"
	case NetworkUnixGram:
		return "unixgram"
	default:
		return ""
	}
}

// Parse maps a net-package-compatible transport name to a NetworkProtocol.
// An unrecognized name returns NetworkEmpty and false.
func Parse(s string) (NetworkProtocol, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tcp":
		return NetworkTCP, true
	case "tcp4":
		return NetworkTCP4, true
	case "tcp6":
		return NetworkTCP6, true
	case "udp":
		return NetworkUDP, true
	case "udp4":
		return NetworkUDP4, true
	case "udp6":
		return NetworkUDP6, true
	case "ip":
		return NetworkIP, true
	case "ip4":
		return NetworkIP4, true
	case "ip6":
		return NetworkIP6, true
	case "unix":
		return NetworkUnix, true
	case "unixgram":
		return NetworkUnixGram, true
	default:
		return NetworkEmpty, false
	}
}

// IsStream reports whether the protocol names a connection-oriented stream
// transport (tcp* or unix). The core's server/acceptor/registry machinery
// (spec.md §1, §4) only applies to stream transports: datagram protocols are
// explicitly out of scope.
func (n NetworkProtocol) IsStream() bool {
	switch n {
	case NetworkTCP, NetworkTCP4, NetworkTCP6, NetworkUnix:
		return true
	default:
		return false
	}
}

// IsUnix reports whether the protocol is a Unix-domain transport.
func (n NetworkProtocol) IsUnix() bool {
	return n == NetworkUnix || n == NetworkUnixGram
}

// MarshalText implements encoding.TextMarshaler for config file encoding.
func (n NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for config file decoding.
func (n *NetworkProtocol) UnmarshalText(text []byte) error {
	p, _ := Parse(string(text))
	*n = p
	return nil
}
