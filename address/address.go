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

// Package address models a bound transport endpoint: family, raw address
// bytes, port and the socket type/protocol pair it was resolved for (spec.md
// §3, "Address"). It is deliberately a plain, cheaply-copyable value type -
// no descriptor, no syscall - so the sock and acceptor packages can pass
// Addresses around without worrying about ownership.
package address

import (
	"context"
	"fmt"
	"net"
	"strconv"

	liberr "github.com/nabbar/netcore/errors"
	libptc "github.com/nabbar/netcore/network/protocol"
)

// Family names the IP address family of an Address.
type Family uint8

const (
	// FamilyUnspec lets Resolve pick v4 or v6 per the resolver's answer.
	FamilyUnspec Family = iota
	FamilyV4
	FamilyV6
	// FamilyUnix marks a filesystem-path endpoint (no IP family applies).
	FamilyUnix
)

// Address is an IPv4/IPv6 endpoint bound to a transport protocol, or a
// filesystem path bound to a Unix-domain one. It satisfies spec.md's
// invariant that family and byte-length agree: V4 always carries 4
// significant bytes, V6 always 16, Unix none (the path is carried
// separately).
type Address struct {
	Family   Family
	IP       net.IP
	Port     int
	Path     string
	Protocol libptc.NetworkProtocol
}

// Resolve turns a textual host (or, for Unix protocols, a filesystem path)
// plus a port into the list of Addresses it names, honoring a family
// preference. Per spec.md §4.1, a name that resolves to nothing returns an
// empty slice, not an error - only a malformed request is an error.
func Resolve(host string, port int, protocol libptc.NetworkProtocol, pref Family) ([]Address, error) {
	if protocol.IsUnix() {
		if host == "" {
			return nil, liberr.New(liberr.InvalidArgument, fmt.Errorf("empty unix socket path"))
		}
		return []Address{{Family: FamilyUnix, Path: host, Protocol: protocol}}, nil
	}

	network := "ip"
	switch pref {
	case FamilyV4:
		network = "ip4"
	case FamilyV6:
		network = "ip6"
	}

	if port < 0 || port > 65535 {
		return nil, liberr.New(liberr.InvalidArgument, fmt.Errorf("port %d out of range", port))
	}

	ips, err := net.DefaultResolver.LookupIP(context.Background(), network, host)
	if err != nil {
		// Unresolvable/unknown names are reported as "no addresses", not a
		// failure: spec.md §4.1.
		return []Address{}, nil
	}

	out := make([]Address, 0, len(ips))
	for _, ip := range ips {
		fam := FamilyV6
		if v4 := ip.To4(); v4 != nil {
			fam = FamilyV4
			ip = v4
		}
		out = append(out, Address{Family: fam, IP: ip, Port: port, Protocol: protocol})
	}
	return out, nil
}

// String renders the Address the way net.JoinHostPort would: "host:port" for
// IP families, the bare path for Unix. Parse(a.String()) reconstructs an
// equal Address for every Address Resolve can produce (spec.md §8 property
// 7, "Address round-trip").
func (a Address) String() string {
	if a.Family == FamilyUnix {
		return a.Path
	}
	return net.JoinHostPort(a.IP.String(), strconv.Itoa(a.Port))
}

// Parse reconstructs an Address of the given protocol from its String form.
func Parse(s string, protocol libptc.NetworkProtocol) (Address, error) {
	if protocol.IsUnix() {
		return Address{Family: FamilyUnix, Path: s, Protocol: protocol}, nil
	}

	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Address{}, liberr.New(liberr.InvalidArgument, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Address{}, liberr.New(liberr.InvalidArgument, err)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return Address{}, liberr.New(liberr.InvalidArgument, fmt.Errorf("invalid address %q", host))
	}

	fam := FamilyV6
	if v4 := ip.To4(); v4 != nil {
		fam = FamilyV4
		ip = v4
	}

	return Address{Family: fam, IP: ip, Port: port, Protocol: protocol}, nil
}

// Equal reports whether two Addresses name the same endpoint.
func (a Address) Equal(b Address) bool {
	if a.Family != b.Family || a.Protocol != b.Protocol {
		return false
	}
	if a.Family == FamilyUnix {
		return a.Path == b.Path
	}
	return a.Port == b.Port && a.IP.Equal(b.IP)
}
