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

package sock

import (
	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/netcore/errors"
	libadr "github.com/nabbar/netcore/address"
)

// NewSocket creates a SOCK_STREAM socket for the given Address's family
// (protocol 0). On failure it returns InvalidDescriptor and the classified
// error. The returned Descriptor stays open until Close or Recreate is
// called on it; it is not closed automatically when it goes out of scope.
func NewSocket(addr libadr.Address) (Descriptor, error) {
	domain, err := sockDomain(addr)
	if err != nil {
		return InvalidDescriptor(), err
	}

	sockType := unix.SOCK_STREAM
	proto := 0

	fd, err := unix.Socket(domain, sockType, proto)
	if err != nil {
		return InvalidDescriptor(), liberr.New(liberr.Classify(err), err)
	}

	return New(fd), nil
}

func sockDomain(addr libadr.Address) (int, error) {
	switch addr.Family {
	case libadr.FamilyV4:
		return unix.AF_INET, nil
	case libadr.FamilyV6:
		return unix.AF_INET6, nil
	case libadr.FamilyUnix:
		return unix.AF_UNIX, nil
	default:
		return 0, liberr.New(liberr.InvalidArgument, nil)
	}
}

// Bind associates a Descriptor with a local Address.
func Bind(d *Descriptor, addr libadr.Address) error {
	sa, err := toSockaddr(addr)
	if err != nil {
		return err
	}
	if err := unix.Bind(int(d.Int()), sa); err != nil {
		return liberr.New(liberr.Classify(err), err)
	}
	return nil
}

// Listen marks a bound Descriptor as willing to accept incoming connections.
func Listen(d *Descriptor, backlog int) error {
	if err := unix.Listen(int(d.Int()), backlog); err != nil {
		return liberr.New(liberr.Classify(err), err)
	}
	return nil
}

func toSockaddr(addr libadr.Address) (unix.Sockaddr, error) {
	switch addr.Family {
	case libadr.FamilyV4:
		var ip [4]byte
		copy(ip[:], addr.IP.To4())
		return &unix.SockaddrInet4{Port: addr.Port, Addr: ip}, nil
	case libadr.FamilyV6:
		var ip [16]byte
		copy(ip[:], addr.IP.To16())
		return &unix.SockaddrInet6{Port: addr.Port, Addr: ip}, nil
	case libadr.FamilyUnix:
		return &unix.SockaddrUnix{Name: addr.Path}, nil
	default:
		return nil, liberr.New(liberr.InvalidArgument, nil)
	}
}

// FromSockaddr renders a unix.Sockaddr (as accept returns) back into an
// Address, the reverse of toSockaddr. The caller fills in Protocol.
func FromSockaddr(sa unix.Sockaddr) libadr.Address {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return libadr.Address{Family: libadr.FamilyV4, IP: append([]byte(nil), v.Addr[:]...), Port: v.Port}
	case *unix.SockaddrInet6:
		return libadr.Address{Family: libadr.FamilyV6, IP: append([]byte(nil), v.Addr[:]...), Port: v.Port}
	case *unix.SockaddrUnix:
		return libadr.Address{Family: libadr.FamilyUnix, Path: v.Name}
	default:
		return libadr.Address{}
	}
}
