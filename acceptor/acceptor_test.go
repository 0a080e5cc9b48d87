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

package acceptor_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	libacc "github.com/nabbar/netcore/acceptor"
	libadr "github.com/nabbar/netcore/address"
	libptc "github.com/nabbar/netcore/network/protocol"
	libsck "github.com/nabbar/netcore/sock"
)

func boundPort(t *testing.T, d *libsck.Descriptor) int {
	t.Helper()
	sa, err := unix.Getsockname(int(d.Int()))
	if err != nil {
		t.Fatalf("Getsockname error: %v", err)
	}
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return v.Port
	default:
		t.Fatalf("unexpected sockaddr type %T", sa)
		return 0
	}
}

func bindListener(t *testing.T) (libsck.Descriptor, libadr.Address) {
	t.Helper()
	addr := libadr.Address{Family: libadr.FamilyV4, IP: net.ParseIP("127.0.0.1").To4(), Port: 0, Protocol: libptc.NetworkTCP4}

	d, err := libsck.NewSocket(addr)
	if err != nil {
		t.Fatalf("NewSocket error: %v", err)
	}
	if err := libsck.SetReuseAddress(&d, true); err != nil {
		t.Fatalf("SetReuseAddress error: %v", err)
	}
	if err := libsck.Bind(&d, addr); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	if err := libsck.Listen(&d, 8); err != nil {
		t.Fatalf("Listen error: %v", err)
	}
	return d, addr
}

func TestAcceptOneConnection(t *testing.T) {
	d, addr := bindListener(t)
	defer d.Close()

	port := boundPort(t, &d)
	a := libacc.New(d, addr, 1.0, 10*time.Millisecond, nil)

	dialed := make(chan error, 1)
	go func() {
		conn, err := net.DialTimeout("tcp4", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), time.Second)
		if conn != nil {
			defer conn.Close()
		}
		dialed <- err
	}()

	fd, peer, err := a.Accept()
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if !fd.Valid() {
		t.Fatalf("Accept returned an invalid descriptor for a real connection")
	}
	defer fd.Close()

	if peer.Family != libadr.FamilyV4 {
		t.Errorf("peer.Family = %v, want FamilyV4", peer.Family)
	}

	if err := <-dialed; err != nil {
		t.Fatalf("Dial error: %v", err)
	}
}

func TestPoolStartStop(t *testing.T) {
	d, addr := bindListener(t)

	a := libacc.New(d, addr, 0.05, 10*time.Millisecond, nil)
	p := libacc.NewPool(a, 2, 8, nil)

	p.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := p.Stop(ctx); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	if got := p.Drain(); len(got) != 0 {
		t.Fatalf("Drain() after Stop = %v, want empty", got)
	}
}
