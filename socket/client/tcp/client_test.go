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

package tcp_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	tcp "github.com/nabbar/netcore/socket/client/tcp"
)

func TestNewRejectsEmptyAddress(t *testing.T) {
	if _, err := tcp.New(""); err != tcp.ErrAddress {
		t.Fatalf("New() error = %v, want ErrAddress", err)
	}
}

func TestCloseBeforeConnectReturnsErrNotConnected(t *testing.T) {
	cli, err := tcp.New("127.0.0.1:9")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if cli.IsConnected() {
		t.Error("IsConnected() = true before Connect")
	}
	if err := cli.Close(); err != tcp.ErrNotConnected {
		t.Fatalf("Close() error = %v, want ErrNotConnected", err)
	}
}

func freeListener(t *testing.T) net.Listener {
	t.Helper()
	lis, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen error: %v", err)
	}
	return lis
}

func TestConnectSucceedsAgainstListener(t *testing.T) {
	lis := freeListener(t)
	defer lis.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := lis.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	addr := lis.Addr().(*net.TCPAddr)
	cli, err := tcp.New(net.JoinHostPort("127.0.0.1", strconv.Itoa(addr.Port)))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cli.Connect(ctx); err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	defer cli.Close()

	if !cli.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
	if cli.Stream() == nil {
		t.Error("Stream() = nil after Connect")
	}

	select {
	case peer := <-accepted:
		defer peer.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("server never accepted the connection")
	}
}

func TestConnectFailsOnUnresolvableHost(t *testing.T) {
	cli, err := tcp.New("256.256.256.256:80")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := cli.Connect(ctx); err == nil {
		t.Fatal("Connect() error = nil, want resolution failure")
	}
}

func TestConnectHonorsContextCancellation(t *testing.T) {
	// 10.255.255.1 is a non-routable address commonly used to produce a
	// connect(2) that hangs rather than immediately refusing.
	cli, err := tcp.New("10.255.255.1:81")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = cli.Connect(ctx)
	if err == nil {
		_ = cli.Close()
		t.Fatal("Connect() error = nil, want timeout or connection error")
	}
}
