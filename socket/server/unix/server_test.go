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

package unix_test

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	libadr "github.com/nabbar/netcore/address"
	libptc "github.com/nabbar/netcore/network/protocol"
	libreg "github.com/nabbar/netcore/registry"
	libcfg "github.com/nabbar/netcore/socket/config"
	sunix "github.com/nabbar/netcore/socket/server/unix"
	libstm "github.com/nabbar/netcore/stream"
)

type echoConn struct {
	fd     int32
	stream *libstm.Adapter
	closed atomic.Bool
}

func (c *echoConn) Descriptor() int32 { return c.fd }
func (c *echoConn) OnReceive(maxBytes int, now float64) int {
	buf := make([]byte, maxBytes)
	n := c.stream.ReadSome(buf)
	if n <= 0 {
		return n
	}
	return c.stream.WriteFully(buf[:n])
}
func (c *echoConn) OnSend(maxBytes int) int   { return 0 }
func (c *echoConn) OnError(native int)        {}
func (c *echoConn) OnClose()                  { c.closed.Store(true) }
func (c *echoConn) OnUpdate(now float64) bool { return true }
func (c *echoConn) Writable() bool            { return false }

func TestServeAcceptsAndEchoesOverUnixSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), fmt.Sprintf("netcore-%d.sock", os.Getpid()))

	cfg := libcfg.Default()
	cfg.Network = libptc.NetworkUnix
	cfg.Address = path
	cfg.MaxConnections = 10
	cfg.AcceptorThreads = 1

	handler := func(peer libadr.Address, s *libstm.Adapter) libreg.Connection {
		return &echoConn{fd: s.FD(), stream: s}
	}

	srv, err := sunix.New(nil, handler, cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx) }()

	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.DialTimeout("unix", path, 100*time.Millisecond)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("Dial error: %v", err)
	}
	defer conn.Close()

	msg := []byte("ping")
	if _, err := conn.Write(msg); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, len(msg))
	if _, err := conn.Read(buf); err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(buf) != "ping" {
		t.Fatalf("echoed %q, want %q", buf, msg)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}
	cancel()

	if err := <-serveErr; err != nil {
		t.Fatalf("Serve returned error: %v", err)
	}
	if !srv.IsGone() {
		t.Error("IsGone() = false after Shutdown")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("socket file should be removed after teardown")
	}
}

func TestNewRejectsNonUnixNetwork(t *testing.T) {
	cfg := libcfg.Default()
	cfg.Network = libptc.NetworkTCP
	cfg.Address = "/tmp/ignored.sock"
	cfg.MaxConnections = 10

	_, err := sunix.New(nil, func(libadr.Address, *libstm.Adapter) libreg.Connection { return nil }, cfg)
	if err != sunix.ErrInvalidAddress {
		t.Fatalf("New() error = %v, want ErrInvalidAddress", err)
	}
}
