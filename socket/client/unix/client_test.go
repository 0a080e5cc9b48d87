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
	"testing"
	"time"

	unix "github.com/nabbar/netcore/socket/client/unix"
)

func TestNewRejectsEmptyPath(t *testing.T) {
	if _, err := unix.New(""); err != unix.ErrAddress {
		t.Fatalf("New() error = %v, want ErrAddress", err)
	}
}

func TestCloseBeforeConnectReturnsErrNotConnected(t *testing.T) {
	cli, err := unix.New("/tmp/does-not-matter.sock")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := cli.Close(); err != unix.ErrNotConnected {
		t.Fatalf("Close() error = %v, want ErrNotConnected", err)
	}
}

func TestConnectSucceedsAgainstListener(t *testing.T) {
	path := filepath.Join(t.TempDir(), fmt.Sprintf("netcore-client-%d.sock", os.Getpid()))

	lis, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("Listen error: %v", err)
	}
	defer lis.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := lis.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	cli, err := unix.New(path)
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

func TestConnectFailsWhenSocketMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sock")

	cli, err := unix.New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := cli.Connect(ctx); err == nil {
		t.Fatal("Connect() error = nil, want dial failure against missing socket")
	}
}
