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

package registry_test

import (
	"testing"
	"time"

	libclk "github.com/nabbar/netcore/clock"
	libntf "github.com/nabbar/netcore/notifier"
	libreg "github.com/nabbar/netcore/registry"
)

// fakeNotifier is an in-memory stand-in for a Notifier, letting tests drive
// Update's dispatch logic without real kernel descriptors.
type fakeNotifier struct {
	registered map[int32]libntf.Interest
	queued     []libntf.EventRecord
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{registered: make(map[int32]libntf.Interest)}
}

func (f *fakeNotifier) Add(fd int32, interest libntf.Interest) error {
	f.registered[fd] = interest
	return nil
}

func (f *fakeNotifier) Remove(fd int32) error {
	delete(f.registered, fd)
	return nil
}

func (f *fakeNotifier) Count() int { return len(f.registered) }

func (f *fakeNotifier) Clear() error {
	f.registered = make(map[int32]libntf.Interest)
	return nil
}

func (f *fakeNotifier) Backend() libntf.Backend { return libntf.LevelSet }

func (f *fakeNotifier) Poll(_ float64, out *[]libntf.EventRecord) (int, error) {
	*out = append(*out, f.queued...)
	n := len(f.queued)
	f.queued = nil
	return n, nil
}

func (f *fakeNotifier) push(ev libntf.EventRecord) {
	f.queued = append(f.queued, ev)
}

// fakeConn is a minimal Connection used to observe dispatch order and
// timeout behavior.
type fakeConn struct {
	fd           int32
	lastRecv     float64
	recvTimeout  float64
	order        *[]string
	recvReturn   int
	sendReturn   int
	closed       bool
	updateResult bool
	updateCalled bool
}

func (c *fakeConn) Descriptor() int32 { return c.fd }

func (c *fakeConn) OnReceive(maxBytes int, now float64) int {
	*c.order = append(*c.order, "recv")
	c.lastRecv = now
	return c.recvReturn
}

func (c *fakeConn) OnSend(maxBytes int) int {
	*c.order = append(*c.order, "send")
	return c.sendReturn
}

func (c *fakeConn) OnError(native int) {
	*c.order = append(*c.order, "error")
}

func (c *fakeConn) OnClose() {
	c.closed = true
}

func (c *fakeConn) OnUpdate(now float64) bool {
	c.updateCalled = true
	if c.recvTimeout > 0 && c.lastRecv != 0 && now-c.lastRecv > c.recvTimeout {
		return false
	}
	if c.updateResult {
		return true
	}
	return true
}

func (c *fakeConn) Writable() bool { return false }

func TestJoinRejectsDuplicateDescriptor(t *testing.T) {
	n := newFakeNotifier()
	r := libreg.New(0, n, libclk.NewMock(), nil)

	order := []string{}
	c1 := &fakeConn{fd: 5, order: &order}
	c2 := &fakeConn{fd: 5, order: &order}

	if err := r.Join(c1); err != nil {
		t.Fatalf("first Join failed: %v", err)
	}
	if err := r.Join(c2); err == nil {
		t.Fatalf("second Join with a duplicate fd should fail")
	}
	if r.OpenConnections() != 1 {
		t.Fatalf("OpenConnections() = %d, want 1", r.OpenConnections())
	}
}

func TestJoinBatchSkipsDuplicate(t *testing.T) {
	n := newFakeNotifier()
	r := libreg.New(0, n, libclk.NewMock(), nil)

	order := []string{}
	batch := make([]libreg.Connection, 0, 100)
	for i := 0; i < 100; i++ {
		fd := int32(i)
		if i == 50 {
			fd = 49 // duplicate of c49
		}
		batch = append(batch, &fakeConn{fd: fd, order: &order})
	}

	count := r.JoinBatch(batch)
	if count != 99 {
		t.Fatalf("JoinBatch() = %d, want 99", count)
	}
	if r.OpenConnections() != 99 {
		t.Fatalf("OpenConnections() = %d, want 99", r.OpenConnections())
	}
}

func TestUpdateOrderingRecvThenSendThenError(t *testing.T) {
	n := newFakeNotifier()
	clk := libclk.NewMock()
	r := libreg.New(0, n, clk, nil)

	order := []string{}
	recvConn := &fakeConn{fd: 1, order: &order}
	sendConn := &fakeConn{fd: 2, order: &order}
	errConn := &fakeConn{fd: 3, order: &order}

	for _, c := range []*fakeConn{recvConn, sendConn, errConn} {
		if err := r.Join(c); err != nil {
			t.Fatalf("Join failed: %v", err)
		}
	}

	n.push(libntf.EventRecord{FD: 3, Kind: libntf.Error})
	n.push(libntf.EventRecord{FD: 2, Kind: libntf.Send})
	n.push(libntf.EventRecord{FD: 1, Kind: libntf.Recv})

	if err := r.Update(0); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	recvIdx, sendIdx, errIdx := -1, -1, -1
	for i, ev := range order {
		switch ev {
		case "recv":
			if recvIdx == -1 {
				recvIdx = i
			}
		case "send":
			if sendIdx == -1 {
				sendIdx = i
			}
		case "error":
			if errIdx == -1 {
				errIdx = i
			}
		}
	}
	if !(recvIdx < sendIdx && sendIdx < errIdx) {
		t.Fatalf("dispatch order = %v, want recv before send before error", order)
	}

	snapshot := r.ErrorSnapshot()
	if len(snapshot) != 1 || snapshot[0].Descriptor() != 3 {
		t.Fatalf("ErrorSnapshot() = %v, want only fd 3", snapshot)
	}
}

func TestErrorSetDrainedAtStartOfUpdate(t *testing.T) {
	n := newFakeNotifier()
	clk := libclk.NewMock()
	r := libreg.New(0, n, clk, nil)

	order := []string{}
	c := &fakeConn{fd: 1, order: &order}
	if err := r.Join(c); err != nil {
		t.Fatalf("Join error: %v", err)
	}

	n.push(libntf.EventRecord{FD: 1, Kind: libntf.Error})
	if err := r.Update(0); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(r.ErrorSnapshot()) != 1 {
		t.Fatalf("expected the first Update to populate the errored set")
	}

	if err := r.Update(0); err != nil {
		t.Fatalf("second Update error: %v", err)
	}
	if len(r.ErrorSnapshot()) != 0 {
		t.Fatalf("errored set should be empty at the start of a clean Update")
	}
	if !c.closed {
		t.Fatalf("errored connection should have been closed by the second Update")
	}
}

func TestTimeoutEnrollsConnectionInErroredSet(t *testing.T) {
	n := newFakeNotifier()
	clk := libclk.NewMock()
	// Start past zero: fakeConn treats a last-receive time of 0 as "never".
	clk.Advance(100 * time.Millisecond)
	r := libreg.New(0, n, clk, nil)

	order := []string{}
	c := &fakeConn{fd: 1, order: &order, recvTimeout: 1.0}
	if err := r.Join(c); err != nil {
		t.Fatalf("Join error: %v", err)
	}

	n.push(libntf.EventRecord{FD: 1, Kind: libntf.Recv})
	if err := r.Update(0); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(r.ErrorSnapshot()) != 0 {
		t.Fatalf("no timeout should have fired yet")
	}

	clk.Advance(1200 * time.Millisecond)
	if err := r.Update(0); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	snapshot := r.ErrorSnapshot()
	if len(snapshot) != 1 || snapshot[0].Descriptor() != 1 {
		t.Fatalf("ErrorSnapshot() = %v, want fd 1 timed out", snapshot)
	}
}

func TestClearUnjoinsEveryConnection(t *testing.T) {
	n := newFakeNotifier()
	r := libreg.New(0, n, libclk.NewMock(), nil)

	order := []string{}
	c1 := &fakeConn{fd: 1, order: &order}
	c2 := &fakeConn{fd: 2, order: &order}
	_ = r.Join(c1)
	_ = r.Join(c2)

	r.Clear()

	if r.OpenConnections() != 0 {
		t.Fatalf("OpenConnections() after Clear = %d, want 0", r.OpenConnections())
	}
	if !c1.closed || !c2.closed {
		t.Fatalf("Clear should invoke OnClose on every connection")
	}
	if n.Count() != 0 {
		t.Fatalf("Clear should remove every descriptor from the notifier")
	}
}
