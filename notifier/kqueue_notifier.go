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

//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package notifier

import (
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/netcore/errors"
)

// kqueueNotifier is the dual-filter backend: read and write interest are
// independent EVFILT_READ/EVFILT_WRITE registrations rather than one
// combined event (spec.md §4.2, "Dual-filter ... separate read/write filter
// entries"). Unlike epoll this mechanism is level-triggered by default, so
// descriptors are left in blocking-mode-agnostic form; Writable interest is
// only armed when the caller asks for it.
type kqueueNotifier struct {
	kqfd int
	mu   sync.Mutex
	fds  map[int32]Interest
	log  logrus.FieldLogger
}

func newKqueueNotifier(log logrus.FieldLogger) (Notifier, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, liberr.New(liberr.Classify(err), err)
	}
	return &kqueueNotifier{kqfd: fd, fds: make(map[int32]Interest), log: log}, nil
}

func (k *kqueueNotifier) Add(fd int32, interest Interest) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	prev, existed := k.fds[fd]
	changes := make([]unix.Kevent_t, 0, 2)

	if interest&Readable != 0 && (!existed || prev&Readable == 0) {
		changes = append(changes, kevent(fd, unix.EVFILT_READ, unix.EV_ADD|unix.EV_ENABLE))
	}
	if interest&Readable == 0 && existed && prev&Readable != 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_READ, unix.EV_DELETE))
	}
	if interest&Writable != 0 && (!existed || prev&Writable == 0) {
		changes = append(changes, kevent(fd, unix.EVFILT_WRITE, unix.EV_ADD|unix.EV_ENABLE))
	}
	if interest&Writable == 0 && existed && prev&Writable != 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_WRITE, unix.EV_DELETE))
	}

	if len(changes) > 0 {
		if _, err := unix.Kevent(k.kqfd, changes, nil, nil); err != nil {
			return liberr.New(liberr.Classify(err), err)
		}
	}

	k.fds[fd] = interest
	return nil
}

func (k *kqueueNotifier) Remove(fd int32) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	interest, existed := k.fds[fd]
	if !existed {
		return nil
	}

	changes := make([]unix.Kevent_t, 0, 2)
	if interest&Readable != 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_READ, unix.EV_DELETE))
	}
	if interest&Writable != 0 {
		changes = append(changes, kevent(fd, unix.EVFILT_WRITE, unix.EV_DELETE))
	}
	if len(changes) > 0 {
		_, _ = unix.Kevent(k.kqfd, changes, nil, nil)
	}
	delete(k.fds, fd)
	return nil
}

func (k *kqueueNotifier) Count() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.fds)
}

func (k *kqueueNotifier) Clear() error {
	k.mu.Lock()
	k.fds = make(map[int32]Interest)
	kqfd := k.kqfd
	k.mu.Unlock()
	// Closing the kqueue drops every kernel filter registered on it.
	return unix.Close(kqfd)
}

func (k *kqueueNotifier) Backend() Backend {
	return DualFilter
}

func (k *kqueueNotifier) Poll(timeout float64, out *[]EventRecord) (int, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(int64(timeout * float64(1e9)))
		ts = &t
	}

	events := make([]unix.Kevent_t, 128)
	n, err := unix.Kevent(k.kqfd, nil, events, ts)
	if err == unix.EINTR {
		return 0, nil
	}
	if err != nil {
		return liberr.Classify(err).Negative(), liberr.New(liberr.Classify(err), err)
	}
	if n == 0 {
		return 0, nil
	}

	count := 0
	for i := 0; i < n; i++ {
		ev := events[i]
		fd := int32(ev.Ident)
		switch {
		case ev.Flags&(unix.EV_EOF|unix.EV_ERROR) != 0:
			*out = append(*out, EventRecord{FD: fd, Kind: Error})
			count++
		case ev.Filter == unix.EVFILT_READ:
			*out = append(*out, EventRecord{FD: fd, Kind: Recv})
			count++
		case ev.Filter == unix.EVFILT_WRITE:
			*out = append(*out, EventRecord{FD: fd, Kind: Send})
			count++
		}
	}
	return count, nil
}

func kevent(fd int32, filter int16, flags uint16) unix.Kevent_t {
	return unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: filter,
		Flags:  flags,
	}
}
