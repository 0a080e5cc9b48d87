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

//go:build linux

package notifier

import (
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/netcore/errors"
)

// epollNotifier is the edge-triggered backend (spec.md §4.2, "Edge-interest
// ... O(1) amortized"). Every added descriptor is switched to non-blocking
// mode, since edge triggering only reports a transition: a handler must
// drain the descriptor to would-block before the next event can fire.
type epollNotifier struct {
	epfd int
	mu   sync.Mutex
	size int
	log  logrus.FieldLogger
}

func newEpollNotifier(log logrus.FieldLogger) (Notifier, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, liberr.New(liberr.Classify(err), err)
	}
	return &epollNotifier{epfd: fd, log: log}, nil
}

func (e *epollNotifier) Add(fd int32, interest Interest) error {
	_ = unix.SetNonblock(int(fd), true)

	events := uint32(unix.EPOLLET | unix.EPOLLRDHUP)
	if interest&Readable != 0 {
		events |= unix.EPOLLIN
	}
	if interest&Writable != 0 {
		events |= unix.EPOLLOUT
	}

	ev := unix.EpollEvent{Events: events, Fd: fd}

	e.mu.Lock()
	defer e.mu.Unlock()

	op := unix.EPOLL_CTL_ADD
	if err := unix.EpollCtl(e.epfd, op, int(fd), &ev); err != nil {
		if err == unix.EEXIST {
			if err := unix.EpollCtl(e.epfd, unix.EPOLL_CTL_MOD, int(fd), &ev); err != nil {
				return liberr.New(liberr.Classify(err), err)
			}
			return nil
		}
		return liberr.New(liberr.Classify(err), err)
	}
	e.size++
	return nil
}

func (e *epollNotifier) Remove(fd int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := unix.EpollCtl(e.epfd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		if err == unix.ENOENT {
			return nil
		}
		return liberr.New(liberr.Classify(err), err)
	}
	if e.size > 0 {
		e.size--
	}
	return nil
}

func (e *epollNotifier) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

func (e *epollNotifier) Clear() error {
	e.mu.Lock()
	closed := e.epfd
	e.size = 0
	e.mu.Unlock()
	if closed == 0 {
		return nil
	}
	return unix.Close(closed)
}

func (e *epollNotifier) Backend() Backend {
	return EdgeInterest
}

func (e *epollNotifier) Poll(timeout float64, out *[]EventRecord) (int, error) {
	msec := -1
	if timeout >= 0 {
		msec = int(timeout * 1000)
	}

	events := make([]unix.EpollEvent, 128)
	n, err := unix.EpollWait(e.epfd, events, msec)
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
		fd := ev.Fd
		switch {
		case ev.Events&(unix.EPOLLERR|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0:
			*out = append(*out, EventRecord{FD: fd, Kind: Error})
			count++
		case ev.Events&unix.EPOLLIN != 0:
			*out = append(*out, EventRecord{FD: fd, Kind: Recv})
			count++
		case ev.Events&unix.EPOLLOUT != 0:
			*out = append(*out, EventRecord{FD: fd, Kind: Send})
			count++
		}
	}
	return count, nil
}
