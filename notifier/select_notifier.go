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

package notifier

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/netcore/errors"
)

// fdSetMaxFD is the number of descriptor slots in a unix.FdSet, 1024 on
// every target this module builds for. select-style notification
// is O(max_fd), the portable fallback of last resort (spec.md §4.2).
const fdSetMaxFD = 1024

type selectNotifier struct {
	mu    sync.Mutex
	read  map[int32]struct{}
	write map[int32]struct{}
	log   logrus.FieldLogger
}

// newSelectNotifier builds the level-triggered select(2) backend used when
// neither epoll nor kqueue is available.
func newSelectNotifier(log logrus.FieldLogger) Notifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &selectNotifier{
		read:  make(map[int32]struct{}),
		write: make(map[int32]struct{}),
		log:   log,
	}
}

func (s *selectNotifier) Add(fd int32, interest Interest) error {
	if fd < 0 || fd >= fdSetMaxFD {
		return liberr.New(liberr.InvalidArgument, nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if interest&Readable != 0 {
		s.read[fd] = struct{}{}
	} else {
		delete(s.read, fd)
	}
	if interest&Writable != 0 {
		s.write[fd] = struct{}{}
	} else {
		delete(s.write, fd)
	}
	return nil
}

func (s *selectNotifier) Remove(fd int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.read, fd)
	delete(s.write, fd)
	return nil
}

func (s *selectNotifier) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[int32]struct{}, len(s.read)+len(s.write))
	for fd := range s.read {
		seen[fd] = struct{}{}
	}
	for fd := range s.write {
		seen[fd] = struct{}{}
	}
	return len(seen)
}

func (s *selectNotifier) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.read = make(map[int32]struct{})
	s.write = make(map[int32]struct{})
	return nil
}

func (s *selectNotifier) Backend() Backend {
	return LevelSet
}

func (s *selectNotifier) Poll(timeout float64, out *[]EventRecord) (int, error) {
	s.mu.Lock()
	readFDs := make([]int32, 0, len(s.read))
	for fd := range s.read {
		readFDs = append(readFDs, fd)
	}
	writeFDs := make([]int32, 0, len(s.write))
	for fd := range s.write {
		writeFDs = append(writeFDs, fd)
	}
	s.mu.Unlock()

	if len(readFDs) == 0 && len(writeFDs) == 0 {
		if timeout > 0 {
			time.Sleep(time.Duration(timeout * float64(time.Second)))
		}
		return 0, nil
	}

	var readSet, writeSet, errSet unix.FdSet
	maxFD := int32(0)
	for _, fd := range readFDs {
		fdSetAdd(&readSet, fd)
		fdSetAdd(&errSet, fd)
		if fd > maxFD {
			maxFD = fd
		}
	}
	for _, fd := range writeFDs {
		fdSetAdd(&writeSet, fd)
		fdSetAdd(&errSet, fd)
		if fd > maxFD {
			maxFD = fd
		}
	}

	var tv *unix.Timeval
	if timeout >= 0 {
		t := unix.NsecToTimeval(int64(timeout * float64(time.Second)))
		tv = &t
	}

	n, err := unix.Select(int(maxFD)+1, &readSet, &writeSet, &errSet, tv)
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
	for _, fd := range readFDs {
		if fdSetIsSet(&errSet, fd) {
			*out = append(*out, EventRecord{FD: fd, Kind: Error})
			count++
			continue
		}
		if fdSetIsSet(&readSet, fd) {
			*out = append(*out, EventRecord{FD: fd, Kind: Recv})
			count++
		}
	}
	for _, fd := range writeFDs {
		if fdSetIsSet(&errSet, fd) {
			continue
		}
		if fdSetIsSet(&writeSet, fd) {
			*out = append(*out, EventRecord{FD: fd, Kind: Send})
			count++
		}
	}
	return count, nil
}

