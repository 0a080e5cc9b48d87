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

// Package acceptor runs the multi-threaded accept loop that feeds new
// connections into a registry owner thread via a handoff queue (spec.md
// §4.4). Acceptor threads never touch the registry or notifier directly.
package acceptor

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	libadr "github.com/nabbar/netcore/address"
	liberr "github.com/nabbar/netcore/errors"
	libsck "github.com/nabbar/netcore/sock"
)

// State names a point in a single acceptor thread's state machine.
type State uint8

const (
	Idle State = iota
	AwaitingReady
	AcceptingOne
	Publishing
	Overload
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReady:
		return "awaiting-ready"
	case AcceptingOne:
		return "accepting-one"
	case Publishing:
		return "publishing"
	case Overload:
		return "overload"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Acceptor wraps a bound, listening Descriptor and the tunables one accept
// attempt needs.
type Acceptor struct {
	listener     libsck.Descriptor
	local        libadr.Address
	acceptTimeo  float64
	overloadWait time.Duration
	log          logrus.FieldLogger
}

// New builds an Acceptor over an already bound and listening Descriptor.
func New(listener libsck.Descriptor, local libadr.Address, acceptTimeout float64, overloadWait time.Duration, log logrus.FieldLogger) *Acceptor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Acceptor{
		listener:     listener,
		local:        local,
		acceptTimeo:  acceptTimeout,
		overloadWait: overloadWait,
		log:          log,
	}
}

// Accept runs a single attempt of spec.md §4.4's contract: it returns a
// freshly-accepted Descriptor and the peer Address, or InvalidDescriptor
// with a nil error on a transient condition (including a deliberate
// overload backoff sleep), or InvalidDescriptor with a non-nil error on a
// fatal condition.
func (a *Acceptor) Accept() (libsck.Descriptor, libadr.Address, error) {
	if a.acceptTimeo > 0 {
		ready, err := a.waitReadable(a.acceptTimeo)
		if err != nil {
			return libsck.InvalidDescriptor(), libadr.Address{}, err
		}
		if !ready {
			return libsck.InvalidDescriptor(), libadr.Address{}, nil
		}
	}

	nfd, sa, err := unix.Accept(int(a.listener.Int()))
	if err != nil {
		return a.classifyAcceptError(err)
	}

	peer := libsck.FromSockaddr(sa)
	peer.Protocol = a.local.Protocol

	a.log.WithFields(logrus.Fields{
		"fd":   nfd,
		"peer": peer.String(),
	}).Trace("acceptor: accepted connection")

	return libsck.New(nfd), peer, nil
}

func (a *Acceptor) classifyAcceptError(err error) (libsck.Descriptor, libadr.Address, error) {
	kind := liberr.Classify(err)

	switch kind {
	case liberr.WouldBlock, liberr.Interrupted, liberr.TimedOut:
		return libsck.InvalidDescriptor(), libadr.Address{}, nil
	case liberr.ResourceExhausted:
		a.log.WithError(err).Warn("acceptor: file table exhausted, backing off")
		time.Sleep(a.overloadWait)
		return libsck.InvalidDescriptor(), libadr.Address{}, nil
	default:
		return libsck.InvalidDescriptor(), libadr.Address{}, liberr.New(kind, err)
	}
}

func (a *Acceptor) waitReadable(timeoutSeconds float64) (bool, error) {
	fd := int(a.listener.Int())
	var rfds unix.FdSet
	fdSetAddAcceptor(&rfds, fd)

	tv := unix.NsecToTimeval(int64(timeoutSeconds * float64(time.Second)))
	n, err := unix.Select(fd+1, &rfds, nil, nil, &tv)
	if err == unix.EINTR {
		return false, nil
	}
	if err != nil {
		return false, liberr.New(liberr.Classify(err), err)
	}
	return n > 0, nil
}
