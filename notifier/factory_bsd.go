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
	"fmt"

	"github.com/sirupsen/logrus"
)

// New builds a Notifier for the requested Backend, resolving Auto to kqueue
// on this platform.
func New(backend Backend, log logrus.FieldLogger) (Notifier, error) {
	switch backend {
	case Auto, DualFilter:
		return newKqueueNotifier(log)
	case LevelSet:
		return newSelectNotifier(log), nil
	case EdgeInterest:
		return nil, fmt.Errorf("notifier: edge-interest backend is not available on this platform")
	default:
		return newKqueueNotifier(log)
	}
}
