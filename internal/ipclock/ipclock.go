/*
 * Copyright 2025 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package ipclock implements the process-shared mutex and condition
// variable the rest of the queue is built on. There is no portable,
// dependency-free pair of those two primitives across OS process
// boundaries in the standard library, so — per the design note on
// inter-process primitives — both live at a reserved prefix inside the
// region itself, built on the futex the kernel already gives every
// process mapping the same shared pages.
package ipclock

import (
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/cloudwego/syncq/internal/layout"
)

// Mutex word states, following the classic futex mutex from Drepper's
// "Futexes Are Tricky": 0 free, non-zero locked (possibly contended).
const (
	unlocked        = 0
	lockedContended = 2
)

// Lock is a process-shared mutex paired with a condition variable,
// addressed at the start of a mapped region.
type Lock struct {
	mu  *uint32
	seq *uint32
}

// New views the lock state at the start of mem, which must be at least
// layout.LockSize bytes — normally region.Bytes() itself, since the lock
// lives ahead of the queue header at offset 0.
func New(mem []byte) *Lock {
	if len(mem) < layout.LockSize {
		panic("ipclock: mem shorter than layout.LockSize")
	}
	return &Lock{
		mu:  (*uint32)(unsafe.Pointer(&mem[0])),
		seq: (*uint32)(unsafe.Pointer(&mem[4])),
	}
}

// Lock acquires the mutex, blocking until it is free.
func (l *Lock) Lock() {
	if atomic.CompareAndSwapUint32(l.mu, unlocked, lockedContended) {
		return
	}
	for atomic.SwapUint32(l.mu, lockedContended) != unlocked {
		futexWait(l.mu, lockedContended, nil)
	}
}

// Unlock releases the mutex and wakes one waiter, if any.
func (l *Lock) Unlock() {
	atomic.StoreUint32(l.mu, unlocked)
	futexWake(l.mu, 1)
}

// WaitFor blocks, with l held, until pred returns true or timeout
// elapses, re-checking pred after every wake as required of a condition
// variable. l is locked both on entry and on every return. A nil timeout
// waits indefinitely; the elapsed time is accounted across re-waits, so a
// message that arrives screened still eats into the caller's budget.
func (l *Lock) WaitFor(pred func() bool, timeout *time.Duration) bool {
	if pred() {
		return true
	}

	hasDeadline := timeout != nil
	var deadline time.Time
	if hasDeadline {
		deadline = time.Now().Add(*timeout)
	}

	for {
		seq := atomic.LoadUint32(l.seq)

		var wait *time.Duration
		if hasDeadline {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return pred()
			}
			wait = &remaining
		}

		l.Unlock()
		futexWait(l.seq, seq, wait)
		l.Lock()

		if pred() {
			return true
		}
		if hasDeadline && !time.Now().Before(deadline) {
			return false
		}
	}
}

// Broadcast wakes every waiter on the condition variable. The caller must
// hold l, matching every other header mutation in this protocol.
func (l *Lock) Broadcast() {
	atomic.AddUint32(l.seq, 1)
	futexWake(l.seq, 1<<30)
}
