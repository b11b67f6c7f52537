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

//go:build linux

package ipclock

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// futex(2) operation numbers. These are part of the stable kernel ABI,
// not exported as named constants by every golang.org/x/sys/unix version,
// so they are spelled out here the same way internal/iouring spells out
// the io_uring opcodes it depends on.
const (
	futexWaitOp = 0
	futexWakeOp = 1
)

// futexWait blocks while *addr == expected, waking on a matching
// futexWake, a signal, or timeout. A nil timeout waits indefinitely. It
// never reports an error: a spurious return just sends the caller back
// to re-check its predicate, which is already required of WaitFor.
func futexWait(addr *uint32, expected uint32, timeout *time.Duration) {
	var ts *unix.Timespec
	if timeout != nil {
		d := *timeout
		if d < 0 {
			d = 0
		}
		t := unix.NsecToTimespec(d.Nanoseconds())
		ts = &t
	}
	for {
		_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
			uintptr(unsafe.Pointer(addr)), uintptr(futexWaitOp), uintptr(expected),
			uintptr(unsafe.Pointer(ts)), 0, 0)
		if errno == unix.EINTR {
			continue
		}
		return
	}
}

// futexWake wakes up to n waiters blocked on addr.
func futexWake(addr *uint32, n int) {
	unix.Syscall(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)), uintptr(futexWakeOp), uintptr(n))
}
