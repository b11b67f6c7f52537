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

//go:build !linux

package ipclock

import (
	"sync/atomic"
	"time"
)

// futexWait/futexWake have no portable equivalent outside Linux. This
// fallback degrades to polling so the package still builds and the race
// detector still sees ordinary atomic synchronization in tests, but it is
// not suitable for real cross-process use; see internal/region's matching
// build-tagged stub.
const pollInterval = 200 * time.Microsecond

func futexWait(addr *uint32, expected uint32, timeout *time.Duration) {
	deadline := time.Now().Add(365 * 24 * time.Hour)
	if timeout != nil {
		deadline = time.Now().Add(*timeout)
	}
	for atomic.LoadUint32(addr) == expected {
		if time.Now().After(deadline) {
			return
		}
		time.Sleep(pollInterval)
	}
}

func futexWake(addr *uint32, n int) {}
