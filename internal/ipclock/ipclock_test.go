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

package ipclock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/syncq/internal/layout"
)

func TestMutualExclusion(t *testing.T) {
	mem := make([]byte, layout.LockSize)
	l := New(mem)

	var counter int
	var wg sync.WaitGroup
	const goroutines = 50
	const iterations = 200
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, goroutines*iterations, counter)
}

func TestWaitForPredicateAlreadyTrue(t *testing.T) {
	mem := make([]byte, layout.LockSize)
	l := New(mem)
	l.Lock()
	defer l.Unlock()
	ok := l.WaitFor(func() bool { return true }, nil)
	assert.True(t, ok)
}

func TestWaitForTimesOut(t *testing.T) {
	mem := make([]byte, layout.LockSize)
	l := New(mem)
	l.Lock()
	defer l.Unlock()

	timeout := 30 * time.Millisecond
	start := time.Now()
	ok := l.WaitFor(func() bool { return false }, &timeout)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), timeout)
}

func TestWaitForWokenByBroadcast(t *testing.T) {
	mem := make([]byte, layout.LockSize)
	l := New(mem)

	ready := make(chan struct{})
	done := make(chan bool, 1)
	var flag bool

	go func() {
		l.Lock()
		close(ready)
		ok := l.WaitFor(func() bool { return flag }, nil)
		l.Unlock()
		done <- ok
	}()

	<-ready
	time.Sleep(10 * time.Millisecond) // give the waiter time to reach futexWait
	l.Lock()
	flag = true
	l.Broadcast()
	l.Unlock()

	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was never woken by broadcast")
	}
}

func TestBroadcastWakesEachOfManyWaiters(t *testing.T) {
	mem := make([]byte, layout.LockSize)
	l := New(mem)

	const waiters = 20
	var ready, done sync.WaitGroup
	ready.Add(waiters)
	done.Add(waiters)
	var target int
	for i := 0; i < waiters; i++ {
		go func(want int) {
			defer done.Done()
			l.Lock()
			ready.Done()
			l.WaitFor(func() bool { return target == want }, nil)
			l.Unlock()
		}(i)
	}
	ready.Wait()

	for i := 0; i < waiters; i++ {
		l.Lock()
		target = i
		l.Broadcast()
		l.Unlock()
		time.Sleep(time.Millisecond)
	}

	waitDone := make(chan struct{})
	go func() {
		done.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		t.Fatal("not all waiters converged")
	}
	require.True(t, true)
}
