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

// Package stress drives a many-writer, many-reader workload against a
// real queue for the invariant and fan-out-accounting tests in this
// package, the same shape as a multi-writer/multi-reader
// benchmark harness but kept in-process and goroutine-based rather than
// spawning OS processes.
package stress

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Message is one observed (sender, type, body) triple, recorded by a
// reader so the harness can check FIFO-per-writer and fan-out-exactly-
// once after the run.
type Message struct {
	Sender string
	Type   string
	Body   string
}

// Options configures Run. Writers and Readers are constructors rather
// than ready-made handles because each simulated participant needs its
// own registered *syncq.Queue instance (its own cursor and serial), the
// same way each OS process would open and register independently.
type Options struct {
	// NewWriter and NewReader construct and register one participant
	// each; the int argument is the participant's ordinal, useful for
	// deriving a distinct sender name.
	NewWriter func(ordinal int) (Writer, error)
	NewReader func(ordinal int) (Reader, error)

	NumWriters     int
	NumReaders     int
	AppendsPerSend int

	// MaxConcurrentAppends bounds how many writer goroutines may be
	// inside an Append call at once, via a weighted semaphore, keeping
	// contention realistic on a small test region instead of every
	// writer immediately piling onto the lock.
	MaxConcurrentAppends int64

	// MaxJitter bounds a random sleep inserted between operations, to
	// spread out interleavings the same way the benchmark harness this
	// is grounded on randomizes writer/reader pacing.
	MaxJitter time.Duration
}

// Writer is what one simulated writer goroutine needs.
type Writer interface {
	Append(msgType string, body []byte) error
	Close() error
}

// Reader is what one simulated reader goroutine needs. Pop blocks with
// the given timeout and reports whether a message was available.
type Reader interface {
	Pop(timeout time.Duration) (msg Message, ok bool, err error)
	Close() error
}

// Result collects every reader's observed messages and any error raised
// by a writer or reader goroutine.
type Result struct {
	PerReaderMessages [][]Message
	Errs              []error
}

// Run drives Options.NumWriters writer goroutines, each appending
// Options.AppendsPerSend messages whose body is tagged with its own
// ordinal, and Options.NumReaders reader goroutines, each draining until
// a 50ms Pop returns nothing after the writers finish.
func Run(opt Options) (Result, error) {
	var res Result
	var mu sync.Mutex
	addErr := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		res.Errs = append(res.Errs, err)
		mu.Unlock()
	}

	sem := semaphore.NewWeighted(opt.MaxConcurrentAppends)
	ctx := context.Background()

	// a fixed, known-at-call-time number of writer/reader goroutines,
	// joined below with sync.WaitGroup: nothing here needs a worker pool,
	// just `go`.
	var writers sync.WaitGroup
	writers.Add(opt.NumWriters)
	for w := 0; w < opt.NumWriters; w++ {
		ordinal := w
		go func() {
			defer writers.Done()
			wq, err := opt.NewWriter(ordinal)
			if err != nil {
				addErr(fmt.Errorf("stress: new writer %d: %w", ordinal, err))
				return
			}
			defer wq.Close()

			for i := 0; i < opt.AppendsPerSend; i++ {
				if err := sem.Acquire(ctx, 1); err != nil {
					addErr(err)
					return
				}
				body := fmt.Sprintf("w%d-msg%d", ordinal, i)
				err := wq.Append("data", []byte(body))
				sem.Release(1)
				if err != nil {
					addErr(fmt.Errorf("stress: writer %d append %d: %w", ordinal, i, err))
					return
				}
				jitter(opt.MaxJitter)
			}
		}()
	}

	res.PerReaderMessages = make([][]Message, opt.NumReaders)
	var readers sync.WaitGroup
	readers.Add(opt.NumReaders)
	done := make(chan struct{})
	for r := 0; r < opt.NumReaders; r++ {
		ordinal := r
		go func() {
			defer readers.Done()
			rq, err := opt.NewReader(ordinal)
			if err != nil {
				addErr(fmt.Errorf("stress: new reader %d: %w", ordinal, err))
				return
			}
			defer rq.Close()

			var msgs []Message
			for {
				msg, ok, err := rq.Pop(50 * time.Millisecond)
				if err != nil {
					addErr(fmt.Errorf("stress: reader %d pop: %w", ordinal, err))
					return
				}
				if ok {
					msgs = append(msgs, msg)
					continue
				}
				select {
				case <-done:
					mu.Lock()
					res.PerReaderMessages[ordinal] = msgs
					mu.Unlock()
					return
				default:
				}
				jitter(opt.MaxJitter)
			}
		}()
	}

	writers.Wait()
	close(done)
	readers.Wait()

	return res, nil
}

func jitter(max time.Duration) {
	if max <= 0 {
		return
	}
	time.Sleep(time.Duration(rand.Int63n(int64(max))))
}
