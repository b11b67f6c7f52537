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

// Package syncq implements a multi-producer, multi-consumer
// synchronisation queue shared across cooperating OS processes on one
// host. Every registered participant both writes and reads; each
// appended message is fanned out to every participant registered at the
// moment of the write, including the writer itself unless it
// self-screens. The queue lives entirely in one named, fixed-size region
// of shared memory, coordinated by a single inter-process mutex and
// condition variable; see internal/region, internal/ipclock, and
// internal/ring for the pieces that make that possible.
//
// A typical participant:
//
//	q, err := syncq.Open("orders", true, nil)
//	if err != nil {
//		return err
//	}
//	defer q.Close()
//	if err := q.Register(nil); err != nil {
//		return err
//	}
//	if err := q.Append("placed", []byte(`{"id":1}`), nil); err != nil {
//		return err
//	}
//	msg, ok, err := q.Pop(&syncq.PopOption{Decode: true})
//
// A *Queue value is not safe for concurrent use by multiple goroutines
// within one process; it represents exactly one participant's cursor,
// the same way one OS process would normally hold exactly one handle
// onto the region. Nothing prevents separate goroutines from opening
// independent handles onto the same name and registering as separate
// participants, the same as separate OS processes would.
package syncq
