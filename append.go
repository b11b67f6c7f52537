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

package syncq

import (
	"time"

	"github.com/cloudwego/syncq/internal/layout"
	"github.com/cloudwego/syncq/internal/ring"
)

// Append writes a new message to the queue, visible to every participant
// registered at the moment tail advances. A nil opt is equivalent to
// DefaultAppendOption(), which fails immediately with ErrOutOfSpace
// instead of waiting for room.
func (q *Queue) Append(msgType string, body []byte, opt *AppendOption) error {
	if opt == nil {
		opt = DefaultAppendOption()
	}
	if q.closed {
		return ErrClosed
	}
	if !q.registered {
		return ErrClosed
	}

	typeBytes := []byte(msgType)
	n := layout.MsgHeaderSize + uint64(len(q.sender)) + uint64(len(typeBytes)) + uint64(len(body))

	start := time.Now()

	q.lock.Lock()
	defer q.lock.Unlock()

	free := ring.GetCounter64(q.header, layout.IFree)
	if free < n {
		if !opt.Block {
			return ErrOutOfSpace
		}

		var rem *time.Duration
		if opt.Timeout != nil {
			r := *opt.Timeout - time.Since(start)
			rem = &r
		}
		if !q.lock.WaitFor(func() bool {
			return ring.GetCounter64(q.header, layout.IFree) >= n
		}, rem) {
			return ErrOutOfSpace
		}
	}

	procs := ring.GetCounter64(q.header, layout.IProcs)
	i := ring.GetCounter64(q.header, layout.ITail)

	hdr := ring.MsgHeader{
		ReadsRemaining: uint32(procs),
		SenderLen:      uint32(len(q.sender)),
		TypeLen:        uint32(len(typeBytes)),
		BodyLen:        uint32(len(body)),
	}
	ring.WriteMsgHeader(q.body, i, hdr)
	i = layout.Wrap(i, layout.MsgHeaderSize, q.bodyLen)
	i = ring.WriteWrapped(q.body, i, q.bodyLen, q.sender)
	i = ring.WriteWrapped(q.body, i, q.bodyLen, typeBytes)
	i = ring.WriteWrapped(q.body, i, q.bodyLen, body)

	free = ring.GetCounter64(q.header, layout.IFree) - n
	if !layout.FitsContiguous(i, q.bodyLen) {
		free -= q.bodyLen - i
		i = 0
	}
	ring.PutCounter64(q.header, layout.IFree, free)
	ring.PutCounter64(q.header, layout.ITail, i)

	serial := ring.GetCounter64(q.header, layout.ISerial)
	ring.PutCounter64(q.header, layout.ISerial, serial+1)

	q.lock.Broadcast()
	return nil
}
