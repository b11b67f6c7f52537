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
	"iter"
	"time"
	"unicode/utf8"

	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/bytedance/gopkg/lang/mcache"

	"github.com/cloudwego/syncq/internal/layout"
	"github.com/cloudwego/syncq/internal/ring"
)

// RawMessage is one delivered message with its three fields as the raw
// bytes they were appended with.
type RawMessage struct {
	Sender []byte
	Type   []byte
	Body   []byte
}

// Message is the result of a successful Pop. Raw always holds the
// message's bytes; Sender, Type, and Body are only populated, and
// Decoded set, when the pop requested UTF-8 decoding.
type Message struct {
	Raw     RawMessage
	Decoded bool
	Sender  string
	Type    string
	Body    string
}

// popPredicate reports whether this instance has a candidate message
// without consuming it: either the cursor has not caught up to tail, or
// it has but this instance's last-observed serial differs from the
// region's current one (the producer wrapped exactly onto the cursor).
func (q *Queue) popPredicate() bool {
	tail := ring.GetCounter64(q.header, layout.ITail)
	if q.cursor != tail {
		return true
	}
	return q.serial != ring.GetCounter64(q.header, layout.ISerial)
}

// Pop returns the next message not discarded by this instance's screens,
// silently consuming and discarding any screened messages it encounters
// first. A nil opt is equivalent to DefaultPopOption(). The second return
// value is false when no message was available (non-blocking call, or a
// blocking call whose timeout elapsed); callers should not treat that as
// an error.
func (q *Queue) Pop(opt *PopOption) (Message, bool, error) {
	if opt == nil {
		opt = DefaultPopOption()
	}
	if q.closed {
		return Message{}, false, ErrClosed
	}
	if !q.registered {
		return Message{}, false, ErrClosed
	}

	start := time.Now()

	q.lock.Lock()
	defer q.lock.Unlock()

	for {
		for q.popPredicate() {
			msg, matched, err := q.popOnce()
			if err != nil {
				return Message{}, false, err
			}
			if matched {
				if !opt.Decode {
					return Message{Raw: msg}, true, nil
				}
				decoded, derr := decodeMessage(msg)
				if derr != nil {
					return Message{}, false, derr
				}
				return decoded, true, nil
			}
			// screened: advance loop continues
		}

		if !opt.Block {
			return Message{}, false, nil
		}

		var rem *time.Duration
		if opt.Timeout != nil {
			r := *opt.Timeout - time.Since(start)
			rem = &r
		}
		if !q.lock.WaitFor(q.popPredicate, rem) {
			return Message{}, false, nil
		}
	}
}

// popOnce performs one step of the advance loop: it must be called with
// the lock held and the pop predicate already known to hold. Sender and
// type are read into pooled scratch space first, since a screened
// message's bytes never leave this function; only a matched message's
// bytes are promoted to caller-owned copies. The refcount decrement
// happens after the sender/type bytes have been observed and before
// control returns to the caller, whether the message matched or was
// screened, exactly as required to keep reclamation race-free.
func (q *Queue) popOnce() (RawMessage, bool, error) {
	msgOff, hdr, senderOff, typeOff, bodyOff := q.advance()

	senderScratch := mcache.Malloc(int(hdr.SenderLen))
	ring.ReadWrappedInto(q.body, senderOff, q.bodyLen, hdr.SenderLen, senderScratch)
	screened := q.senderScreen.has(senderScratch)

	var typeScratch []byte
	if !screened {
		typeScratch = mcache.Malloc(int(hdr.TypeLen))
		ring.ReadWrappedInto(q.body, typeOff, q.bodyLen, hdr.TypeLen, typeScratch)
		screened = q.typeScreen.has(typeScratch)
	}

	var msg RawMessage
	if !screened {
		msg.Sender = dirtmake.Bytes(len(senderScratch), len(senderScratch))
		copy(msg.Sender, senderScratch)
		msg.Type = dirtmake.Bytes(len(typeScratch), len(typeScratch))
		copy(msg.Type, typeScratch)
		msg.Body = ring.ReadWrapped(q.body, bodyOff, q.bodyLen, hdr.BodyLen)
	}

	mcache.Free(senderScratch)
	if typeScratch != nil {
		mcache.Free(typeScratch)
	}

	q.release(msgOff, hdr)
	q.lock.Broadcast()

	return msg, !screened, nil
}

func decodeMessage(raw RawMessage) (Message, error) {
	if !utf8.Valid(raw.Sender) || !utf8.Valid(raw.Type) || !utf8.Valid(raw.Body) {
		return Message{}, ErrEncoding
	}
	return Message{
		Raw:     raw,
		Decoded: true,
		Sender:  string(raw.Sender),
		Type:    string(raw.Type),
		Body:    string(raw.Body),
	}, nil
}

// Iterate returns a push iterator yielding every message matching this
// instance's screens, in order, until none remain. opt.Block and
// opt.Timeout are honored on every step, the same as a bare Pop call
// would: a blocking iterator with a timeout waits up to that long for
// each element and stops at the first step that times out.
func (q *Queue) Iterate(opt *PopOption) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		for {
			msg, ok, err := q.Pop(opt)
			if err != nil {
				yield(Message{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(msg, nil) {
				return
			}
		}
	}
}
