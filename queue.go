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
	"errors"
	"fmt"

	"github.com/cloudwego/syncq/internal/ipclock"
	"github.com/cloudwego/syncq/internal/layout"
	"github.com/cloudwego/syncq/internal/region"
	"github.com/cloudwego/syncq/internal/ring"
)

// Queue is one participant's handle onto a named shared-memory queue.
type Queue struct {
	name   string
	region *region.Region
	lock   *ipclock.Lock
	header []byte
	body   []byte

	bodyLen uint64

	registered bool
	closed     bool

	sender       []byte
	cursor       uint64
	serial       uint64
	senderScreen *screenSet
	typeScreen   *screenSet
}

// Open constructs a handle onto the named region, creating it when
// create is true or attaching to an existing one otherwise. A nil opt is
// equivalent to DefaultOption(). In attach mode, opt.Size is ignored; the
// creator's size applies.
//
// Open only establishes the handle; call Register before Append or Pop.
func Open(name string, create bool, opt *Option) (*Queue, error) {
	if opt == nil {
		opt = DefaultOption()
	}

	var reg *region.Region
	var err error
	if create {
		reg, err = region.Create(name, opt.Size)
		switch {
		case errors.Is(err, region.ErrExists):
			return nil, fmt.Errorf("%w: %s", ErrExists, name)
		case errors.Is(err, region.ErrTooLarge):
			return nil, fmt.Errorf("%w: %s", ErrTooLarge, name)
		case errors.Is(err, region.ErrTooSmall):
			return nil, fmt.Errorf("%w: %s", ErrTooSmall, name)
		case err != nil:
			return nil, err
		}
	} else {
		reg, err = region.Attach(name)
		switch {
		case errors.Is(err, region.ErrNotFound):
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		case err != nil:
			return nil, err
		}
	}

	data := reg.Bytes()
	bodyLen := layout.BodyLen(reg.Size())
	header := data[layout.QueueHeaderOffset():layout.BodyOffset()]
	body := data[layout.BodyOffset():]
	lock := ipclock.New(data[layout.LockOffset() : layout.LockOffset()+layout.LockSize])

	q := &Queue{
		name:         name,
		region:       reg,
		lock:         lock,
		header:       header,
		body:         body,
		bodyLen:      bodyLen,
		senderScreen: newScreenSet(),
		typeScreen:   newScreenSet(),
	}

	if create {
		// The region is already zero-filled by region.Create; free still
		// needs to reflect the body length rather than the zero it was
		// just filled with.
		lock.Lock()
		ring.PutCounter64(header, layout.IFree, bodyLen)
		lock.Unlock()
	}

	return q, nil
}

// Name returns the region name this queue was opened under.
func (q *Queue) Name() string { return q.name }

// String implements fmt.Stringer for diagnostic logging.
func (q *Queue) String() string {
	return fmt.Sprintf("Queue(name=%s,size=%d)", q.name, q.region.Size())
}

// Register joins this handle to the queue as a participant: increments
// procs and sets the read cursor to the current tail, per the fan-out
// design (a late joiner never sees messages appended before it joined). A
// nil opt is equivalent to DefaultRegisterOption().
func (q *Queue) Register(opt *RegisterOption) error {
	if q.closed {
		return ErrClosed
	}
	if opt == nil {
		opt = DefaultRegisterOption()
	}
	sender := opt.Sender
	if sender == "" {
		sender = DefaultRegisterOption().Sender
	}
	q.sender = []byte(sender)
	if opt.SelfScreen {
		q.senderScreen.add(q.sender)
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	procs := ring.GetCounter64(q.header, layout.IProcs)
	ring.PutCounter64(q.header, layout.IProcs, procs+1)
	q.cursor = ring.GetCounter64(q.header, layout.ITail)
	q.serial = ring.GetCounter64(q.header, layout.ISerial)
	q.registered = true
	return nil
}

// ScreenSender adds name to this instance's sender screen set; messages
// from that sender are consumed but never returned to this instance.
func (q *Queue) ScreenSender(name string) {
	q.senderScreen.add([]byte(name))
}

// ScreenType adds typ to this instance's type screen set.
func (q *Queue) ScreenType(typ string) {
	q.typeScreen.add([]byte(typ))
}

// Close drops this instance. Unread messages between this instance's
// cursor and the current tail have their refcount decremented so a
// closing reader never pins them; the last participant to close unlinks
// the region. Close is idempotent: the second and later calls are no-ops.
func (q *Queue) Close() error {
	// checked before taking the lock: after the first Close the lock words
	// live in a region this handle has already unmapped.
	if q.closed {
		return nil
	}
	q.lock.Lock()
	q.closed = true

	lastOut := false
	if q.registered {
		// q.popPredicate, not a bare cursor/tail comparison: a cursor
		// sitting at tail is ambiguous between "nothing pending" and "the
		// ring wrapped exactly once all the way back to this reader's
		// cursor" (a completely full queue), and only the serial check
		// tells them apart. Draining on the weaker condition would leave
		// every message of a saturated, unread queue un-decremented.
		for q.popPredicate() {
			msgOff, hdr, _, _, _ := q.advance()
			q.release(msgOff, hdr)
		}

		procs := ring.GetCounter64(q.header, layout.IProcs)
		if procs > 0 {
			procs--
		}
		ring.PutCounter64(q.header, layout.IProcs, procs)
		lastOut = procs == 0
	}
	q.lock.Broadcast()
	q.lock.Unlock()

	if err := q.region.Detach(); err != nil {
		return err
	}
	if lastOut {
		return region.Unlink(q.name)
	}
	return nil
}

// advance performs one step of the pop advance loop: it must be called
// with the lock held and the pop predicate already known to hold. It
// bumps this instance's serial, reads the message header at the current
// cursor, and leaves the cursor pointing past the full slot — mirroring
// append's end-of-ring skip — before returning the header and the body
// offsets of its three variable-length fields.
func (q *Queue) advance() (msgOff uint64, hdr ring.MsgHeader, senderOff, typeOff, bodyOff uint64) {
	q.serial++

	msgOff = q.cursor
	hdr = ring.ReadMsgHeader(q.body, msgOff)

	senderOff = layout.Wrap(msgOff, layout.MsgHeaderSize, q.bodyLen)
	typeOff = layout.Wrap(senderOff, uint64(hdr.SenderLen), q.bodyLen)
	bodyOff = layout.Wrap(typeOff, uint64(hdr.TypeLen), q.bodyLen)

	next := layout.Wrap(bodyOff, uint64(hdr.BodyLen), q.bodyLen)
	if !layout.FitsContiguous(next, q.bodyLen) {
		next = 0
	}
	q.cursor = next
	return
}

// release decrements the refcount of the message at msgOff, reclaiming it
// (and any already-exhausted messages that follow it contiguously) when
// the count reaches zero and the message sits at head. Must be called
// with the lock held. Two readers decrementing the same message in any
// order is safe: reclamation only ever triggers once, when the count
// actually reaches zero.
func (q *Queue) release(msgOff uint64, hdr ring.MsgHeader) {
	remaining := hdr.ReadsRemaining - 1
	ring.SetReadsRemaining(q.body, msgOff, remaining)
	if remaining != 0 {
		return
	}
	if ring.GetCounter64(q.header, layout.IHead) != msgOff {
		return
	}
	hdr.ReadsRemaining = 0
	q.reclaimFrom(hdr)
}

// reclaimFrom advances head past hdr's slot and, if the message that is
// now at head is itself already exhausted, keeps going. A reader that
// finishes an interior message before the reader ahead of it finishes the
// head message leaves that head message pinned until its own refcount
// reaches zero; reclaimFrom is what lets a late decrement that finally
// empties the head cascade forward through any messages already drained
// by other readers.
func (q *Queue) reclaimFrom(hdr ring.MsgHeader) {
	for {
		slot := hdr.Size()
		head := ring.GetCounter64(q.header, layout.IHead)
		tail := ring.GetCounter64(q.header, layout.ITail)

		newHead := layout.Wrap(head, slot, q.bodyLen)
		free := ring.GetCounter64(q.header, layout.IFree) + slot
		if !layout.FitsContiguous(newHead, q.bodyLen) {
			free += q.bodyLen - newHead
			newHead = 0
		}
		ring.PutCounter64(q.header, layout.IHead, newHead)
		ring.PutCounter64(q.header, layout.IFree, free)

		if newHead == tail {
			return
		}
		next := ring.ReadMsgHeader(q.body, newHead)
		if next.ReadsRemaining != 0 {
			return
		}
		hdr = next
	}
}
