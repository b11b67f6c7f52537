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

// Package layout collects the fixed byte offsets, counter widths, and
// wrap-around arithmetic shared by every other package that touches the
// region. Nothing here allocates or holds state; it is pure constants and
// small pure functions, the way a protocol's wire layout is usually kept
// apart from the code that walks it.
package layout

import "math/bits"

const (
	// LockWords is the number of uint32 words reserved at the very start
	// of the region for the process-shared mutex + condition variable
	// (see package ipclock). It sits ahead of the queue header proper so
	// that two independently-attaching processes agree on its position
	// without it being part of the five documented queue counters.
	LockWords = 2
	LockSize  = LockWords * 4

	// QueueCounterSize is the width of one queue header counter.
	QueueCounterSize = 8
	// NumQueueCounters is the number of 64-bit counters in the queue header.
	NumQueueCounters = 5

	// Ordinal index of each queue header counter.
	IProcs  = 0
	IFree   = 1
	IHead   = 2
	ITail   = 3
	ISerial = 4

	// QueueHeaderSize is the byte size of the queue header block.
	QueueHeaderSize = NumQueueCounters * QueueCounterSize

	// RegionPrefixSize is the number of bytes reserved ahead of the body:
	// the lock words followed by the queue header. Everything from
	// RegionPrefixSize onward is the wrap-around body described in the
	// message layout.
	RegionPrefixSize = LockSize + QueueHeaderSize

	// MsgCounterSize is the width of one message header counter.
	MsgCounterSize = 4
	// NumMsgCounters is the number of 32-bit counters in a message header.
	NumMsgCounters = 4

	// Ordinal index of each message header counter.
	IReads     = 0
	ISenderLen = 1
	ITypeLen   = 2
	IBodyLen   = 3

	// MsgHeaderSize is the byte size of one message's fixed header. It
	// must always land on a contiguous span of the body; see
	// FitsContiguous.
	MsgHeaderSize = NumMsgCounters * MsgCounterSize

	// MinRegionSize is the smallest region that can hold the prefix and
	// at least one header-sized body, i.e. one that can never append
	// even an empty message without immediately wrapping.
	MinRegionSize = RegionPrefixSize + MsgHeaderSize
)

// LockOffset is the byte offset of the mutex/condvar words within the region.
func LockOffset() uint64 { return 0 }

// QueueHeaderOffset is the byte offset of the queue header within the region.
func QueueHeaderOffset() uint64 { return LockSize }

// BodyOffset is the byte offset of the body (the wrap-around message ring)
// within the region.
func BodyOffset() uint64 { return RegionPrefixSize }

// BodyLen returns the body length for a region of the given total size.
// regionSize must already have been validated to be >= MinRegionSize.
func BodyLen(regionSize uint64) uint64 {
	return regionSize - RegionPrefixSize
}

// Wrap advances offset i by n bytes around a ring of length bodyLen.
func Wrap(i, n, bodyLen uint64) uint64 {
	if bodyLen == 0 {
		return 0
	}
	return (i + n) % bodyLen
}

// FitsContiguous reports whether a message header can be written starting
// at offset i without straddling the physical end of the body. When it
// reports false, the end-of-ring skip must trigger instead.
func FitsContiguous(i, bodyLen uint64) bool {
	return bodyLen-i >= MsgHeaderSize
}

// MaxRegionSize returns the documented advisory cap on region size: the
// header plus the largest number of minimum-sized messages addressable by
// a 64-bit serial counter before it would (in theory) lap itself. The
// multiplication overflows uint64 for any real allocation size, so the
// cap saturates at the maximum representable value; the check exists to
// reject only pathologically large requests, never real ones.
func MaxRegionSize() uint64 {
	hi, lo := bits.Mul64(^uint64(0), MsgHeaderSize)
	if hi != 0 {
		return ^uint64(0)
	}
	sum := lo + RegionPrefixSize
	if sum < lo {
		return ^uint64(0)
	}
	return sum
}
