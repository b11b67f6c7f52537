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

// Package ring implements the wrap-around byte primitives used to read and
// write the queue body: fixed-width counters at a given offset, and
// variable-length byte strings that may straddle the physical end of the
// buffer. Every offset it takes or returns is relative to the start of the
// body, not the region.
package ring

import (
	"encoding/binary"

	"github.com/bytedance/gopkg/lang/dirtmake"

	"github.com/cloudwego/syncq/internal/layout"
)

// GetCounter64 reads the queue-header-width counter at ordinal idx.
func GetCounter64(header []byte, idx int) uint64 {
	off := idx * layout.QueueCounterSize
	return binary.NativeEndian.Uint64(header[off : off+layout.QueueCounterSize])
}

// PutCounter64 writes the queue-header-width counter at ordinal idx.
func PutCounter64(header []byte, idx int, v uint64) {
	off := idx * layout.QueueCounterSize
	binary.NativeEndian.PutUint64(header[off:off+layout.QueueCounterSize], v)
}

// MsgHeader is the decoded form of a message's four fixed counters.
type MsgHeader struct {
	ReadsRemaining uint32
	SenderLen      uint32
	TypeLen        uint32
	BodyLen        uint32
}

// Size returns the total slot footprint of the message described by h.
func (h MsgHeader) Size() uint64 {
	return layout.MsgHeaderSize + uint64(h.SenderLen) + uint64(h.TypeLen) + uint64(h.BodyLen)
}

// ReadMsgHeader decodes the message header at body offset i. The caller
// must have already established (via layout.FitsContiguous) that the
// header does not straddle the wrap.
func ReadMsgHeader(body []byte, i uint64) MsgHeader {
	b := body[i : i+layout.MsgHeaderSize]
	return MsgHeader{
		ReadsRemaining: binary.NativeEndian.Uint32(b[layout.IReads*layout.MsgCounterSize:]),
		SenderLen:      binary.NativeEndian.Uint32(b[layout.ISenderLen*layout.MsgCounterSize:]),
		TypeLen:        binary.NativeEndian.Uint32(b[layout.ITypeLen*layout.MsgCounterSize:]),
		BodyLen:        binary.NativeEndian.Uint32(b[layout.IBodyLen*layout.MsgCounterSize:]),
	}
}

// WriteMsgHeader encodes h at body offset i. Same contiguity requirement
// as ReadMsgHeader.
func WriteMsgHeader(body []byte, i uint64, h MsgHeader) {
	b := body[i : i+layout.MsgHeaderSize]
	binary.NativeEndian.PutUint32(b[layout.IReads*layout.MsgCounterSize:], h.ReadsRemaining)
	binary.NativeEndian.PutUint32(b[layout.ISenderLen*layout.MsgCounterSize:], h.SenderLen)
	binary.NativeEndian.PutUint32(b[layout.ITypeLen*layout.MsgCounterSize:], h.TypeLen)
	binary.NativeEndian.PutUint32(b[layout.IBodyLen*layout.MsgCounterSize:], h.BodyLen)
}

// SetReadsRemaining rewrites just the reads-remaining counter of the
// message header at body offset i, leaving the rest of the slot untouched.
func SetReadsRemaining(body []byte, i uint64, v uint32) {
	off := i + uint64(layout.IReads*layout.MsgCounterSize)
	binary.NativeEndian.PutUint32(body[off:off+layout.MsgCounterSize], v)
}

// GetReadsRemaining reads just the reads-remaining counter of the message
// header at body offset i.
func GetReadsRemaining(body []byte, i uint64) uint32 {
	off := i + uint64(layout.IReads*layout.MsgCounterSize)
	return binary.NativeEndian.Uint32(body[off : off+layout.MsgCounterSize])
}

// WriteWrapped copies src into body starting at offset i, wrapping around
// the physical end of the body as needed, and returns the offset of the
// first unwritten byte (mod bodyLen).
func WriteWrapped(body []byte, i uint64, bodyLen uint64, src []byte) uint64 {
	if len(src) == 0 {
		return i
	}
	r := bodyLen - i
	if uint64(len(src)) <= r {
		copy(body[i:i+uint64(len(src))], src)
		return layout.Wrap(i, uint64(len(src)), bodyLen)
	}
	copy(body[i:bodyLen], src[:r])
	rem := uint64(len(src)) - r
	copy(body[0:rem], src[r:])
	return rem
}

// ReadWrapped copies n bytes out of body starting at offset i, wrapping
// around the physical end of the body as needed, into a freshly allocated
// slice the caller owns.
func ReadWrapped(body []byte, i uint64, bodyLen uint64, n uint32) []byte {
	out := dirtmake.Bytes(int(n), int(n))
	ReadWrappedInto(body, i, bodyLen, n, out)
	return out
}

// ReadWrappedInto copies n bytes out of body starting at offset i into
// dst, wrapping around the physical end of the body as needed. dst must
// have length >= n. Unlike ReadWrapped, this does not allocate, so callers
// that only need the bytes transiently (e.g. to test screen-set
// membership before deciding whether to keep them) can supply pooled
// scratch space instead of paying for a slice that outlives the check.
func ReadWrappedInto(body []byte, i uint64, bodyLen uint64, n uint32, dst []byte) {
	if n == 0 {
		return
	}
	r := bodyLen - i
	if uint64(n) <= r {
		copy(dst, body[i:i+uint64(n)])
		return
	}
	copy(dst, body[i:bodyLen])
	copy(dst[r:], body[0:uint64(n)-r])
}
