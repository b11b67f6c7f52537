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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/syncq/internal/layout"
	"github.com/cloudwego/syncq/internal/ring"
)

// scenario 2: one writer, two readers; the message is only reclaimed
// once the second (slower) reader finally pops it. Each message takes
// 16 header + 6 sender + 1 type + 30 body = 53 bytes, so the three of
// them need a 256-byte body (159 bytes would not fit in 128).
func TestScenarioFanOutReclaimsOnlyAfterLastReader(t *testing.T) {
	writer := openTestQueue(t, 256)
	require.NoError(t, writer.Register(&RegisterOption{Sender: "writer", SelfScreen: true}))

	readerA, err := Open(writer.name, false, nil)
	require.NoError(t, err)
	defer readerA.Close()
	require.NoError(t, readerA.Register(&RegisterOption{Sender: "a", SelfScreen: false}))

	readerB, err := Open(writer.name, false, nil)
	require.NoError(t, err)
	defer readerB.Close()
	require.NoError(t, readerB.Register(&RegisterOption{Sender: "b", SelfScreen: false}))

	bodies := [][]byte{make([]byte, 30), make([]byte, 30), make([]byte, 30)}
	for _, b := range bodies {
		require.NoError(t, writer.Append("t", b, nil))
	}

	for i := range bodies {
		msg, ok, err := readerA.Pop(nil)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, len(bodies[i]), len(msg.Raw.Body))
	}
	// reader A has drained everything but nothing is reclaimable yet:
	// reader B has not decremented any refcounts.
	assert.NotEqual(t, writer.bodyLen, ring.GetCounter64(writer.header, layout.IFree))

	for i := range bodies {
		_, ok, err := readerB.Pop(nil)
		require.NoError(t, err)
		require.True(t, ok)
		_ = i
	}

	// the writer self-screens but, being a registered participant, still
	// counted toward each message's refcount: until it too iterates past
	// its own messages (discarding them as screened), nothing is at
	// refs=0, so nothing reclaims.
	assert.NotEqual(t, writer.bodyLen, ring.GetCounter64(writer.header, layout.IFree))
	for range bodies {
		_, ok, err := writer.Pop(nil)
		require.NoError(t, err)
		assert.False(t, ok, "writer self-screens its own messages")
	}

	assert.Equal(t, writer.bodyLen, ring.GetCounter64(writer.header, layout.IFree))
	assert.Equal(t, ring.GetCounter64(writer.header, layout.IHead), ring.GetCounter64(writer.header, layout.ITail))
}

// scenario 4: a type screen discards the unwanted message within the
// same Pop call, reclaiming it before the matching message is returned.
// a single participant plays both roles from the spec's narrative (it is
// the sole registered instance, so its own refcount is the only one a
// message needs to reach zero); it screens by type only, not by sender,
// so its own "data" message still matches.
func TestScenarioTypeScreenDiscardsAndReclaimsInline(t *testing.T) {
	q := openTestQueue(t, 4096)
	require.NoError(t, q.Register(&RegisterOption{Sender: "writer", SelfScreen: false}))
	q.ScreenType("noise")

	require.NoError(t, q.Append("noise", []byte("x"), nil))
	require.NoError(t, q.Append("data", []byte("y"), nil))

	msg, ok, err := q.Pop(&PopOption{Decode: true})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "writer", msg.Sender)
	assert.Equal(t, "data", msg.Type)
	assert.Equal(t, "y", msg.Body)

	// the noise message was the only thing at head when its refcount
	// hit zero, so it must already be reclaimed.
	head := ring.GetCounter64(q.header, layout.IHead)
	tail := ring.GetCounter64(q.header, layout.ITail)
	assert.Equal(t, head, tail)
}

func TestPopNonBlockingReturnsFalseWhenEmpty(t *testing.T) {
	q := openTestQueue(t, 4096)
	require.NoError(t, q.Register(nil))

	_, ok, err := q.Pop(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPopPredicateCursorAtTailSerialDisambiguation(t *testing.T) {
	q := openTestQueue(t, 4096)
	require.NoError(t, q.Register(&RegisterOption{Sender: "w", SelfScreen: false}))

	assert.False(t, q.popPredicate(), "cursor caught up, serial matches: nothing to pop")

	require.NoError(t, q.Append("t", []byte("x"), nil))
	assert.True(t, q.popPredicate(), "cursor behind tail: a message is pending")

	_, ok, err := q.Pop(nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, q.popPredicate(), "cursor caught up again after consuming the only message")
}

func TestPopBlockingWokenByAppend(t *testing.T) {
	q := openTestQueue(t, 4096)
	require.NoError(t, q.Register(&RegisterOption{Sender: "w", SelfScreen: false}))

	done := make(chan Message, 1)
	go func() {
		msg, ok, err := q.Pop(&PopOption{Block: true, Decode: true})
		require.NoError(t, err)
		require.True(t, ok)
		done <- msg
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Append("t", []byte("hello"), nil))

	select {
	case msg := <-done:
		assert.Equal(t, "hello", msg.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("blocking pop was never woken by append")
	}
}

func TestPopBlockingTimesOut(t *testing.T) {
	q := openTestQueue(t, 4096)
	require.NoError(t, q.Register(nil))

	timeout := 30 * time.Millisecond
	start := time.Now()
	_, ok, err := q.Pop(&PopOption{Block: true, Timeout: &timeout})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), timeout)
}

func TestPopDecodeInvalidUTF8ReturnsEncodingError(t *testing.T) {
	q := openTestQueue(t, 4096)
	require.NoError(t, q.Register(&RegisterOption{Sender: "w", SelfScreen: false}))

	invalid := []byte{0xff, 0xfe, 0xfd}
	require.NoError(t, q.Append("t", invalid, nil))

	_, ok, err := q.Pop(&PopOption{Decode: true})
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestFIFOPerAppender(t *testing.T) {
	q := openTestQueue(t, 4096)
	require.NoError(t, q.Register(&RegisterOption{Sender: "w", SelfScreen: false}))

	for i := 0; i < 20; i++ {
		require.NoError(t, q.Append("t", []byte{byte(i)}, nil))
	}
	for i := 0; i < 20; i++ {
		msg, ok, err := q.Pop(nil)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []byte{byte(i)}, msg.Raw.Body)
	}
}

func TestIterateYieldsAllThenStops(t *testing.T) {
	q := openTestQueue(t, 4096)
	require.NoError(t, q.Register(&RegisterOption{Sender: "w", SelfScreen: false}))
	require.NoError(t, q.Append("t", []byte("1"), nil))
	require.NoError(t, q.Append("t", []byte("2"), nil))

	var got []string
	for msg, err := range q.Iterate(&PopOption{Decode: true}) {
		require.NoError(t, err)
		got = append(got, msg.Body)
	}
	assert.Equal(t, []string{"1", "2"}, got)
}
