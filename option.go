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
	"os"
	"strconv"
	"time"
)

// Option configures Open. A nil Option is equivalent to DefaultOption().
type Option struct {
	// Size is the total region size, header and body together, used only
	// when Open is called with create=true. Ignored when attaching to an
	// existing region; the creator's size applies.
	Size uint64
}

// DefaultOption returns the Option Open uses when none is supplied: a
// region sized to one host page, matching the library surface's stated
// default.
func DefaultOption() *Option {
	return &Option{Size: uint64(os.Getpagesize())}
}

// RegisterOption configures Queue.Register. A nil RegisterOption is
// equivalent to DefaultRegisterOption().
type RegisterOption struct {
	// Sender is this instance's sender identity. Empty means the current
	// process's PID, rendered as decimal text.
	Sender string
	// SelfScreen adds Sender to this instance's own sender screen set, so
	// it never sees its own appends. Defaults to true.
	SelfScreen bool
}

// DefaultRegisterOption returns the RegisterOption Register uses when
// none is supplied: PID-derived sender name, self-screening on.
func DefaultRegisterOption() *RegisterOption {
	return &RegisterOption{
		Sender:     strconv.Itoa(os.Getpid()),
		SelfScreen: true,
	}
}

// AppendOption configures Queue.Append. A nil AppendOption is equivalent
// to DefaultAppendOption(): non-blocking, which fails fast with
// ErrOutOfSpace instead of waiting for room.
type AppendOption struct {
	Block   bool
	Timeout *time.Duration
}

// DefaultAppendOption returns the non-blocking AppendOption.
func DefaultAppendOption() *AppendOption {
	return &AppendOption{}
}

// PopOption configures Queue.Pop and Queue.Iterate. A nil PopOption is
// equivalent to DefaultPopOption(): non-blocking, raw bytes.
type PopOption struct {
	Block   bool
	Timeout *time.Duration
	// Decode requests sender, type, and body be validated and returned
	// as UTF-8 strings instead of raw bytes. ErrEncoding is returned if
	// any of the three is not valid UTF-8; by then the message's
	// refcount has already been decremented.
	Decode bool
}

// DefaultPopOption returns the non-blocking, non-decoding PopOption.
func DefaultPopOption() *PopOption {
	return &PopOption{}
}
