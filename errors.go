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

import "errors"

var (
	// ErrOutOfSpace is returned by Append when the body lacks room for
	// the message and the call was non-blocking, or a blocking call's
	// timeout elapsed first. The queue state is left unchanged.
	ErrOutOfSpace = errors.New("syncq: out of space")

	// ErrNotFound is returned by Open when create is false and no region
	// exists under the requested name.
	ErrNotFound = errors.New("syncq: region not found")

	// ErrExists is returned by Open when create is true and a region
	// already exists under the requested name.
	ErrExists = errors.New("syncq: region already exists")

	// ErrTooLarge is returned by Open when the requested size exceeds
	// the advisory maximum described in the layout package.
	ErrTooLarge = errors.New("syncq: requested size exceeds maximum")

	// ErrTooSmall is returned by Open when the requested size is below
	// the minimum needed to hold the region header and at least one
	// message slot.
	ErrTooSmall = errors.New("syncq: requested size below minimum")

	// ErrClosed is returned by Register, Append, and Pop on a Queue
	// instance after Close has already run on it, and by Append and Pop
	// on an instance that has not registered. A repeated Close returns nil.
	ErrClosed = errors.New("syncq: instance is closed")

	// ErrEncoding is returned by Pop when decode was requested and the
	// sender, type, or body byte string is not valid UTF-8. The
	// message's refcount has already been decremented by the time this
	// is returned; the bytes are not lost, but this reader has
	// consumed its copy of them.
	ErrEncoding = errors.New("syncq: message is not valid UTF-8")
)
