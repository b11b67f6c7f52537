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

// Package region owns the named, fixed-size byte region that backs one
// queue: create, attach, detach, and unlink. Everything above this layer
// only ever sees a []byte; this package is the only one that talks to the
// host's named shared-memory facility.
package region

import (
	"errors"
	"fmt"

	"github.com/cloudwego/syncq/internal/layout"
)

var (
	// ErrNotFound is returned by Attach when no region exists under the
	// requested name.
	ErrNotFound = errors.New("region: not found")
	// ErrExists is returned by Create when a region already exists under
	// the requested name.
	ErrExists = errors.New("region: already exists")
	// ErrTooLarge is returned by Create when the requested size exceeds
	// the advisory maximum from layout.MaxRegionSize.
	ErrTooLarge = errors.New("region: size exceeds maximum")
	// ErrTooSmall is returned by Create when the requested size cannot
	// even hold the reserved prefix and one message header.
	ErrTooSmall = errors.New("region: size below minimum")
)

// Region is a named byte region, memory-mapped into this process, shared
// with every other process that creates or attaches to the same name.
type Region struct {
	name string
	data []byte
	fd   int
}

// Name returns the name the region was created or attached under.
func (r *Region) Name() string { return r.name }

// Size returns the total mapped size, header and body together.
func (r *Region) Size() uint64 { return uint64(len(r.data)) }

// Bytes returns the full mapped region. Callers slice it into the lock
// prefix, queue header, and body using the offsets in package layout.
func (r *Region) Bytes() []byte { return r.data }

// String implements fmt.Stringer for diagnostic logging.
func (r *Region) String() string {
	return fmt.Sprintf("Region(name=%s,size=%d)", r.name, len(r.data))
}

func validateCreateSize(size uint64) error {
	if size < layout.MinRegionSize {
		return fmt.Errorf("%w: %d < %d", ErrTooSmall, size, uint64(layout.MinRegionSize))
	}
	if size > layout.MaxRegionSize() {
		return fmt.Errorf("%w: %d > %d", ErrTooLarge, size, layout.MaxRegionSize())
	}
	return nil
}
