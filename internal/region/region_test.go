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

//go:build linux

package region

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/syncq/internal/layout"
)

var nonce uint64

func uniqueName(t *testing.T) string {
	return fmt.Sprintf("test-%d-%s-%d", os.Getpid(), t.Name(), atomic.AddUint64(&nonce, 1))
}

func TestCreateAttachDetachUnlink(t *testing.T) {
	name := uniqueName(t)
	size := uint64(4096)

	r, err := Create(name, size)
	require.NoError(t, err)
	require.Equal(t, size, r.Size())
	for _, b := range r.Bytes() {
		require.Zero(t, b)
	}

	r2, err := Attach(name)
	require.NoError(t, err)
	assert.Equal(t, size, r2.Size())

	// write through one mapping, observe through the other
	r.Bytes()[0] = 0x42
	assert.Equal(t, byte(0x42), r2.Bytes()[0])

	require.NoError(t, r2.Detach())
	require.NoError(t, r.Detach())
	require.NoError(t, Unlink(name))
}

func TestCreateTwiceFails(t *testing.T) {
	name := uniqueName(t)
	r, err := Create(name, 4096)
	require.NoError(t, err)
	defer func() {
		_ = r.Detach()
		_ = Unlink(name)
	}()

	_, err = Create(name, 4096)
	assert.ErrorIs(t, err, ErrExists)
}

func TestAttachMissingFails(t *testing.T) {
	_, err := Attach(uniqueName(t))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSizeBounds(t *testing.T) {
	name := uniqueName(t)
	_, err := Create(name, layout.MinRegionSize-1)
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestUnlinkMissingIsNotAnError(t *testing.T) {
	assert.NoError(t, Unlink(uniqueName(t)))
}
