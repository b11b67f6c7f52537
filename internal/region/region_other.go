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

//go:build !linux

package region

import "errors"

// ErrUnsupportedPlatform is returned by every operation on platforms
// without the futex-based process-shared primitives package ipclock
// relies on. Porting to another OS means giving ipclock an equivalent
// wait/wake primitive and this file a matching named-mapping backend.
var ErrUnsupportedPlatform = errors.New("region: shared memory not supported on this platform")

func Create(name string, size uint64) (*Region, error) { return nil, ErrUnsupportedPlatform }

func Attach(name string) (*Region, error) { return nil, ErrUnsupportedPlatform }

func (r *Region) Detach() error { return ErrUnsupportedPlatform }

func Unlink(name string) error { return ErrUnsupportedPlatform }
