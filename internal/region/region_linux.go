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
	"path/filepath"

	"golang.org/x/sys/unix"
)

// shmDir is where the host's named shared-memory facility publishes its
// named segments as ordinary files, exactly like POSIX shm_open does
// under Linux's tmpfs-backed /dev/shm.
const shmDir = "/dev/shm"

func shmPath(name string) string {
	return filepath.Join(shmDir, "syncq."+name)
}

// Create allocates a new named region of the given size, zero-filled.
func Create(name string, size uint64) (*Region, error) {
	if err := validateCreateSize(size); err != nil {
		return nil, err
	}
	path := shmPath(name)

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0o600)
	if err != nil {
		if err == unix.EEXIST {
			return nil, fmt.Errorf("%w: %s", ErrExists, name)
		}
		return nil, fmt.Errorf("region: open %s: %w", path, err)
	}

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		_ = unix.Unlink(path)
		return nil, fmt.Errorf("region: ftruncate %s: %w", path, err)
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		_ = unix.Unlink(path)
		return nil, fmt.Errorf("region: mmap %s: %w", path, err)
	}

	// O_EXCL means this is always a fresh node whose ftruncate'd pages
	// already read zero; the zero-fill is done explicitly all the same.
	for i := range data {
		data[i] = 0
	}

	return &Region{name: name, data: data, fd: fd}, nil
}

// Attach maps an already-created region by name. The size recorded by its
// creator is used; any size the caller passed to the queue constructor is
// ignored in attach mode, per spec.
func Attach(name string) (*Region, error) {
	path := shmPath(name)

	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		if err == unix.ENOENT {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("region: open %s: %w", path, err)
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("region: fstat %s: %w", path, err)
	}

	data, err := unix.Mmap(fd, 0, int(st.Size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("region: mmap %s: %w", path, err)
	}

	return &Region{name: name, data: data, fd: fd}, nil
}

// Detach unmaps the region from this process. It does not remove the
// backing name; see Unlink.
func (r *Region) Detach() error {
	if r.data == nil {
		return nil
	}
	err := unix.Munmap(r.data)
	r.data = nil
	if cerr := unix.Close(r.fd); err == nil {
		err = cerr
	}
	return err
}

// Unlink removes the named region from the host. It is safe to call after
// every participant has already detached.
func Unlink(name string) error {
	err := unix.Unlink(shmPath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("region: unlink %s: %w", name, err)
	}
	return nil
}
