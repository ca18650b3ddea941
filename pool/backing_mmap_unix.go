//go:build unix

// File: pool/backing_mmap_unix.go
// Author: momentics <momentics@gmail.com>
//
// Anonymous-mmap backing allocator: page memory lives outside the Go heap
// and is returned to the kernel on Free.

package pool

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-mempool/api"
)

// MmapAllocator maps every block as a private anonymous region.
// The NUMA hint is ignored.
type MmapAllocator struct{}

// NewMmapAllocator returns the mmap allocator for this platform.
func NewMmapAllocator() api.Allocator {
	return MmapAllocator{}
}

func (MmapAllocator) Alloc(size int, _ int) ([]byte, error) {
	if size <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "mmap alloc").WithContext("size", size)
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	return buf, nil
}

func (MmapAllocator) Free(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if err := unix.Munmap(buf); err != nil {
		return fmt.Errorf("munmap %d bytes: %w", len(buf), err)
	}
	return nil
}

var _ api.Allocator = MmapAllocator{}
