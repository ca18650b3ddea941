// File: pool/backing.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral backing allocators. The mmap-based allocator lives in
// backing_mmap_unix.go with a fallback for other platforms.

package pool

import "github.com/momentics/hioload-mempool/api"

// HeapAllocator serves blocks from the Go heap. Blocks are allocated as
// pointer-free byte slices, so the collector never scans their contents;
// a block stays alive while any payload pointer into it is reachable.
type HeapAllocator struct{}

// Alloc returns a zeroed slice. Sizes that are multiples of 8 come back
// 8-byte aligned from the runtime size classes.
func (HeapAllocator) Alloc(size int, _ int) ([]byte, error) {
	if size <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "heap alloc").WithContext("size", size)
	}
	return make([]byte, size), nil
}

// Free is a no-op; the collector reclaims the block once unreachable.
func (HeapAllocator) Free([]byte) error { return nil }

var _ api.Allocator = HeapAllocator{}
