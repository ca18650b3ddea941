//go:build !unix

// File: pool/backing_mmap_other.go
// Author: momentics <momentics@gmail.com>
//
// Fallback for platforms without anonymous mmap support in x/sys/unix.

package pool

import "github.com/momentics/hioload-mempool/api"

// NewMmapAllocator returns a heap allocator on this platform.
func NewMmapAllocator() api.Allocator {
	return HeapAllocator{}
}
