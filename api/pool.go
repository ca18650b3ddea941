// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines the contracts shared by the slab pool and its callers: where page
// memory comes from and how pooled objects are torn down in place.

package api

// Allocator supplies raw backing memory for pool pages and extended blocks.
// Returned slices must start on an 8-byte boundary when size is a multiple of 8.
type Allocator interface {
	// Alloc returns size bytes of zeroed memory, preferably on numaNode (-1 = any).
	Alloc(size int, numaNode int) ([]byte, error)

	// Free releases a slice previously returned by Alloc. The slice must have
	// the same length and start address as the one Alloc returned.
	Free(buf []byte) error
}

// Destroyer is implemented by pooled types that need an in-place destructor.
// Destroy runs exactly once, before the memory is reused or released.
type Destroyer interface {
	Destroy()
}
