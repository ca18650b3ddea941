// Package pool
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity slab allocator for the hot path of a network server core.
//
// A Pool lends out up to 64 equally sized pages, claimed and released through
// a single atomic occupancy word, so that short-lived same-sized objects
// (request records, per-connection scratch buffers) never touch the general
// heap after warm-up. Objects larger than a page, and requests arriving while
// all 64 pages are lent out, are served from individually allocated
// "extended" blocks instead.
//
// Every payload handed to a caller is preceded by one header byte: the slot
// index for pooled pages, ExtendTag for extended blocks. Deallocate reads it
// back to decide which path owns the memory.
//
// Caller contract: every Allocate is paired with exactly one Deallocate of the
// same type on the same Pool. Double free, foreign pointers and type
// mismatches are not detected (the mempooldebug build tag adds a header range
// assertion). Pool memory is not scanned by the garbage collector, therefore
// pooled types must not contain Go pointers; Allocate rejects such types.
package pool
