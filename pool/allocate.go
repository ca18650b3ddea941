// File: pool/allocate.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Typed allocate/deallocate entry points.

package pool

import (
	"context"
	"log/slog"
	"unsafe"

	"github.com/momentics/hioload-mempool/api"
)

// Allocate returns a zeroed T initialized by init (which may be nil).
//
// Types that fit in a page are placed in a pooled slot; larger types, and
// any request made while all slots are lent out, get an extended block.
// The result must be released with Deallocate on the same pool.
func Allocate[T any](p *Pool, init func(*T)) (*T, error) {
	if p.closed.Load() {
		return nil, api.Wrap(api.ErrCodeClosed, "pool allocate", api.ErrPoolClosed)
	}
	l := layoutOf[T]()
	if l.err != nil {
		return nil, l.err
	}
	if l.size <= uintptr(p.pageSize) && l.align <= PayloadAlign {
		if idx, ok := p.claim(); ok {
			payload, err := p.page(idx)
			if err != nil {
				p.release(Tag(idx))
				return nil, err
			}
			return construct(payload, init), nil
		}
		if p.log.Enabled(context.Background(), slog.LevelDebug) {
			p.log.Debug("all slots in use, falling back to extended block", "size", l.size)
		}
	}
	payload, err := p.extend(l)
	if err != nil {
		return nil, err
	}
	return construct(payload, init), nil
}

// Deallocate destroys obj in place and gives its memory back: the slot bit
// is cleared for pooled objects, the block is freed for extended ones.
//
// obj must come from Allocate[T] on p and must not have been deallocated
// already; violations are not detected.
func Deallocate[T any](p *Pool, obj *T) error {
	if obj == nil {
		return nil
	}
	payload := unsafe.Pointer(obj)
	tag := readTag(payload)
	destroy(obj)
	if tag == ExtendTag {
		return p.freeExtend(payload, layoutOf[T]())
	}
	p.release(tag)
	return nil
}

// TagOf returns the header byte in front of a live allocation: its slot
// index, or ExtendTag.
func TagOf[T any](obj *T) Tag {
	return readTag(unsafe.Pointer(obj))
}
