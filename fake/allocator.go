// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

// Package fake provides instrumented allocators for pool tests.
package fake

import (
	"errors"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/hioload-mempool/api"
)

// ErrInjected is returned by FailingAllocator once its budget is spent.
var ErrInjected = errors.New("fake: injected allocation failure")

// CountingAllocator hands out heap blocks and records every Alloc/Free.
type CountingAllocator struct {
	allocs atomic.Int64
	frees  atomic.Int64

	mu   sync.Mutex
	live map[uintptr]int // block start -> size
}

func NewCountingAllocator() *CountingAllocator {
	return &CountingAllocator{live: make(map[uintptr]int)}
}

func (c *CountingAllocator) Alloc(size int, _ int) ([]byte, error) {
	buf := make([]byte, size)
	c.allocs.Add(1)
	c.mu.Lock()
	c.live[uintptr(unsafe.Pointer(&buf[0]))] = size
	c.mu.Unlock()
	return buf, nil
}

func (c *CountingAllocator) Free(buf []byte) error {
	c.frees.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	start := uintptr(unsafe.Pointer(&buf[0]))
	size, ok := c.live[start]
	if !ok {
		return errors.New("fake: free of unknown block")
	}
	if size != len(buf) {
		return errors.New("fake: free with mismatched size")
	}
	delete(c.live, start)
	return nil
}

// Allocs returns the number of Alloc calls so far.
func (c *CountingAllocator) Allocs() int64 { return c.allocs.Load() }

// Frees returns the number of Free calls so far.
func (c *CountingAllocator) Frees() int64 { return c.frees.Load() }

// Live returns the number of blocks allocated and not yet freed.
func (c *CountingAllocator) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// FailingAllocator delegates to Next until Budget successful allocations
// have been served, then fails every Alloc.
type FailingAllocator struct {
	Next   api.Allocator
	Budget int64

	served atomic.Int64
}

func (f *FailingAllocator) Alloc(size int, node int) ([]byte, error) {
	if f.served.Add(1) > f.Budget {
		return nil, ErrInjected
	}
	return f.Next.Alloc(size, node)
}

func (f *FailingAllocator) Free(buf []byte) error {
	return f.Next.Free(buf)
}

var (
	_ api.Allocator = (*CountingAllocator)(nil)
	_ api.Allocator = (*FailingAllocator)(nil)
)
