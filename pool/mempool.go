// File: pool/mempool.go
// Package pool implements a lock-free, fixed-capacity slab pool.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/hioload-mempool/api"
)

// Pool lends out SlotCount pages of pageSize bytes each.
//
// bits holds one occupancy bit per slot. pages[i] is the payload pointer of
// slot i, or nil while the slot has never been used; it is only touched by
// the goroutine that currently owns bit i.
type Pool struct {
	bits  atomic.Uint64
	pages [SlotCount]unsafe.Pointer

	pageSize  int
	blockSize int
	alloc     api.Allocator
	numaNode  int
	log       *slog.Logger
	closed    atomic.Bool
}

// New creates a pool. Pages are materialized lazily on first use.
func New(opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.pageSize <= 0 || cfg.pageSize > MaxPageSize {
		return nil, api.Wrap(api.ErrCodeInvalidArgument, "pool config", api.ErrInvalidArgument).
			WithContext("pageSize", cfg.pageSize)
	}
	return &Pool{
		pageSize:  cfg.pageSize,
		blockSize: pageBlockSize(cfg.pageSize),
		alloc:     cfg.alloc,
		numaNode:  cfg.numaNode,
		log:       cfg.logger.With("component", "mempool", "pageSize", cfg.pageSize),
	}, nil
}

// PageSize returns the payload size of a pooled page.
func (p *Pool) PageSize() int { return p.pageSize }

// claim sets the first free occupancy bit and returns its index.
// It reports false once all SlotCount bits were observed set.
func (p *Pool) claim() (int, bool) {
	bits := p.bits.Load()
	for i := 0; i < SlotCount; {
		mask := uint64(1) << i
		if bits&mask == 0 {
			if p.bits.CompareAndSwap(bits, bits|mask) {
				return i, true
			}
			// Someone else moved the word; retry this index if still free.
			bits = p.bits.Load()
			if bits&mask == 0 {
				continue
			}
		}
		i++
	}
	return 0, false
}

// release clears the occupancy bit of slot idx.
func (p *Pool) release(idx Tag) {
	p.bits.And(^(uint64(1) << idx))
}

// page returns the payload of slot idx, allocating the page on first use.
// The caller must own bit idx.
func (p *Pool) page(idx int) (unsafe.Pointer, error) {
	if payload := p.pages[idx]; payload != nil {
		return payload, nil
	}
	buf, err := p.alloc.Alloc(p.blockSize, p.numaNode)
	if err != nil {
		p.log.Warn("page allocation failed", "slot", idx, "err", err)
		return nil, allocError(err, p.blockSize).WithContext("slot", idx)
	}
	payload := payloadAt(buf, PayloadAlign)
	writeTag(payload, Tag(idx))
	p.pages[idx] = payload
	p.log.Debug("page materialized", "slot", idx)
	return payload, nil
}

// extend allocates an extended block for an object of layout l.
func (p *Pool) extend(l layout) (unsafe.Pointer, error) {
	size := extendBlockSize(l.size, l.align)
	buf, err := p.alloc.Alloc(size, p.numaNode)
	if err != nil {
		p.log.Warn("extended allocation failed", "size", size, "err", err)
		return nil, allocError(err, size)
	}
	payload := payloadAt(buf, extendOffset(l.align))
	writeTag(payload, ExtendTag)
	return payload, nil
}

// freeExtend returns an extended block to the backing allocator.
func (p *Pool) freeExtend(payload unsafe.Pointer, l layout) error {
	block := blockOf(payload, extendOffset(l.align), extendBlockSize(l.size, l.align))
	if err := p.alloc.Free(block); err != nil {
		return api.Wrap(api.ErrCodeInternal, "free extended block", err)
	}
	return nil
}

// Close releases every materialized page. Objects still live in slots are
// not destroyed; callers must deallocate them first. Close is idempotent and
// must not run concurrently with Allocate or Deallocate.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if live := p.bits.Load(); live != 0 {
		p.log.Warn("closing pool with live pooled objects", "bitmap", fmt.Sprintf("%#016x", live))
	}
	var errs []error
	for i, payload := range p.pages {
		if payload == nil {
			continue
		}
		if err := p.alloc.Free(blockOf(payload, PayloadAlign, p.blockSize)); err != nil {
			errs = append(errs, fmt.Errorf("slot %d: %w", i, err))
		}
		p.pages[i] = nil
	}
	return errors.Join(errs...)
}

func allocError(cause error, size int) *api.Error {
	return api.Wrap(api.ErrCodeResourceExhausted, "pool allocate",
		errors.Join(api.ErrAllocFailed, cause)).WithContext("size", size)
}
