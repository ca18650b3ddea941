// File: conn/request.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package conn

import (
	"github.com/momentics/hioload-mempool/api"
	"github.com/momentics/hioload-mempool/pool"
)

const (
	// MaxInlinePayload is the largest payload stored in a pooled Request.
	// A Request then occupies exactly one default-sized page.
	MaxInlinePayload = pool.DefaultPageSize - 16

	// MaxFrameSize bounds a single request frame.
	MaxFrameSize = 64 << 10
)

// Request is a decoded request frame small enough for a pooled page.
type Request struct {
	Seq     uint64
	Len     uint32
	_       uint32
	Payload [MaxInlinePayload]byte
}

// Bytes returns the request payload.
func (r *Request) Bytes() []byte { return r.Payload[:r.Len] }

// Destroy clears the record before its page is lent out again.
func (r *Request) Destroy() {
	clear(r.Payload[:r.Len])
	r.Len = 0
}

// LargeRequest holds frames above MaxInlinePayload.
type LargeRequest struct {
	Seq     uint64
	Len     uint32
	_       uint32
	Payload [MaxFrameSize]byte
}

func (r *LargeRequest) Bytes() []byte { return r.Payload[:r.Len] }

func (r *LargeRequest) Destroy() {
	clear(r.Payload[:r.Len])
	r.Len = 0
}

// pending is one queued request: exactly one of small/large is set.
type pending struct {
	small *Request
	large *LargeRequest
}

func (p pending) seq() uint64 {
	if p.small != nil {
		return p.small.Seq
	}
	return p.large.Seq
}

func (p pending) bytes() []byte {
	if p.small != nil {
		return p.small.Bytes()
	}
	return p.large.Bytes()
}

func (p pending) release(mp *pool.Pool) error {
	if p.small != nil {
		return pool.Deallocate(mp, p.small)
	}
	return pool.Deallocate(mp, p.large)
}

// newPending decodes payload into a pool-backed record.
func newPending(mp *pool.Pool, seq uint64, payload []byte) (pending, error) {
	if len(payload) > MaxFrameSize {
		return pending{}, api.NewError(api.ErrCodeInvalidArgument, "request frame too large").
			WithContext("len", len(payload))
	}
	if len(payload) <= MaxInlinePayload {
		r, err := pool.Allocate(mp, func(r *Request) {
			r.Seq = seq
			r.Len = uint32(copy(r.Payload[:], payload))
		})
		return pending{small: r}, err
	}
	r, err := pool.Allocate(mp, func(r *LargeRequest) {
		r.Seq = seq
		r.Len = uint32(copy(r.Payload[:], payload))
	})
	return pending{large: r}, err
}
