// File: conn/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package conn

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-mempool/api"
	"github.com/momentics/hioload-mempool/pool"
)

const frameHeaderSize = 4

// Handler produces the response payload for one request. The returned
// slice may alias the request payload; both stay valid until the response
// has been buffered for writing.
type Handler func(seq uint64, payload []byte) []byte

// Conn reads request frames from a net.Conn and stages them in a pool.
type Conn struct {
	nc  net.Conn
	rd  *bufio.Reader
	wr  *bufio.Writer
	log *slog.Logger

	mu      sync.Mutex
	mp      *pool.Pool
	pending *queue.Queue // of pending
	seq     uint64
	scratch []byte
	closed  bool
}

// New wraps nc. A pool must be attached with SetMemoryPool before reading.
func New(nc net.Conn, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conn{
		nc:      nc,
		rd:      bufio.NewReader(nc),
		wr:      bufio.NewWriter(nc),
		log:     logger.With("remote", nc.RemoteAddr().String()),
		pending: queue.New(),
	}
}

// SetMemoryPool attaches the shared pool request records are drawn from.
func (c *Conn) SetMemoryPool(mp *pool.Pool) {
	c.mu.Lock()
	c.mp = mp
	c.mu.Unlock()
}

// Pending returns the number of decoded requests not yet processed.
func (c *Conn) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Length()
}

// ReadRequest reads one frame and queues it. It returns io.EOF when the
// peer closed the stream between frames.
func (c *Conn) ReadRequest() error {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(c.rd, hdr[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return api.NewError(api.ErrCodeInvalidArgument, "request frame too large").WithContext("len", n)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return api.NewError(api.ErrCodeClosed, "connection closed")
	}
	if c.mp == nil {
		return api.NewError(api.ErrCodeInvalidArgument, "no memory pool attached")
	}
	if cap(c.scratch) < int(n) {
		c.scratch = make([]byte, n)
	}
	payload := c.scratch[:n]
	if _, err := io.ReadFull(c.rd, payload); err != nil {
		return fmt.Errorf("read frame body: %w", err)
	}
	p, err := newPending(c.mp, c.seq, payload)
	if err != nil {
		return err
	}
	c.seq++
	c.pending.Add(p)
	return nil
}

// Process answers every queued request in arrival order and returns each
// record to the pool. It reports how many requests were answered.
func (c *Conn) Process(h Handler) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	done := 0
	for c.pending.Length() > 0 {
		p := c.pending.Remove().(pending)
		werr := c.writeFrame(h(p.seq(), p.bytes()))
		if err := errors.Join(werr, p.release(c.mp)); err != nil {
			return done, err
		}
		done++
	}
	return done, c.wr.Flush()
}

func (c *Conn) writeFrame(payload []byte) error {
	if len(payload) > MaxFrameSize {
		return api.NewError(api.ErrCodeInvalidArgument, "response frame too large").
			WithContext("len", len(payload))
	}
	var hdr [frameHeaderSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := c.wr.Write(hdr[:]); err != nil {
		return err
	}
	_, err := c.wr.Write(payload)
	return err
}

// Serve reads and answers requests until the peer disconnects or ctx is
// cancelled. A clean disconnect returns nil.
func (c *Conn) Serve(ctx context.Context, h Handler) error {
	stop := context.AfterFunc(ctx, func() { _ = c.nc.Close() })
	defer stop()

	for {
		if err := c.ReadRequest(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		// Batch whatever is already buffered before replying.
		for c.rd.Buffered() >= frameHeaderSize {
			if err := c.ReadRequest(); err != nil {
				return err
			}
		}
		if _, err := c.Process(h); err != nil {
			return err
		}
	}
}

// Close returns every unprocessed request to the pool and closes the
// underlying connection. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	var errs []error
	for c.pending.Length() > 0 {
		p := c.pending.Remove().(pending)
		if err := p.release(c.mp); err != nil {
			errs = append(errs, err)
		}
	}
	if dropped := len(errs); dropped > 0 {
		c.log.Warn("failed to release pending requests", "count", dropped)
	}
	if err := c.nc.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
