// File: conn/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Accept loop that shares one slab pool across all client connections.

package conn

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/momentics/hioload-mempool/pool"
)

// Server accepts connections and serves them with a shared pool.
type Server struct {
	Pool    *pool.Pool
	Handler Handler
	Logger  *slog.Logger

	wg sync.WaitGroup
}

// Serve accepts on ln until ctx is cancelled, then waits for every
// connection goroutine to finish. It closes ln on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer s.wg.Wait()

	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		c := New(nc, logger)
		c.SetMemoryPool(s.Pool)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer c.Close()
			if err := c.Serve(ctx, s.Handler); err != nil && ctx.Err() == nil {
				logger.Warn("connection closed with error", "remote", nc.RemoteAddr().String(), "err", err)
			}
		}()
	}
}
