// File: pool/options.go
// Package pool defines functional options for Pool construction.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"io"
	"log/slog"

	"github.com/momentics/hioload-mempool/api"
)

// Option customizes pool initialization.
type Option func(*config)

type config struct {
	pageSize int
	alloc    api.Allocator
	numaNode int
	logger   *slog.Logger
}

func defaultConfig() config {
	return config{
		pageSize: DefaultPageSize,
		alloc:    HeapAllocator{},
		numaNode: -1,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithPageSize sets the payload size of every pooled page.
func WithPageSize(n int) Option {
	return func(c *config) {
		c.pageSize = n
	}
}

// WithAllocator sets the backing allocator for pages and extended blocks.
func WithAllocator(a api.Allocator) Option {
	return func(c *config) {
		if a != nil {
			c.alloc = a
		}
	}
}

// WithNUMANode sets the preferred NUMA node passed to the allocator (-1 = any).
func WithNUMANode(node int) Option {
	return func(c *config) {
		c.numaNode = node
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
