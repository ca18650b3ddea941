// File: pool/header.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Page header layout shared by the pooled and extended paths.
//
//	pooled page:    | pad (7) | tag | payload (pageSize)       |
//	extended block: | pad     | tag | payload (sizeof T) | pad |
//
// The tag always sits in the byte immediately before the payload.

package pool

import "unsafe"

// Tag is the page header value stored in front of every payload.
type Tag uint8

const (
	// SlotCount is the fixed number of pooled pages.
	SlotCount = 64

	// HeaderSize is the number of header bytes preceding a payload.
	HeaderSize = 1

	// PayloadAlign is the alignment of pooled payloads and of every block
	// requested from the backing allocator.
	PayloadAlign = 8

	// ExtendTag marks a payload that lives in an extended block.
	ExtendTag Tag = 0xFF

	// DefaultPageSize is the payload size of a pooled page unless overridden.
	DefaultPageSize = 512

	// MaxPageSize bounds the configurable page size.
	MaxPageSize = 1 << 20
)

// IsSlot reports whether t names a pooled slot.
func (t Tag) IsSlot() bool { return t < SlotCount }

// headerOf returns the address of the tag byte for payload.
func headerOf(payload unsafe.Pointer) *Tag {
	return (*Tag)(unsafe.Add(payload, -HeaderSize))
}

func readTag(payload unsafe.Pointer) Tag {
	t := *headerOf(payload)
	assertTag(t)
	return t
}

func writeTag(payload unsafe.Pointer, t Tag) {
	*headerOf(payload) = t
}

// alignUp rounds n up to a multiple of a (a power of two).
func alignUp(n, a uintptr) uintptr {
	return (n + a - 1) &^ (a - 1)
}

// pageBlockSize is the backing size of a pooled page with the given payload size.
func pageBlockSize(pageSize int) int {
	return int(alignUp(PayloadAlign+uintptr(pageSize), PayloadAlign))
}

// extendOffset is the payload offset inside an extended block for a type
// of the given alignment. It leaves room for the header and keeps the
// payload aligned, given the block itself starts on a PayloadAlign boundary.
func extendOffset(align uintptr) uintptr {
	if align == 0 {
		align = 1
	}
	return alignUp(HeaderSize, align)
}

// extendBlockSize is the backing size of an extended block.
func extendBlockSize(size, align uintptr) int {
	if size == 0 {
		size = 1
	}
	return int(alignUp(extendOffset(align)+size, PayloadAlign))
}
