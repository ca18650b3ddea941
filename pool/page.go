// File: pool/page.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Conversions between backing slices and payload pointers. Together with
// header.go this is the only place that does pointer arithmetic.

package pool

import (
	"unsafe"

	"github.com/momentics/hioload-mempool/api"
)

// payloadAt returns the address offset bytes into buf.
func payloadAt(buf []byte, offset uintptr) unsafe.Pointer {
	return unsafe.Pointer(&buf[offset])
}

// blockOf rebuilds the backing slice that holds payload.
func blockOf(payload unsafe.Pointer, offset uintptr, size int) []byte {
	return unsafe.Slice((*byte)(unsafe.Add(payload, -int(offset))), size)
}

// construct zeroes the payload as a T and runs init on it.
func construct[T any](payload unsafe.Pointer, init func(*T)) *T {
	obj := (*T)(payload)
	var zero T
	*obj = zero
	if init != nil {
		init(obj)
	}
	return obj
}

// destroy runs the in-place destructor of obj, if it has one.
func destroy[T any](obj *T) {
	if d, ok := any(obj).(api.Destroyer); ok {
		d.Destroy()
	}
}
