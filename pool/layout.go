// File: pool/layout.go
// Author: momentics <momentics@gmail.com>
//
// Per-type size/alignment facts, computed once per type.

package pool

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/momentics/hioload-mempool/api"
)

type layout struct {
	size  uintptr
	align uintptr
	err   error
}

var layouts sync.Map // reflect.Type -> layout

func layoutOf[T any]() layout {
	t := reflect.TypeFor[T]()
	if l, ok := layouts.Load(t); ok {
		return l.(layout)
	}
	var zero T
	l := layout{
		size:  unsafe.Sizeof(zero),
		align: unsafe.Alignof(zero),
	}
	if hasPointers(t) {
		l.err = api.Wrap(api.ErrCodeInvalidArgument, "pool allocate", api.ErrUnsupportedType).
			WithContext("type", t.String())
	}
	layouts.Store(t, l)
	return l
}

// hasPointers reports whether values of t contain anything the garbage
// collector would have to trace.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
