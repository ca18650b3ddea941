//go:build mempooldebug

// File: pool/assert_debug.go
// Author: momentics <momentics@gmail.com>
//
// Header validation compiled in with -tags mempooldebug.

package pool

import "fmt"

const debugChecks = true

func assertTag(t Tag) {
	if t != ExtendTag && !t.IsSlot() {
		panic(fmt.Sprintf("pool: corrupt page header %#02x", uint8(t)))
	}
}
