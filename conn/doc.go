// Package conn
// Author: momentics <momentics@gmail.com>
//
// Client connection that stages decoded requests in a shared slab pool.
//
// Each request frame on the wire is a 4-byte big-endian length followed by
// the payload. Frames up to MaxInlinePayload bytes are decoded into a
// pooled Request record; larger frames (up to MaxFrameSize) use a
// LargeRequest that the pool serves from an extended block. Decoded
// requests wait in a FIFO until Process hands them to a Handler, writes the
// response frame and returns the record to the pool.
package conn
