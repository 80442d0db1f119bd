// Package codec implements the primitive binary encoding used by snapshot
// buffers.
//
// The format building blocks are:
//
//   - u32: fixed-width 32-bit little-endian unsigned integers
//   - i32: zigzag-encoded variable-length signed integers
//   - f64: 8-byte IEEE 754 doubles, little-endian
//   - string: u32 byte length followed by UTF-8 bytes
//   - raw: unprefixed byte ranges
//
// Writer grows its buffer as needed and never fails. Reader operates over
// untrusted input: every read reports success with a boolean instead of
// returning an error, so callers can record a single sticky error and keep
// draining the stream.
package codec
