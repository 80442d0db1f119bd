package codec

import (
	"encoding/binary"
	"math"
)

// Writer accumulates primitive values into a growable byte buffer.
//
// The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written bytes. The slice aliases the internal buffer;
// it is valid until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteUint32 appends v as a fixed-width little-endian u32.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteZigZag32 appends v zigzag-encoded as a variable-length integer.
func (w *Writer) WriteZigZag32(v int32) {
	u := uint32(v<<1) ^ uint32(v>>31)
	for u >= 0x80 {
		w.buf = append(w.buf, byte(u)|0x80)
		u >>= 7
	}
	w.buf = append(w.buf, byte(u))
}

// WriteDouble appends v as an 8-byte little-endian IEEE 754 double.
func (w *Writer) WriteDouble(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteString appends a u32 length prefix followed by the UTF-8 bytes of s.
func (w *Writer) WriteString(s string) {
	w.WriteUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteRawBytes appends b with no length prefix.
func (w *Writer) WriteRawBytes(b []byte) {
	w.buf = append(w.buf, b...)
}
