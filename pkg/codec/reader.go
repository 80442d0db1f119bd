package codec

import (
	"encoding/binary"
	"math"
)

// Reader decodes primitive values from an untrusted byte buffer.
//
// Reads never panic; each returns ok=false when the buffer is exhausted or
// the encoding is malformed. A failed read does not advance the cursor.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a Reader over buf. The Reader does not copy buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// RemainingBytes returns the unread tail of the buffer without consuming it.
func (r *Reader) RemainingBytes() []byte {
	return r.buf[r.pos:]
}

// SkipToEnd moves the cursor to the end of the buffer, so that every
// subsequent read fails. Used to terminate in-flight decode loops after a
// sticky error.
func (r *Reader) SkipToEnd() {
	r.pos = len(r.buf)
}

// ReadUint32 reads a fixed-width little-endian u32.
func (r *Reader) ReadUint32() (uint32, bool) {
	if r.Remaining() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, true
}

// ReadZigZag32 reads a zigzag-encoded variable-length signed integer.
func (r *Reader) ReadZigZag32() (int32, bool) {
	var u uint32
	var shift uint
	pos := r.pos
	for {
		if pos >= len(r.buf) || shift > 31 {
			return 0, false
		}
		b := r.buf[pos]
		pos++
		u |= uint32(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}
	r.pos = pos
	return int32(u>>1) ^ -int32(u&1), true
}

// ReadDouble reads an 8-byte little-endian IEEE 754 double.
func (r *Reader) ReadDouble() (float64, bool) {
	if r.Remaining() < 8 {
		return 0, false
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, true
}

// ReadString reads a u32-length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, bool) {
	length, ok := r.ReadUint32()
	if !ok {
		return "", false
	}
	if uint32(r.Remaining()) < length {
		r.pos -= 4
		return "", false
	}
	s := string(r.buf[r.pos : r.pos+int(length)])
	r.pos += int(length)
	return s, true
}

// ReadRawBytes reads exactly n bytes. The returned slice aliases the buffer.
func (r *Reader) ReadRawBytes(n int) ([]byte, bool) {
	if n < 0 || r.Remaining() < n {
		return nil, false
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, true
}
