package codec

import (
	"bytes"
	"math"
	"testing"
)

func TestWriteReadUint32(t *testing.T) {
	w := NewWriter(16)
	w.WriteUint32(0)
	w.WriteUint32(1)
	w.WriteUint32(0xdeadbeef)
	w.WriteUint32(math.MaxUint32)

	r := NewReader(w.Bytes())
	for _, want := range []uint32{0, 1, 0xdeadbeef, math.MaxUint32} {
		got, ok := r.ReadUint32()
		if !ok {
			t.Fatalf("ReadUint32 failed, want %d", want)
		}
		if got != want {
			t.Fatalf("ReadUint32 = %d, want %d", got, want)
		}
	}
	if _, ok := r.ReadUint32(); ok {
		t.Fatal("ReadUint32 succeeded past end of buffer")
	}
}

func TestUint32LittleEndian(t *testing.T) {
	w := NewWriter(4)
	w.WriteUint32(0x01020304)
	if !bytes.Equal(w.Bytes(), []byte{0x04, 0x03, 0x02, 0x01}) {
		t.Fatalf("bytes = %v, want little-endian order", w.Bytes())
	}
}

func TestZigZag32RoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 2, -2, 63, 64, -64, -65, 1000000, -1000000, math.MaxInt32, math.MinInt32}
	w := NewWriter(64)
	for _, v := range values {
		w.WriteZigZag32(v)
	}
	r := NewReader(w.Bytes())
	for _, want := range values {
		got, ok := r.ReadZigZag32()
		if !ok {
			t.Fatalf("ReadZigZag32 failed, want %d", want)
		}
		if got != want {
			t.Fatalf("ReadZigZag32 = %d, want %d", got, want)
		}
	}
}

func TestZigZag32SmallValuesAreOneByte(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 63, -64} {
		w := NewWriter(8)
		w.WriteZigZag32(v)
		if w.Len() != 1 {
			t.Fatalf("zigzag(%d) took %d bytes, want 1", v, w.Len())
		}
	}
}

func TestZigZag32Truncated(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80})
	if _, ok := r.ReadZigZag32(); ok {
		t.Fatal("ReadZigZag32 succeeded on truncated varint")
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	values := []float64{0, -0, 1.5, -1.5, math.Pi, math.Inf(1), math.Inf(-1), math.SmallestNonzeroFloat64}
	w := NewWriter(64)
	for _, v := range values {
		w.WriteDouble(v)
	}
	r := NewReader(w.Bytes())
	for _, want := range values {
		got, ok := r.ReadDouble()
		if !ok {
			t.Fatalf("ReadDouble failed, want %g", want)
		}
		if got != want {
			t.Fatalf("ReadDouble = %g, want %g", got, want)
		}
	}
}

func TestDoubleNaN(t *testing.T) {
	w := NewWriter(8)
	w.WriteDouble(math.NaN())
	r := NewReader(w.Bytes())
	got, ok := r.ReadDouble()
	if !ok || !math.IsNaN(got) {
		t.Fatalf("ReadDouble = %g, %v, want NaN", got, ok)
	}
}

func TestStringRoundTrip(t *testing.T) {
	values := []string{"", "x", "hello", "päivää", "\x00\x01\x02"}
	w := NewWriter(64)
	for _, v := range values {
		w.WriteString(v)
	}
	r := NewReader(w.Bytes())
	for _, want := range values {
		got, ok := r.ReadString()
		if !ok {
			t.Fatalf("ReadString failed, want %q", want)
		}
		if got != want {
			t.Fatalf("ReadString = %q, want %q", got, want)
		}
	}
}

func TestStringLengthBeyondBuffer(t *testing.T) {
	w := NewWriter(8)
	w.WriteUint32(100) // declared length longer than the payload
	w.WriteRawBytes([]byte("abc"))
	r := NewReader(w.Bytes())
	if _, ok := r.ReadString(); ok {
		t.Fatal("ReadString succeeded with length beyond buffer")
	}
	// Failed read must not consume input.
	if r.Remaining() != 7 {
		t.Fatalf("Remaining = %d, want 7", r.Remaining())
	}
}

func TestRawBytes(t *testing.T) {
	w := NewWriter(8)
	w.WriteRawBytes([]byte{1, 2, 3, 4})
	r := NewReader(w.Bytes())
	got, ok := r.ReadRawBytes(4)
	if !ok || !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("ReadRawBytes = %v, %v", got, ok)
	}
	if _, ok := r.ReadRawBytes(1); ok {
		t.Fatal("ReadRawBytes succeeded past end")
	}
}

func TestSkipToEnd(t *testing.T) {
	w := NewWriter(16)
	w.WriteUint32(1)
	w.WriteUint32(2)
	r := NewReader(w.Bytes())
	r.SkipToEnd()
	if r.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", r.Remaining())
	}
	if _, ok := r.ReadUint32(); ok {
		t.Fatal("ReadUint32 succeeded after SkipToEnd")
	}
}
