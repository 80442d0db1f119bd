package encode

import "testing"

func TestCompactSourceNestedFunctions(t *testing.T) {
	//        0         1         2         3
	//        0123456789012345678901234567890123456789
	full := "function outer() { function inner() {} }"
	outer := Interval{Start: 0, End: len(full)}
	inner := Interval{Start: 19, End: 38}

	compacted, offsets := CompactSource(full, []Interval{inner, outer})
	if compacted != full {
		t.Fatalf("compacted = %q, want full source", compacted)
	}
	if offsets[0] != 0 {
		t.Fatalf("outer offset = %d, want 0", offsets[0])
	}
	if offsets[19] != 19 {
		t.Fatalf("inner offset = %d, want 19", offsets[19])
	}
}

func TestCompactSourceDropsUncoveredText(t *testing.T) {
	full := "aaaa func1(){} bbbb func2(){} cccc"
	f1 := Interval{Start: 5, End: 14}
	f2 := Interval{Start: 20, End: 29}

	compacted, offsets := CompactSource(full, []Interval{f1, f2})
	if want := "func1(){}func2(){}"; compacted != want {
		t.Fatalf("compacted = %q, want %q", compacted, want)
	}
	if offsets[5] != 0 {
		t.Fatalf("func1 offset = %d, want 0", offsets[5])
	}
	if offsets[20] != 9 {
		t.Fatalf("func2 offset = %d, want 9", offsets[20])
	}
}

func TestCompactSourceOverlappingIntervals(t *testing.T) {
	full := "0123456789"
	a := Interval{Start: 2, End: 6}
	b := Interval{Start: 4, End: 9}

	compacted, offsets := CompactSource(full, []Interval{b, a})
	if want := "2345678"; compacted != want {
		t.Fatalf("compacted = %q, want %q", compacted, want)
	}
	if offsets[2] != 0 {
		t.Fatalf("a offset = %d, want 0", offsets[2])
	}
	if offsets[4] != 2 {
		t.Fatalf("b offset = %d, want 2", offsets[4])
	}
}

func TestCompactSourceDuplicateIntervals(t *testing.T) {
	full := "xx body xx"
	iv := Interval{Start: 3, End: 7}

	compacted, offsets := CompactSource(full, []Interval{iv, iv, iv})
	if want := "body"; compacted != want {
		t.Fatalf("compacted = %q, want %q", compacted, want)
	}
	if offsets[3] != 0 {
		t.Fatalf("offset = %d, want 0", offsets[3])
	}
}

func TestCompactSourceEmpty(t *testing.T) {
	compacted, offsets := CompactSource("whatever", nil)
	if compacted != "" {
		t.Fatalf("compacted = %q, want empty", compacted)
	}
	if len(offsets) != 0 {
		t.Fatalf("offsets has %d entries, want 0", len(offsets))
	}
}
