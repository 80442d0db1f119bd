package encode

import "testing"

func TestIndexMapAssignsSequentialIDs(t *testing.T) {
	var m IndexMap[*int]
	a, b, c := new(int), new(int), new(int)

	for i, key := range []*int{a, b, c} {
		id, found := m.LookupOrInsert(key)
		if found {
			t.Fatalf("key %d: found on first insert", i)
		}
		if id != uint32(i) {
			t.Fatalf("key %d: id = %d, want %d", i, id, i)
		}
	}
	if m.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", m.Size())
	}
}

func TestIndexMapInterningIsIdempotent(t *testing.T) {
	var m IndexMap[*int]
	key := new(int)

	first, _ := m.LookupOrInsert(key)
	for i := 0; i < 3; i++ {
		id, found := m.LookupOrInsert(key)
		if !found {
			t.Fatal("found = false on re-insert")
		}
		if id != first {
			t.Fatalf("id = %d, want %d", id, first)
		}
	}
	if m.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", m.Size())
	}
}

func TestIndexMapKeysByIdentityNotContent(t *testing.T) {
	var m IndexMap[*int]
	a, b := new(int), new(int)
	*a, *b = 7, 7

	idA, _ := m.LookupOrInsert(a)
	idB, _ := m.LookupOrInsert(b)
	if idA == idB {
		t.Fatalf("distinct pointers share id %d", idA)
	}
}

func TestIndexMapLookupMissingKey(t *testing.T) {
	var m IndexMap[*int]
	if _, ok := m.Lookup(new(int)); ok {
		t.Fatal("Lookup on empty map reported ok")
	}
}
