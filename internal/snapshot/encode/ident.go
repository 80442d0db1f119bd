package encode

// IndexMap assigns dense sequential IDs to entities keyed by identity.
// Interning is idempotent: re-encountering a key always returns the ID
// assigned on first insert.
type IndexMap[K comparable] struct {
	ids map[K]uint32
}

// LookupOrInsert returns the ID for key, assigning the next sequential ID
// when the key is new. found reports whether the key was already interned.
func (m *IndexMap[K]) LookupOrInsert(key K) (id uint32, found bool) {
	if m.ids == nil {
		m.ids = make(map[K]uint32)
	}
	if id, found = m.ids[key]; found {
		return id, true
	}
	id = uint32(len(m.ids))
	m.ids[key] = id
	return id, false
}

// Lookup returns the ID previously assigned to key.
func (m *IndexMap[K]) Lookup(key K) (uint32, bool) {
	id, ok := m.ids[key]
	return id, ok
}

// Size returns the number of interned keys.
func (m *IndexMap[K]) Size() int {
	return len(m.ids)
}
