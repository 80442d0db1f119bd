// Package cmap provides a sharded concurrent map.
//
// The map spreads keys over a fixed set of shards, each guarded by its
// own RWMutex, so readers and writers of unrelated keys rarely contend.
//
// Usage:
//
//	m := cmap.New[string, *Info]()
//	m.Set("key", info)
//	val, ok := m.Get("key")
//
// All operations are thread-safe. Read operations (Get, Has) use RLock,
// write operations (Set, Delete) use Lock.
package cmap
