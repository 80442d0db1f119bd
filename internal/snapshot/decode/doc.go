// Package decode reconstructs a value graph from an untrusted snapshot
// buffer.
//
// Tables are read in wire order. Each table's declared count is checked
// against a fixed ceiling before any allocation, and entities are built
// strictly in ascending ID order. A record referencing an entity that is
// not yet materialized emits a deferred reference instead of blocking;
// one resolver pass patches all of them after every table has its final
// count. Exports decode completely before any binding is installed, so a
// malformed snapshot never leaves a partial namespace.
//
// The first error is sticky. It zeroes every table count and moves the
// read cursor to the end of the buffer, which terminates any in-flight
// loop without unwinding.
package decode
