// Package encode turns a reachable live value graph into a snapshot buffer.
//
// Encoding runs in three phases. Discovery walks breadth-first from the
// export root values, assigning dense sequential IDs per entity kind and
// recording every function's source span. Source compaction builds the
// minimal source string covering all recorded spans. Table serialization
// then writes one binary table per kind (strings and shapes lazily, on
// first reference; the rest in a fixed pass) and assembles them behind the
// magic number in wire order.
//
// The first error encountered sticks; later work still runs but the
// operation reports failure and produces no buffer.
package encode
