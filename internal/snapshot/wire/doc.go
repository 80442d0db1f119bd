// Package wire pins down the snapshot wire format: the magic number, table
// order, value tags, context kinds, shape attribute modes, the
// function-flags bijection, and the hostile-input ceilings.
//
// Everything here is a compatibility contract. Changing any constant
// invalidates previously written snapshots.
package wire
