// Package runtime provides the reference value-graph host for websnap.
//
// The snapshot codec consumes live values only through the types in this
// package: tagged values, identity-carrying heap entities (strings, shapes,
// objects, arrays, contexts, functions, regexps), a namespace for export
// bindings, and a heap that owns allocation and collection notifications.
//
// The package is deliberately small: it models exactly the subset of a
// script runtime that the snapshot format supports. Real engines embed the
// codec by implementing Executor and mapping their own value model onto
// these types.
package runtime
