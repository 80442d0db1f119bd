// Package domain defines the core domain types shared across websnap:
// the structured error model and the snapshot error taxonomy.
//
// Every failure surfaced by the codec carries a stable error code so that
// embedders and the CLI can react to categories (malformed input,
// unsupported construct, bad reference, instance reuse, resource
// exhaustion) without string matching.
package domain
