// Package store persists snapshot buffers as checksummed container files.
//
// Each container carries a JSON header (ULID, creation time, export names,
// encryption parameters), the snapshot payload (optionally sealed with an
// AEAD cipher derived from a passphrase or raw key), and a SHA-256 trailer
// over everything before it. Containers are fanned out across hashed
// subdirectories and pruned by a count/age retention policy.
package store
