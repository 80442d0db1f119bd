// Package logger provides structured logging for websnap.
//
// It wraps log/slog with JSON output by default, automatic redaction of
// sensitive fields (store passphrases and derived keys), and a
// dynamically adjustable global level.
package logger
