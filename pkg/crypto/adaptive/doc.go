// Package adaptive provides AEAD encryption with automatic algorithm
// selection.
//
// It picks the best available algorithm for the hardware: AES-256-GCM
// where hardware AES support is present, ChaCha20-Poly1305 otherwise.
// A specific algorithm can be forced with NewWithType.
//
// Usage:
//
//	cipher, err := adaptive.New(key)
//	sealed, err := cipher.Encrypt(plaintext, aad)
//	plain, err := cipher.Decrypt(sealed, aad)
package adaptive
