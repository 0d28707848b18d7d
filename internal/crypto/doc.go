// Package crypto provides key derivation and streaming authenticated
// encryption for filelocker.
//
// Encryption uses AES-256-GCM with:
//   - 32-byte key derived from the user's password via PBKDF2
//   - 16-byte random salt and 12-byte random IV per blob, never reused
//   - 128-bit authentication tag detecting wrong passwords and tampering
//
// Key derivation uses PBKDF2-HMAC-SHA256 with 65,536 iterations. The same
// KDF backs the login verifier and file keys, always with independent salts.
//
// Blobs are framed as [salt:16][iv:12][ciphertext][tag:16]. Encrypt and
// Decrypt stream through fixed-size chunks by driving GCM incrementally, so
// the format stays byte-compatible with one-shot AES-GCM while memory use
// stays bounded.
//
// Memory safety: use ClearBytes() to zero sensitive data after use.
package crypto
