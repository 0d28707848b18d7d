package crypto

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Blob layout, fixed for cross-compatibility:
//
//	[salt:16][iv:12][ciphertext][tag:16]
//
// The salt feeds the KDF, the IV and trailing tag belong to AES-256-GCM.
// A well-formed blob is at least HeaderSize+TagSize bytes.
const (
	IVSize     = 12 // GCM nonce size
	TagSize    = 16 // GCM authentication tag size
	HeaderSize = SaltSize + IVSize

	// chunkSize bounds how much plaintext or ciphertext is held in
	// memory at once, so file size is not limited by available memory.
	chunkSize = 64 * 1024
)

var (
	// ErrInvalidBlob reports a blob too short to contain the salt+iv header.
	ErrInvalidBlob = errors.New("invalid encrypted blob")

	// ErrAuthFailed reports a failed authentication tag check. A wrong
	// password and corrupted or tampered ciphertext are deliberately
	// indistinguishable, so the error never acts as a password oracle.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrPayloadTooLarge reports input beyond the GCM single-message limit
	// of (2^32-2) blocks under one salt and IV.
	ErrPayloadTooLarge = errors.New("payload exceeds maximum blob size")
)

// Encrypt encrypts src to dst under a key derived from password.
// A fresh random salt and IV are generated per call and written as the blob
// header; data is processed in bounded chunks.
func Encrypt(dst io.Writer, src io.Reader, password []byte) error {
	kdf, err := NewKDF()
	if err != nil {
		return err
	}
	iv, err := GenerateRandom(IVSize)
	if err != nil {
		return err
	}

	key := kdf.DeriveKey(password, KeySize)
	defer ClearBytes(key)

	stream, err := newGCMStream(key, iv)
	if err != nil {
		return err
	}

	if _, err := dst.Write(kdf.Salt); err != nil {
		return fmt.Errorf("failed to write blob header: %w", err)
	}
	if _, err := dst.Write(iv); err != nil {
		return fmt.Errorf("failed to write blob header: %w", err)
	}

	buf := make([]byte, chunkSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			c := buf[:n]
			if err := stream.extend(uint64(n)); err != nil {
				return err
			}
			stream.xorKeyStream(c, c)
			stream.absorb(c)
			if _, err := dst.Write(c); err != nil {
				return fmt.Errorf("failed to write ciphertext: %w", err)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("failed to read plaintext: %w", rerr)
		}
	}

	tag := stream.tag()
	if _, err := dst.Write(tag[:]); err != nil {
		return fmt.Errorf("failed to write tag: %w", err)
	}
	return nil
}

// Decrypt decrypts a blob from src to dst using a key re-derived from the
// embedded salt and the supplied password. It returns ErrInvalidBlob if the
// blob is shorter than the salt+iv header and ErrAuthFailed if the tag check
// fails.
//
// Plaintext chunks reach dst before the tag is verified; callers must
// discard everything written to dst unless Decrypt returns nil.
func Decrypt(dst io.Writer, src io.Reader, password []byte) error {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(src, header[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrInvalidBlob
		}
		return fmt.Errorf("failed to read blob header: %w", err)
	}

	kdf := &KDF{Salt: header[:SaltSize], Iterations: DefaultIters}
	key := kdf.DeriveKey(password, KeySize)
	defer ClearBytes(key)

	stream, err := newGCMStream(key, header[SaltSize:])
	if err != nil {
		return err
	}

	// The trailing TagSize bytes are held back from decryption until the
	// stream is exhausted.
	buf := make([]byte, chunkSize+TagSize)
	filled := 0
	for {
		n, rerr := io.ReadFull(src, buf[filled:])
		filled += n

		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			if filled < TagSize {
				return ErrAuthFailed
			}
			ct := buf[:filled-TagSize]
			if err := stream.extend(uint64(len(ct))); err != nil {
				return err
			}
			stream.absorb(ct)
			stream.xorKeyStream(ct, ct)

			tag := stream.tag()
			if !ConstantTimeCompare(buf[filled-TagSize:filled], tag[:]) {
				return ErrAuthFailed
			}
			if _, err := dst.Write(ct); err != nil {
				return fmt.Errorf("failed to write plaintext: %w", err)
			}
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("failed to read ciphertext: %w", rerr)
		}

		// Buffer full: everything before the held-back tail is ciphertext.
		ct := buf[:chunkSize]
		if err := stream.extend(uint64(chunkSize)); err != nil {
			return err
		}
		stream.absorb(ct)
		stream.xorKeyStream(ct, ct)
		if _, err := dst.Write(ct); err != nil {
			return fmt.Errorf("failed to write plaintext: %w", err)
		}
		copy(buf, buf[chunkSize:])
		filled = TagSize
	}
}

// EncryptBytes encrypts an in-memory payload into a complete blob
func EncryptBytes(plaintext, password []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(HeaderSize + len(plaintext) + TagSize)
	if err := Encrypt(&out, bytes.NewReader(plaintext), password); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecryptBytes decrypts a complete in-memory blob
func DecryptBytes(blob, password []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := Decrypt(&out, bytes.NewReader(blob), password); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
