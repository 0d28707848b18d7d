package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

const gcmBlockSize = 16

// maxPayload is the largest plaintext or ciphertext a single blob may
// carry. One more block and the 32-bit counter would wrap back onto the
// pre-counter block, leaking the tag mask and repeating keystream.
const maxPayload = ((1 << 32) - 2) * gcmBlockSize

// gcmStream drives AES-GCM incrementally: a CTR keystream with the GCM
// 32-bit counter increment, plus a GHASH accumulator fed with ciphertext.
// It produces output identical to crypto/cipher's one-shot GCM, which is
// what makes bounded-memory processing of the fixed single-tag blob
// framing possible.
type gcmStream struct {
	block cipher.Block
	j0    [gcmBlockSize]byte // pre-counter block, masks the final tag
	ctr   [gcmBlockSize]byte // running keystream counter
	ks    [gcmBlockSize]byte // current keystream block
	ksPos int                // consumed bytes of ks
	hash  *ghash
	clen  uint64 // total ciphertext bytes seen
	avail uint64 // payload bytes left before counter exhaustion
}

func newGCMStream(key, iv []byte) (*gcmStream, error) {
	if len(iv) != IVSize {
		return nil, fmt.Errorf("invalid IV length %d", len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	s := &gcmStream{
		block: block,
		ksPos: gcmBlockSize,
		hash:  newGHASH(block),
		avail: maxPayload,
	}
	copy(s.j0[:], iv)
	s.j0[gcmBlockSize-1] = 1
	s.ctr = s.j0
	inc32(&s.ctr)
	return s, nil
}

// extend reserves counter space for n more payload bytes. It returns
// ErrPayloadTooLarge once the total would exceed maxPayload; callers must
// not process the bytes after a failed reservation.
func (s *gcmStream) extend(n uint64) error {
	if n > s.avail {
		return ErrPayloadTooLarge
	}
	s.avail -= n
	return nil
}

// xorKeyStream XORs src with the keystream into dst.
// dst and src must have the same length and may overlap entirely.
func (s *gcmStream) xorKeyStream(dst, src []byte) {
	for len(src) > 0 {
		if s.ksPos == gcmBlockSize {
			s.block.Encrypt(s.ks[:], s.ctr[:])
			inc32(&s.ctr)
			s.ksPos = 0
		}
		n := subtle.XORBytes(dst, src, s.ks[s.ksPos:])
		s.ksPos += n
		dst = dst[n:]
		src = src[n:]
	}
}

// absorb feeds ciphertext into the authentication state
func (s *gcmStream) absorb(ciphertext []byte) {
	s.hash.update(ciphertext)
	s.clen += uint64(len(ciphertext))
}

// tag finalizes the authentication tag over all absorbed ciphertext
func (s *gcmStream) tag() [TagSize]byte {
	sum := s.hash.sum(s.clen)

	var mask [gcmBlockSize]byte
	s.block.Encrypt(mask[:], s.j0[:])

	var t [TagSize]byte
	subtle.XORBytes(t[:], sum[:], mask[:])
	return t
}

// inc32 increments the low 32 bits of the counter, wrapping on overflow
func inc32(ctr *[gcmBlockSize]byte) {
	n := binary.BigEndian.Uint32(ctr[gcmBlockSize-4:])
	binary.BigEndian.PutUint32(ctr[gcmBlockSize-4:], n+1)
}
