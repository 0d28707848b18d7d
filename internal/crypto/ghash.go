package crypto

import (
	"crypto/cipher"
	"encoding/binary"
)

// ghash accumulates the GHASH universal hash over ciphertext blocks,
// per NIST SP 800-38D. Field elements are 128-bit values in the GCM bit
// order: bit 0 is the most significant bit of the first byte.
type ghash struct {
	h0, h1 uint64 // hash subkey H = E(K, 0^128)
	y0, y1 uint64 // running state
	buf    [gcmBlockSize]byte
	nbuf   int
}

func newGHASH(block cipher.Block) *ghash {
	var h [gcmBlockSize]byte
	block.Encrypt(h[:], h[:])
	return &ghash{
		h0: binary.BigEndian.Uint64(h[:8]),
		h1: binary.BigEndian.Uint64(h[8:]),
	}
}

// update absorbs ciphertext bytes, buffering partial blocks
func (g *ghash) update(p []byte) {
	if g.nbuf > 0 {
		n := copy(g.buf[g.nbuf:], p)
		g.nbuf += n
		p = p[n:]
		if g.nbuf < gcmBlockSize {
			return
		}
		g.absorb(g.buf[:])
		g.nbuf = 0
	}
	for len(p) >= gcmBlockSize {
		g.absorb(p[:gcmBlockSize])
		p = p[gcmBlockSize:]
	}
	if len(p) > 0 {
		g.nbuf = copy(g.buf[:], p)
	}
}

func (g *ghash) absorb(b []byte) {
	g.y0 ^= binary.BigEndian.Uint64(b[:8])
	g.y1 ^= binary.BigEndian.Uint64(b[8:])
	g.y0, g.y1 = gfMul(g.y0, g.y1, g.h0, g.h1)
}

// sum zero-pads any buffered partial block, absorbs the GCM length block
// (no additional data, clen ciphertext bytes) and returns the final state.
func (g *ghash) sum(clen uint64) [gcmBlockSize]byte {
	if g.nbuf > 0 {
		for i := g.nbuf; i < gcmBlockSize; i++ {
			g.buf[i] = 0
		}
		g.absorb(g.buf[:])
		g.nbuf = 0
	}

	var lengths [gcmBlockSize]byte
	binary.BigEndian.PutUint64(lengths[8:], clen*8)
	g.absorb(lengths[:])

	var out [gcmBlockSize]byte
	binary.BigEndian.PutUint64(out[:8], g.y0)
	binary.BigEndian.PutUint64(out[8:], g.y1)
	return out
}

// gfMul multiplies two elements of GF(2^128) modulo the GCM polynomial
// (SP 800-38D, algorithm 1).
func gfMul(x0, x1, y0, y1 uint64) (z0, z1 uint64) {
	v0, v1 := y0, y1
	for i := 0; i < 128; i++ {
		var bit uint64
		if i < 64 {
			bit = x0 >> (63 - i) & 1
		} else {
			bit = x1 >> (127 - i) & 1
		}
		if bit == 1 {
			z0 ^= v0
			z1 ^= v1
		}
		lsb := v1 & 1
		v1 = v1>>1 | v0<<63
		v0 >>= 1
		if lsb == 1 {
			v0 ^= 0xe100000000000000
		}
	}
	return z0, z1
}
