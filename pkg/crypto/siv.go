package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// AES-SIV (RFC 5297), built directly from stdlib crypto/aes + crypto/cipher.
// No third-party library in the reference pack implements SIV mode; this is
// the one primitive the core builds by hand, in the same "construct an AEAD
// from raw block-cipher primitives" shape the teacher repo uses for its own
// at-rest vault (see DESIGN.md).

const sivKeyLen = 64 // 32 bytes for S2V/CMAC (K1) + 32 bytes for CTR (K2), AES-256 each half

// SealSIV deterministically encrypts plaintext under key (64 bytes: two
// AES-256 subkeys) using associatedData as the S2V input alongside the
// plaintext. Returns tag||ciphertext, where tag is the 16-byte synthetic IV.
func SealSIV(key []byte, plaintext, associatedData []byte) ([]byte, error) {
	k1, k2, err := splitSIVKey(key)
	if err != nil {
		return nil, err
	}
	iv, err := s2v(k1, associatedData, plaintext)
	if err != nil {
		return nil, err
	}
	ct, err := ctrCrypt(k2, sivCounter(iv), plaintext)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(iv)+len(ct))
	out = append(out, iv[:]...)
	out = append(out, ct...)
	return out, nil
}

// OpenSIV reverses SealSIV, returning ErrSIVAuthFailed if the recomputed
// synthetic IV doesn't match the one stored in sealed.
func OpenSIV(key []byte, sealed, associatedData []byte) ([]byte, error) {
	if len(sealed) < 16 {
		return nil, fmt.Errorf("crypto: sealed value too short for AES-SIV")
	}
	k1, k2, err := splitSIVKey(key)
	if err != nil {
		return nil, err
	}
	var tag [16]byte
	copy(tag[:], sealed[:16])
	ct := sealed[16:]

	pt, err := ctrCrypt(k2, sivCounter(tag), ct)
	if err != nil {
		return nil, err
	}
	want, err := s2v(k1, associatedData, pt)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(tag[:], want[:]) != 1 {
		return nil, ErrSIVAuthFailed
	}
	return pt, nil
}

func splitSIVKey(key []byte) (k1, k2 []byte, err error) {
	if len(key) != sivKeyLen {
		return nil, nil, fmt.Errorf("crypto: AES-SIV key must be %d bytes, got %d", sivKeyLen, len(key))
	}
	return key[:32], key[32:], nil
}

// sivCounter clears the top bit of the third and fourth 32-bit words of the
// synthetic IV before using it as a CTR counter, per RFC 5297 §2.6.
func sivCounter(iv [16]byte) [16]byte {
	iv[8] &= 0x7f
	iv[12] &= 0x7f
	return iv
}

func ctrCrypt(key []byte, iv [16]byte, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: AES-SIV cipher init: %w", err)
	}
	stream := cipher.NewCTR(block, iv[:])
	out := make([]byte, len(in))
	stream.XORKeyStream(out, in)
	return out, nil
}

// s2v implements the RFC 5297 S2V construction over exactly two input
// strings: the associated data and the plaintext.
func s2v(key []byte, ad, plaintext []byte) ([16]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return [16]byte{}, fmt.Errorf("crypto: AES-SIV CMAC cipher init: %w", err)
	}

	var zero [16]byte
	d := cmac(block, zero[:])
	d = dbl(d)
	d = xorBlock(d, cmac(block, ad))

	var t [16]byte
	if len(plaintext) >= 16 {
		t = xorend(plaintext, d)
	} else {
		d = dbl(d)
		t = xorBlock(d, pad(plaintext))
	}
	return cmac(block, t[:]), nil
}

func xorend(s []byte, d [16]byte) [16]byte {
	var t [16]byte
	copy(t[:], s[len(s)-16:])
	return xorBlock(t, d)
}

func xorBlock(a, b [16]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// dbl doubles a 16-byte block in GF(2^128), per SP 800-38B.
func dbl(b [16]byte) [16]byte {
	var out [16]byte
	msb := b[0] & 0x80
	carry := byte(0)
	for i := 15; i >= 0; i-- {
		out[i] = (b[i] << 1) | carry
		carry = (b[i] & 0x80) >> 7
	}
	if msb != 0 {
		out[15] ^= 0x87
	}
	return out
}

func pad(s []byte) [16]byte {
	var out [16]byte
	copy(out[:], s)
	out[len(s)] = 0x80
	return out
}

// cmac is AES-CMAC (RFC 4493 / SP 800-38B) over a single message.
func cmac(block cipher.Block, msg []byte) [16]byte {
	k1, k2 := cmacSubkeys(block)

	var zero [16]byte
	n := (len(msg) + 15) / 16
	var lastBlock [16]byte
	var complete bool

	if n == 0 {
		n = 1
		complete = false
	} else {
		complete = len(msg)%16 == 0
	}

	mac := zero
	for i := 0; i < n-1; i++ {
		mac = xorBlock(mac, blockAt(msg, i))
		mac = encryptBlock(block, mac)
	}

	if n >= 1 {
		last := blockAt(msg, n-1)
		if complete {
			lastBlock = xorBlock(last, k1)
		} else {
			lastBlock = xorBlock(padPartial(msg, n-1), k2)
		}
	}
	mac = xorBlock(mac, lastBlock)
	return encryptBlock(block, mac)
}

func blockAt(msg []byte, i int) [16]byte {
	var b [16]byte
	start := i * 16
	end := start + 16
	if end > len(msg) {
		end = len(msg)
	}
	if start < len(msg) {
		copy(b[:], msg[start:end])
	}
	return b
}

func padPartial(msg []byte, i int) [16]byte {
	start := i * 16
	rest := msg[start:]
	return pad(rest)
}

func encryptBlock(block cipher.Block, in [16]byte) [16]byte {
	var out [16]byte
	block.Encrypt(out[:], in[:])
	return out
}

func cmacSubkeys(block cipher.Block) (k1, k2 [16]byte) {
	var zero [16]byte
	l := encryptBlock(block, zero)
	k1 = dbl(l)
	k2 = dbl(k1)
	return k1, k2
}
