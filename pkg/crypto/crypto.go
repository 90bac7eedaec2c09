// Package crypto provides the cryptographic primitives the trust system is
// built on: Ed25519 signing, Blake2b-256 content digests, Argon2id key
// derivation, and an AES-SIV deterministic AEAD used to seal secret keys at
// rest.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Sign signs data with an Ed25519 private key.
func Sign(priv ed25519.PrivateKey, data []byte) []byte {
	return ed25519.Sign(priv, data)
}

// Verify reports whether sig is a valid Ed25519 signature over data by pub.
func Verify(pub ed25519.PublicKey, data, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, data, sig)
}

// GenerateKeyPair creates a fresh Ed25519 keypair.
func GenerateKeyPair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: key generation failed: %w", err)
	}
	return pub, priv, nil
}

// Digest is a Blake2b-256 content digest, the canonical content-address hash
// for proof bodies.
type Digest [32]byte

// Blake2b256 computes the canonical content-address digest of data.
func Blake2b256(data []byte) Digest {
	// blake2b.New256 only errors on an invalid key length, and we pass no key.
	h, _ := blake2b.New256(nil)
	h.Write(data)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Equal reports whether two digests are identical.
func (d Digest) Equal(o Digest) bool { return d == o }
