// Package id implements the identity primitive: an Ed25519 public key
// acting as an opaque identity handle, its signing counterpart, and a
// passphrase-locked on-disk keystore.
package id

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/revtrust/revtrust/pkg/crypto"
)

// Id is the opaque 32-byte value that is an identity's Ed25519 public key.
// Equality and ordering are by raw bytes.
type Id [32]byte

// String renders the id as URL-safe, unpadded base64 — the display form
// used throughout logs and proof bodies.
func (i Id) String() string {
	return base64.RawURLEncoding.EncodeToString(i[:])
}

// ParseId parses the display form produced by String.
func ParseId(s string) (Id, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Id{}, fmt.Errorf("id: invalid base64 id %q: %w", s, err)
	}
	if len(b) != 32 {
		return Id{}, fmt.Errorf("id: id must decode to 32 bytes, got %d", len(b))
	}
	var out Id
	copy(out[:], b)
	return out, nil
}

// Bytes returns the raw 32 public-key bytes.
func (i Id) Bytes() []byte { return i[:] }

// Less orders ids by their raw bytes, for deterministic tie-breaking in the
// trust-set traversal's priority ordering.
func (i Id) Less(o Id) bool {
	for k := range i {
		if i[k] != o[k] {
			return i[k] < o[k]
		}
	}
	return false
}

// PublicKey returns the id as an ed25519.PublicKey.
func (i Id) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(i[:])
}

// FromPublicKey wraps an Ed25519 public key as an Id.
func FromPublicKey(pub ed25519.PublicKey) (Id, error) {
	if len(pub) != ed25519.PublicKeySize {
		return Id{}, fmt.Errorf("id: public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	var out Id
	copy(out[:], pub)
	return out, nil
}

// PublicId is a PublicId carries no key material: just the handle and an
// optional self-declared location of the identity's proof repository.
type PublicId struct {
	Id  Id
	Url string
}

// UnlockedId is able to sign: it carries the secret key alongside the
// public identity.
type UnlockedId struct {
	PublicId
	SecretKey ed25519.PrivateKey
}

// GenerateUnlockedId creates a fresh identity with a newly generated
// Ed25519 keypair.
func GenerateUnlockedId(url string) (*UnlockedId, error) {
	pub, priv, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	pid, err := FromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &UnlockedId{
		PublicId:  PublicId{Id: pid, Url: url},
		SecretKey: priv,
	}, nil
}

// Sign signs data with the identity's secret key.
func (u *UnlockedId) Sign(data []byte) []byte {
	return ed25519.Sign(u.SecretKey, data)
}
