package id

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/revtrust/revtrust/pkg/crypto"
)

// Errors returned by Lock/Unlock. ErrIncorrectPassphrase and
// ErrTamperedIdentity are distinguished per spec §4.2/§7: the former means
// decryption itself failed (wrong passphrase or corrupted ciphertext), the
// latter means decryption succeeded but the recovered key doesn't match the
// identity it claims to be.
var (
	ErrIncorrectPassphrase = errors.New("id: incorrect passphrase")
	ErrTamperedIdentity    = errors.New("id: derived public key does not match stored public key")
)

// PassphraseConfig is the on-disk Argon2id parameter block.
type PassphraseConfig struct {
	Version    int    `yaml:"version"`
	Variant    string `yaml:"variant"`
	Iterations uint32 `yaml:"iterations"`
	MemorySize uint32 `yaml:"memory-size"`
	Lanes      uint32 `yaml:"lanes"`
	Salt       []byte `yaml:"salt"`
}

func (p PassphraseConfig) toArgon2Params() crypto.Argon2Params {
	return crypto.Argon2Params{
		Variant:    p.Variant,
		Version:    p.Version,
		Iterations: p.Iterations,
		MemorySize: p.MemorySize,
		Lanes:      p.Lanes,
		Salt:       p.Salt,
		KeyLength:  64,
	}
}

// LockedId is the on-disk form of an identity: a passphrase-sealed secret
// key plus the metadata needed to unseal it.
type LockedId struct {
	Version         int              `yaml:"version"`
	Url             string           `yaml:"url,omitempty"`
	PublicKey       []byte           `yaml:"public-key"`
	SealedSecretKey []byte           `yaml:"sealed-secret-key"`
	SealNonce       []byte           `yaml:"seal-nonce"`
	Pass            PassphraseConfig `yaml:"pass"`
}

// Lock seals an UnlockedId under a passphrase. Passing an empty passphrase
// is treated as an intentional choice and uses the weak sentinel Argon2
// profile; any non-empty passphrase uses the default, expensive profile.
func Lock(u *UnlockedId, passphrase string) (*LockedId, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("id: generating salt: %w", err)
	}

	var params crypto.Argon2Params
	if passphrase == "" {
		params = crypto.WeakArgon2Params(salt)
	} else {
		params = crypto.DefaultArgon2Params(salt)
	}

	kek, err := crypto.DeriveKey(passphrase, params)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("id: generating seal nonce: %w", err)
	}

	sealed, err := crypto.SealSIV(kek, u.SecretKey, nonce)
	if err != nil {
		return nil, fmt.Errorf("id: sealing secret key: %w", err)
	}

	return &LockedId{
		Version:         -1,
		Url:             u.Url,
		PublicKey:       append([]byte(nil), u.Id.Bytes()...),
		SealedSecretKey: sealed,
		SealNonce:       nonce,
		Pass: PassphraseConfig{
			Version:    params.Version,
			Variant:    params.Variant,
			Iterations: params.Iterations,
			MemorySize: params.MemorySize,
			Lanes:      params.Lanes,
			Salt:       params.Salt,
		},
	}, nil
}

// Unlock reveals the UnlockedId given the correct passphrase. After
// decryption it re-derives the public key from the recovered secret key and
// rejects the identity if it doesn't match the stored public key
// (ErrTamperedIdentity) — the invariant from spec §3.
func Unlock(l *LockedId, passphrase string) (*UnlockedId, error) {
	params := l.Pass.toArgon2Params()
	kek, err := crypto.DeriveKey(passphrase, params)
	if err != nil {
		return nil, err
	}

	secret, err := crypto.OpenSIV(kek, l.SealedSecretKey, l.SealNonce)
	if err != nil {
		return nil, ErrIncorrectPassphrase
	}
	if len(secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("id: recovered secret key has wrong size %d", len(secret))
	}
	priv := ed25519.PrivateKey(secret)

	derivedPub := priv.Public().(ed25519.PublicKey)
	if len(l.PublicKey) != ed25519.PublicKeySize || string(derivedPub) != string(l.PublicKey) {
		return nil, ErrTamperedIdentity
	}

	pid, err := FromPublicKey(derivedPub)
	if err != nil {
		return nil, err
	}

	return &UnlockedId{
		PublicId:  PublicId{Id: pid, Url: l.Url},
		SecretKey: priv,
	}, nil
}

// PublicKeyBase64 is a convenience accessor mirroring the on-disk field's
// textual form, for callers rendering a LockedId outside of YAML encoding.
func (l *LockedId) PublicKeyBase64() string {
	return base64.StdEncoding.EncodeToString(l.PublicKey)
}
