package crypto

import (
	"fmt"
	"runtime"

	"golang.org/x/crypto/argon2"
)

// Argon2Params mirrors the passphrase-config block stored alongside a
// locked identity on disk.
type Argon2Params struct {
	Variant    string // "argon2id"
	Version    int    // schema marker for the passphrase config block, not the argon2 lib version
	Iterations uint32
	MemorySize uint32 // KiB
	Lanes      uint32
	Salt       []byte
	KeyLength  uint32
}

// DefaultArgon2Params returns the parameters used for a real, passphrase
// protected identity.
func DefaultArgon2Params(salt []byte) Argon2Params {
	return Argon2Params{
		Variant:    "argon2id",
		Version:    19,
		Iterations: 192,
		MemorySize: 4096,
		Lanes:      uint32(max(1, runtime.NumCPU())),
		Salt:       salt,
		KeyLength:  64,
	}
}

// WeakArgon2Params returns the sentinel "weak" profile used only when a
// user intentionally sets an empty passphrase. It must never be the
// default, and callers must not silently fall back to it.
func WeakArgon2Params(salt []byte) Argon2Params {
	return Argon2Params{
		Variant:    "argon2id",
		Version:    19,
		Iterations: 1,
		MemorySize: 16,
		Lanes:      1,
		Salt:       salt,
		KeyLength:  64,
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// DeriveKey derives a key-encryption key from a passphrase using the given
// Argon2 parameters. Only the "argon2id" variant and schema version 19 are
// understood; anything else is an unsupported-KDF error.
func DeriveKey(passphrase string, p Argon2Params) ([]byte, error) {
	if p.Variant != "argon2id" {
		return nil, fmt.Errorf("crypto: unsupported argon2 variant %q", p.Variant)
	}
	if p.Version != 19 {
		return nil, fmt.Errorf("crypto: unsupported passphrase config version %d", p.Version)
	}
	if p.KeyLength == 0 {
		p.KeyLength = 64
	}
	return argon2.IDKey([]byte(passphrase), p.Salt, p.Iterations, p.MemorySize, uint8(p.Lanes), p.KeyLength), nil
}
