package crypto

import "errors"

// ErrSIVAuthFailed is returned by OpenSIV when the synthetic IV recomputed
// from the decrypted plaintext does not match the stored tag — either the
// key is wrong (incorrect passphrase) or the ciphertext was tampered with.
var ErrSIVAuthFailed = errors.New("crypto: AES-SIV authentication failed")
