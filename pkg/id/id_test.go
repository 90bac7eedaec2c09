package id

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdStringRoundTrip(t *testing.T) {
	u, err := GenerateUnlockedId("")
	require.NoError(t, err)

	s := u.Id.String()
	back, err := ParseId(s)
	require.NoError(t, err)
	assert.Equal(t, u.Id, back)
}

func TestParseIdRejectsBadLength(t *testing.T) {
	_, err := ParseId("AAAA")
	assert.Error(t, err)
}

func TestIdLessIsAntisymmetric(t *testing.T) {
	a := Id{0x01}
	b := Id{0x02}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
}

func TestLockUnlockRoundTrip(t *testing.T) {
	u, err := GenerateUnlockedId("https://example.com/proofs")
	require.NoError(t, err)

	locked, err := Lock(u, "s3cr3t passphrase")
	require.NoError(t, err)

	got, err := Unlock(locked, "s3cr3t passphrase")
	require.NoError(t, err)
	assert.Equal(t, u.Id, got.Id)
	assert.Equal(t, u.Url, got.Url)
	assert.Equal(t, u.SecretKey, got.SecretKey)
}

func TestUnlockWrongPassphraseFails(t *testing.T) {
	u, err := GenerateUnlockedId("")
	require.NoError(t, err)

	locked, err := Lock(u, "right")
	require.NoError(t, err)

	_, err = Unlock(locked, "wrong")
	assert.ErrorIs(t, err, ErrIncorrectPassphrase)
}

func TestUnlockDetectsTamperedPublicKey(t *testing.T) {
	u, err := GenerateUnlockedId("")
	require.NoError(t, err)

	locked, err := Lock(u, "pw")
	require.NoError(t, err)

	locked.PublicKey[0] ^= 0xff

	_, err = Unlock(locked, "pw")
	assert.Error(t, err)
}

func TestLockWithEmptyPassphraseUsesWeakProfile(t *testing.T) {
	u, err := GenerateUnlockedId("")
	require.NoError(t, err)

	locked, err := Lock(u, "")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), locked.Pass.Iterations)
	assert.Equal(t, uint32(16), locked.Pass.MemorySize)

	got, err := Unlock(locked, "")
	require.NoError(t, err)
	assert.Equal(t, u.Id, got.Id)
}

func TestLockedIdYAMLRoundTrip(t *testing.T) {
	u, err := GenerateUnlockedId("git+https://example.com/review")
	require.NoError(t, err)
	locked, err := Lock(u, "passphrase")
	require.NoError(t, err)

	data, err := MarshalYAMLFile(locked)
	require.NoError(t, err)

	back, err := UnmarshalYAMLFile(data)
	require.NoError(t, err)
	assert.Equal(t, locked.PublicKey, back.PublicKey)
	assert.Equal(t, locked.SealedSecretKey, back.SealedSecretKey)
	assert.Equal(t, locked.Pass, back.Pass)

	unlocked, err := Unlock(back, "passphrase")
	require.NoError(t, err)
	assert.Equal(t, u.Id, unlocked.Id)
}

func TestSaveLoadLockedIdFile(t *testing.T) {
	u, err := GenerateUnlockedId("")
	require.NoError(t, err)
	locked, err := Lock(u, "pw")
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "id.yaml")
	require.NoError(t, SaveLockedId(path, locked))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	back, err := LoadLockedId(path)
	require.NoError(t, err)
	unlocked, err := Unlock(back, "pw")
	require.NoError(t, err)
	assert.Equal(t, u.Id, unlocked.Id)
}
