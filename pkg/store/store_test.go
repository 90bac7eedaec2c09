package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revtrust/revtrust/pkg/envelope"
	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
	"github.com/revtrust/revtrust/pkg/store"
)

func TestSanitizeIsDeterministicAndFilesystemSafe(t *testing.T) {
	a := store.Sanitize("https://github.com/example/proofs")
	b := store.Sanitize("https://github.com/example/proofs")
	assert.Equal(t, a, b)
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, ":")
}

func TestPathLayout(t *testing.T) {
	signer, err := id.GenerateUnlockedId("https://example.com/proofs")
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	path := store.Path("/root", signer.PublicId, proof.KindPackageReview, at)

	want := filepath.Join("/root", store.Sanitize("https://example.com/proofs"), "package-review", "2026-03.crev")
	assert.Equal(t, want, path)
}

func TestAppendAndWalkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	signer, err := id.GenerateUnlockedId("")
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tp := &proof.TrustProof{
		Common: proof.Common{Kind: proof.KindTrust, Version: proof.SchemaVersion, Date: at, From: signer.PublicId},
		Ids:    []id.PublicId{signer.PublicId},
		Trust:  proof.High,
	}
	env, err := envelope.Build(tp, signer)
	require.NoError(t, err)
	require.NoError(t, store.Append(dir, signer.PublicId, at, env))

	// A second proof the same month appends to the same file.
	tp2 := &proof.TrustProof{
		Common: proof.Common{Kind: proof.KindTrust, Version: proof.SchemaVersion, Date: at.Add(time.Hour), From: signer.PublicId},
		Ids:    []id.PublicId{signer.PublicId},
		Trust:  proof.Medium,
	}
	env2, err := envelope.Build(tp2, signer)
	require.NoError(t, err)
	require.NoError(t, store.Append(dir, signer.PublicId, at.Add(time.Hour), env2))

	files, err := store.Walk(dir, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Len(t, files[0].Envelopes, 2)

	parsed, err := envelope.Verify(files[0].Envelopes[0], signer.PublicId)
	require.NoError(t, err)
	assert.Equal(t, proof.KindTrust, parsed.Kind())
}
