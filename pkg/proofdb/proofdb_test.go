package proofdb_test

import (
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
	"github.com/revtrust/revtrust/pkg/proofdb"
)

func newId(t *testing.T, b byte) id.PublicId {
	t.Helper()
	var raw id.Id
	for i := range raw {
		raw[i] = b
	}
	return id.PublicId{Id: raw}
}

func sig(b byte) proofdb.Signature {
	var s proofdb.Signature
	for i := range s {
		s[i] = b
	}
	return s
}

func pkgReview(t *testing.T, from id.PublicId, date time.Time, version, comment string) *proof.PackageReview {
	t.Helper()
	v, err := semver.NewVersion(version)
	require.NoError(t, err)
	return &proof.PackageReview{
		Common: proof.Common{Kind: proof.KindPackageReview, Version: proof.SchemaVersion, Date: date, From: from},
		Package: proof.PackageInfo{
			Id:         proof.PackageVersionId{Id: proof.PackageId{Source: "crates.io", Name: "example"}, Version: v},
			Digest:     []byte{1, 2, 3},
			DigestType: proof.DefaultDigestType,
		},
		Review:  proof.ReviewRating{Thoroughness: proof.LevelMedium, Understanding: proof.LevelHigh, Rating: proof.Positive},
		Comment: comment,
	}
}

func TestAddProofLastWriterWinsOnPackageReview(t *testing.T) {
	from := newId(t, 1)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	a := pkgReview(t, from, t0, "1.2.3", "a")
	b := pkgReview(t, from, t1, "1.2.3", "b")

	// Import in both orders; the result must be the same (spec §8 property 5).
	db1 := proofdb.New()
	db1.AddProof(a, sig(1), false)
	db1.AddProof(b, sig(2), false)

	db2 := proofdb.New()
	db2.AddProof(b, sig(2), false)
	db2.AddProof(a, sig(1), false)

	for _, d := range []*proofdb.ProofDB{db1, db2} {
		reviews := d.ReviewsFor("crates.io", "example")
		require.Len(t, reviews, 1)
		assert.Equal(t, "b", reviews[0].Comment)
	}
}

func TestAddProofTiesUpdate(t *testing.T) {
	db := proofdb.New()
	from := newId(t, 1)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := pkgReview(t, from, t0, "1.0.0", "a")
	b := pkgReview(t, from, t0, "1.0.0", "b")

	db.AddProof(a, sig(1), false)
	db.AddProof(b, sig(2), false)

	reviews := db.ReviewsFor("crates.io", "example")
	require.Len(t, reviews, 1)
	assert.Equal(t, "b", reviews[0].Comment, "ties must update, per spec §4.3")
}

func TestAddProofIgnoresOlderWrite(t *testing.T) {
	db := proofdb.New()
	from := newId(t, 1)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(-time.Hour)

	db.AddProof(pkgReview(t, from, t0, "1.0.0", "newer"), sig(1), false)
	db.AddProof(pkgReview(t, from, t1, "1.0.0", "older"), sig(2), false)

	reviews := db.ReviewsFor("crates.io", "example")
	require.Len(t, reviews, 1)
	assert.Equal(t, "newer", reviews[0].Comment)
}

func TestTrustEdgeLastWriterWins(t *testing.T) {
	db := proofdb.New()
	a := newId(t, 1)
	c := newId(t, 2)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	trust1 := &proof.TrustProof{
		Common: proof.Common{Kind: proof.KindTrust, Date: t0, From: a},
		Ids:    []id.PublicId{c},
		Trust:  proof.Low,
	}
	trust2 := &proof.TrustProof{
		Common: proof.Common{Kind: proof.KindTrust, Date: t0.Add(time.Minute), From: a},
		Ids:    []id.PublicId{c},
		Trust:  proof.High,
	}
	db.AddProof(trust1, sig(1), false)
	db.AddProof(trust2, sig(2), false)

	edge, ok := db.TrustDetails(a.Id, c.Id)
	require.True(t, ok)
	assert.Equal(t, proof.High, edge.Level)

	rev := db.ReverseTrust(c.Id)
	require.Contains(t, rev, a.Id)
	assert.Equal(t, proof.High, rev[a.Id].Value)
}

func TestGetPkgAlternativesIsSymmetric(t *testing.T) {
	db := proofdb.New()
	from := newId(t, 1)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	review := pkgReview(t, from, t0, "1.0.0", "")
	review.Alternatives = []proof.PackageId{{Source: "crates.io", Name: "other"}}
	db.AddProof(review, sig(1), false)

	forExample := db.GetPkgAlternatives(proofdb.PackageIdKey{Source: "crates.io", Name: "example"})
	require.Len(t, forExample, 1)
	assert.Equal(t, "other", forExample[0].Other.Name)

	forOther := db.GetPkgAlternatives(proofdb.PackageIdKey{Source: "crates.io", Name: "other"})
	require.Len(t, forOther, 1)
	assert.Equal(t, "example", forOther[0].Other.Name)
}

func TestGetPkgAlternativesCacheInvalidatesOnNewProof(t *testing.T) {
	db := proofdb.New()
	from := newId(t, 1)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	review := pkgReview(t, from, t0, "1.0.0", "")
	review.Alternatives = []proof.PackageId{{Source: "crates.io", Name: "other"}}
	db.AddProof(review, sig(1), false)

	first := db.GetPkgAlternatives(proofdb.PackageIdKey{Source: "crates.io", Name: "example"})
	require.Len(t, first, 1)

	review2 := pkgReview(t, from, t0.Add(time.Hour), "2.0.0", "")
	review2.Alternatives = []proof.PackageId{{Source: "crates.io", Name: "third"}}
	db.AddProof(review2, sig(2), false)

	second := db.GetPkgAlternatives(proofdb.PackageIdKey{Source: "crates.io", Name: "example"})
	require.Len(t, second, 1)
	assert.Equal(t, "third", second[0].Other.Name)
}

func TestSelfURLVerificationIsStickyTrue(t *testing.T) {
	db := proofdb.New()
	from := newId(t, 1)
	from.Url = "https://example.com/proofs"
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	db.AddProof(pkgReview(t, from, t0, "1.0.0", ""), sig(1), true)
	url, verified, ok := db.SelfURL(from.Id)
	require.True(t, ok)
	assert.True(t, verified)
	assert.Equal(t, from.Url, url)

	// A later, non-self-verified assertion must not clear the sticky flag.
	from2 := from
	db.AddProof(pkgReview(t, from2, t0.Add(time.Hour), "2.0.0", ""), sig(2), false)
	_, verified, ok = db.SelfURL(from.Id)
	require.True(t, ok)
	assert.True(t, verified, "self-verified must stay sticky-true")
}

func TestOthersURLClaim(t *testing.T) {
	db := proofdb.New()
	a := newId(t, 1)
	b := newId(t, 2)
	b.Url = "https://b.example.com/proofs"
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	trust := &proof.TrustProof{
		Common: proof.Common{Kind: proof.KindTrust, Date: t0, From: a},
		Ids:    []id.PublicId{b},
		Trust:  proof.Medium,
	}
	db.AddProof(trust, sig(1), false)

	url, ok := db.OthersURL(b.Id)
	require.True(t, ok)
	assert.Equal(t, b.Url, url)
}
