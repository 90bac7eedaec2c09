// Package query implements the verification queries that sit on top of a
// populated ProofDB and a computed TrustSet (spec §4.5): package digest
// verification, latest-trusted-version, open-issue aggregation, and
// alternatives/flags passthrough. Grounded on the teacher's
// pkg/trust/compliance.go (partition-by-author, classify-and-count evidence
// against a requirement) and pkg/evidence/registry.go (redundancy-threshold
// classification over a indexed evidence set), generalized from compliance
// evidence scoring to reviewer-redundancy scoring.
package query

import (
	"github.com/Masterminds/semver/v3"

	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
	"github.com/revtrust/revtrust/pkg/proofdb"
	"github.com/revtrust/revtrust/pkg/trust"
)

// Requirements gates what a query considers acceptable review evidence
// (spec §4.5's requirements tuple).
type Requirements struct {
	Thoroughness  proof.Level
	Understanding proof.Level
	TrustLevel    proof.TrustLevel
	Redundancy    int
}

// Verdict is the three-way outcome of verify_package_digest.
type Verdict int

const (
	Insufficient Verdict = iota
	Verified
	Negative
)

func (v Verdict) String() string {
	switch v {
	case Insufficient:
		return "insufficient"
	case Verified:
		return "verified"
	case Negative:
		return "negative"
	default:
		return "unknown"
	}
}

// VerifyPackageDigest classifies the evidence for one exact digest against
// req, under the trust grades in ts (spec §4.5 "Package digest
// verification").
func VerifyPackageDigest(db *proofdb.ProofDB, ts *trust.TrustSet, digest []byte, req Requirements) Verdict {
	latest := latestPerAuthor(db.ReviewsByDigest(digest))

	positive := 0
	for author, pr := range latest {
		if pr.Review.Rating <= proof.Negative {
			return Negative
		}
		if pr.Review.Rating >= proof.Neutral &&
			pr.Review.Thoroughness >= req.Thoroughness &&
			pr.Review.Understanding >= req.Understanding &&
			ts.EffectiveLevel(author) >= req.TrustLevel {
			positive++
		}
	}
	if positive >= req.Redundancy {
		return Verified
	}
	return Insufficient
}

// latestPerAuthor keeps, for each review author, the review with the
// greatest Date (spec §4.5 step 2: "for each author's latest such review").
func latestPerAuthor(reviews []*proof.PackageReview) map[id.Id]*proof.PackageReview {
	out := make(map[id.Id]*proof.PackageReview, len(reviews))
	for _, pr := range reviews {
		author := pr.Common.From.Id
		if cur, ok := out[author]; !ok || pr.Common.Date.After(cur.Common.Date) {
			out[author] = pr
		}
	}
	return out
}

// LatestTrustedVersion returns the maximum SemVer version among all
// reviews for (source, name) whose digest verifies as Verified under req,
// or false if none does.
func LatestTrustedVersion(db *proofdb.ProofDB, ts *trust.TrustSet, source, name string, req Requirements) (*semver.Version, bool) {
	digestsByVersion := make(map[string][][]byte)
	versionByKey := make(map[string]*semver.Version)
	for _, pr := range db.ReviewsFor(source, name) {
		key := pr.Package.Id.Version.String()
		versionByKey[key] = pr.Package.Id.Version
		digestsByVersion[key] = append(digestsByVersion[key], pr.Package.Digest)
	}

	var best *semver.Version
	for key, digests := range digestsByVersion {
		verified := false
		for _, d := range digests {
			if VerifyPackageDigest(db, ts, d, req) == Verified {
				verified = true
				break
			}
		}
		if !verified {
			continue
		}
		v := versionByKey[key]
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best, best != nil
}

// Alternatives returns every (author, other package) pair surfaced for
// pkg (spec §4.3's alternatives derivation, exposed at the query layer).
func Alternatives(db *proofdb.ProofDB, source, name string) []proofdb.AlternativeEntry {
	return db.GetPkgAlternatives(proofdb.PackageIdKey{Source: source, Name: name})
}

// Flags returns the flags a given author has currently set for a package.
func Flags(db *proofdb.ProofDB, author id.Id, source, name string) (proof.Flags, bool) {
	return db.Flags(author, proof.PackageId{Source: source, Name: name})
}
