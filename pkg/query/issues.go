package query

import (
	"github.com/Masterminds/semver/v3"

	"github.com/revtrust/revtrust/pkg/proof"
	"github.com/revtrust/revtrust/pkg/proofdb"
	"github.com/revtrust/revtrust/pkg/trust"
)

// OpenIssue is one entry of the open-issues-at-a-version map: the worst
// severity seen, and the reviews that report it — whether reported via an
// Issue or an Advisory, both land in Issues (matching the original
// get_open_issues_for_version's own IssueDetails.issues field), so a later
// fixing Advisory can clear either kind of report. Advisories is kept for
// parity with the original's IssueDetails shape; this algorithm never
// populates it.
type OpenIssue struct {
	Severity   proof.Level
	Issues     map[*proof.PackageReview]struct{}
	Advisories map[*proof.PackageReview]struct{}
}

func newOpenIssue(sev proof.Level) *OpenIssue {
	return &OpenIssue{Severity: sev, Issues: map[*proof.PackageReview]struct{}{}, Advisories: map[*proof.PackageReview]struct{}{}}
}

func (e *OpenIssue) raiseSeverity(sev proof.Level) {
	if sev > e.Severity {
		e.Severity = sev
	}
}

// issueCovers reports whether an Issue reported at reportedAt with the
// given range reaches queried: issues extend to higher-or-equal versions
// within range (spec §4.5 "Range semantics").
func issueCovers(reportedAt *semver.Version, rng proof.Range, queried *semver.Version) bool {
	return !queried.LessThan(reportedAt) && rng.SameScope(reportedAt, queried)
}

// advisoryCovers reports whether an Advisory published at publishedAt with
// the given range reaches target: advisories extend to strictly lower
// versions within range.
func advisoryCovers(publishedAt *semver.Version, rng proof.Range, target *semver.Version) bool {
	return target.LessThan(publishedAt) && rng.SameScope(publishedAt, target)
}

// OpenIssues computes the open-issue map for (source, name) at
// queriedVersion, restricted to authors whose effective trust level is at
// least req.TrustLevel (spec §4.5 "Open issues at a queried version").
func OpenIssues(db *proofdb.ProofDB, ts *trust.TrustSet, source, name string, queriedVersion *semver.Version, req Requirements) map[string]*OpenIssue {
	out := make(map[string]*OpenIssue)
	reviews := db.ReviewsFor(source, name)

	// Step 1: issue reports, from sufficiently trusted authors whose
	// reviewed version is at most the queried version.
	for _, pr := range reviews {
		if ts.EffectiveLevel(pr.Common.From.Id) < req.TrustLevel {
			continue
		}
		reviewedAt := pr.Package.Id.Version
		if queriedVersion.LessThan(reviewedAt) {
			continue
		}
		for _, iss := range pr.Issues {
			if !issueCovers(reviewedAt, iss.Range, queriedVersion) {
				continue
			}
			entry, ok := out[iss.ID]
			if !ok {
				entry = newOpenIssue(iss.Severity)
				out[iss.ID] = entry
			}
			entry.raiseSeverity(iss.Severity)
			entry.Issues[pr] = struct{}{}
		}
	}

	// Step 2: advisories, from sufficiently trusted authors over any
	// version of the package. An advisory both reports the issue as open
	// at lower-or-covered versions and clears prior issue reports it fixes.
	// All reports are gathered first (2a) and cleared afterwards (2b), so
	// the outcome does not depend on the order reviews are visited in.
	for _, pr := range reviews {
		if ts.EffectiveLevel(pr.Common.From.Id) < req.TrustLevel {
			continue
		}
		publishedAt := pr.Package.Id.Version
		for _, adv := range pr.Advisories {
			if !advisoryCovers(publishedAt, adv.Range, queriedVersion) {
				continue
			}
			for _, advID := range adv.IDs {
				entry, ok := out[advID]
				if !ok {
					entry = newOpenIssue(adv.Severity)
					out[advID] = entry
				}
				entry.raiseSeverity(adv.Severity)
				entry.Issues[pr] = struct{}{}
			}
		}
	}
	for _, pr := range reviews {
		if ts.EffectiveLevel(pr.Common.From.Id) < req.TrustLevel {
			continue
		}
		publishedAt := pr.Package.Id.Version
		for _, adv := range pr.Advisories {
			for _, advID := range adv.IDs {
				if entry, ok := out[advID]; ok {
					for issuePr := range entry.Issues {
						if advisoryCovers(publishedAt, adv.Range, issuePr.Package.Id.Version) {
							delete(entry.Issues, issuePr)
						}
					}
				}
			}
		}
	}

	// Step 3: drop entries left with nothing open.
	for issID, entry := range out {
		if len(entry.Issues) == 0 && len(entry.Advisories) == 0 {
			delete(out, issID)
		}
	}
	return out
}
