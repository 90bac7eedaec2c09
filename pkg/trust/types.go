// Package trust computes a TrustSet: the graded, distance-limited,
// distrust- and override-aware trust graph reachable from one root
// identity (spec §4.4). Grounded on the teacher's pkg/proofgraph/graph.go
// (in-memory DAG built by sequential traversal) generalized from a
// parent-chain walk to a graded best-first search, in the style of the
// teacher's pkg/kernel scheduler's priority-ordered dispatch loop.
package trust

import (
	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
	"github.com/revtrust/revtrust/pkg/proofdb"
)

// TrustDistanceParams configures how far trust propagates at each level
// (spec §4.4). None and Distrust never traverse regardless of these
// values.
type TrustDistanceParams struct {
	MaxDistance         uint64
	HighTrustDistance   uint64
	MediumTrustDistance uint64
	LowTrustDistance    uint64
	// NoneTrustDistance and DistrustDistance are carried for parity with
	// the spec's parameter struct but never consulted: None and Distrust
	// edges do not traverse (spec §4.4).
	NoneTrustDistance uint64
	DistrustDistance  uint64
}

// distanceFor returns the distance cost of traversing an edge declared at
// level, and whether that level traverses at all.
func (p TrustDistanceParams) distanceFor(level proof.TrustLevel) (uint64, bool) {
	switch level {
	case proof.High:
		return p.HighTrustDistance, true
	case proof.Medium:
		return p.MediumTrustDistance, true
	case proof.Low:
		return p.LowTrustDistance, true
	default:
		return 0, false
	}
}

// TrustedInfo is the record kept per reachable, trusted identity.
type TrustedInfo struct {
	Distance       uint64
	EffectiveLevel proof.TrustLevel
	// ReportedBy maps each referer that proposed an edge to this identity
	// to the trust level that referer declared (spec's reported_by; per
	// spec §9's open-question resolution, only edges that were actually
	// traversed populate this — None-level edges never do, since they are
	// never traversed).
	ReportedBy map[id.Id]proof.TrustLevel
}

// DistrustedInfo is the record kept per identity reached via a Distrust
// edge.
type DistrustedInfo struct {
	ReportedBy map[id.Id]struct{}
}

// OverrideSources tracks, for an overridden edge, every issuer that
// requested the override and the effective level each issuer held when
// issuing it — the O(1) dominance check is Max() (spec §9).
type OverrideSources struct {
	bySource map[id.Id]proof.TrustLevel
	max      proof.TrustLevel
}

// Insert records that issuer requested this override while holding
// effective level eff, raising the running max if eff exceeds it.
func (o *OverrideSources) Insert(issuer id.Id, eff proof.TrustLevel) {
	if o.bySource == nil {
		o.bySource = make(map[id.Id]proof.TrustLevel)
	}
	o.bySource[issuer] = eff
	if eff > o.max {
		o.max = eff
	}
}

// Max returns the highest effective level any issuer held when requesting
// this override, or the zero TrustLevel (Distrust) if none have.
func (o OverrideSources) Max() proof.TrustLevel {
	return o.max
}

// Sources returns the issuer → effective-level map backing this override.
func (o OverrideSources) Sources() map[id.Id]proof.TrustLevel {
	return o.bySource
}

// PkgOverrideKey identifies one (overridden-identity, package-version)
// pair whose review-level trust edges should be ignored (spec §4.4 step
// 2: package_review_ignore_overrides).
type PkgOverrideKey struct {
	Target id.Id
	proofdb.PackageVersionKey
}

// LogEntry records one traversal decision for explainability (spec §4.4
// "a traversal log of nodes visited and edges considered").
type LogEntry struct {
	Event string // "visit", "skip-distrusted", "skip-overridden", "distrust"
	From  id.Id
	To    id.Id
	Note  string
}

// TrustSet is the output of Compute: the set of identities reachable from
// a root at graded confidence, the identities known to be distrusted, and
// the override bookkeeping used to reach that fixpoint.
type TrustSet struct {
	Root       id.Id
	Trusted    map[id.Id]TrustedInfo
	Distrusted map[id.Id]DistrustedInfo

	TrustIgnoreOverrides         map[proofdb.EdgeKey]*OverrideSources
	PackageReviewIgnoreOverrides map[PkgOverrideKey]*OverrideSources

	Log []LogEntry
}

// EffectiveLevel returns id's effective trust level: High for the root,
// the computed grade for any other trusted id, TrustNone otherwise
// (including for distrusted ids, matching spec §4.5's use of
// effective_level as a floor check).
func (ts *TrustSet) EffectiveLevel(i id.Id) proof.TrustLevel {
	if i == ts.Root {
		return proof.High
	}
	if info, ok := ts.Trusted[i]; ok {
		return info.EffectiveLevel
	}
	return proof.TrustNone
}

// Distance returns id's distance from the root, or false if id is not in
// the trusted set.
func (ts *TrustSet) Distance(i id.Id) (uint64, bool) {
	if i == ts.Root {
		return 0, true
	}
	info, ok := ts.Trusted[i]
	return info.Distance, ok
}

// IsDistrusted reports whether id was reached via a Distrust edge.
func (ts *TrustSet) IsDistrusted(i id.Id) bool {
	_, ok := ts.Distrusted[i]
	return ok
}
