// Package proofdb implements the in-memory proof database: a set of
// indices built by successive AddProof calls, with timestamp-based
// last-writer-wins merge per logical key (spec §4.3). Grounded on the
// teacher's pkg/proofgraph/graph.go (mutex-guarded in-memory structure
// built by sequential Append calls) and pkg/evidence/registry.go (RWMutex-
// guarded maps with a cached, generation-counter-invalidated derivation).
package proofdb

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
)

// TrustEdgeValue is the structured projection of a trust edge: the
// declared level, override list, and the signature of the proof that
// currently owns the edge (trust_details in spec §4.3).
type TrustEdgeValue struct {
	Sig      Signature
	Level    proof.TrustLevel
	Override []proof.OverrideItem
}

type selfURLRecord struct {
	TS           Timestamped[string]
	SelfVerified bool
}

// ProofDB is the single-writer/many-reader in-memory index described by
// spec §4.3 and §5. Build it sequentially via AddProof; after population,
// reads (including trust-set computation and queries) are lock-free except
// for the lazily-recomputed alternatives derivation.
type ProofDB struct {
	logger *zap.Logger

	trustEdges      map[EdgeKey]Timestamped[TrustEdgeValue]
	reverseTrust    map[id.Id]map[id.Id]Timestamped[proof.TrustLevel]
	trustProofBySig map[Signature]*proof.TrustProof

	pkgReviewBySig        map[Signature]*proof.PackageReview
	pkgReviewSigById      map[ReviewKey]Timestamped[Signature]
	pkgReviewSigsByDigest map[string]map[ReviewKey]Timestamped[Signature]
	packageReviews        map[string]map[string]map[string]map[ReviewKey]struct{}
	authorToReviews       map[id.Id]map[PackageVersionKey]struct{}

	urlBySelf   map[id.Id]*selfURLRecord
	urlByOthers map[id.Id]Timestamped[string]

	alternatives map[AuthorPackageKey]Timestamped[Signature]
	flags        map[AuthorPackageKey]Timestamped[proof.Flags]

	insertCounter uint64

	altMu    sync.RWMutex
	altGen   uint64
	altByPkg map[PackageIdKey][]AlternativeEntry
}

// AlternativeEntry is one (author, other package) pair surfaced for a
// queried package id (spec §4.3 "Alternatives derivation").
type AlternativeEntry struct {
	Author id.Id
	Other  proof.PackageId
}

// Option configures a new ProofDB.
type Option func(*ProofDB)

// WithLogger overrides the zap logger used to warn-log dropped proofs
// during AddProof. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(db *ProofDB) { db.logger = l }
}

// New creates an empty ProofDB.
func New(opts ...Option) *ProofDB {
	db := &ProofDB{
		logger:                zap.NewNop(),
		trustEdges:            make(map[EdgeKey]Timestamped[TrustEdgeValue]),
		reverseTrust:          make(map[id.Id]map[id.Id]Timestamped[proof.TrustLevel]),
		trustProofBySig:       make(map[Signature]*proof.TrustProof),
		pkgReviewBySig:        make(map[Signature]*proof.PackageReview),
		pkgReviewSigById:      make(map[ReviewKey]Timestamped[Signature]),
		pkgReviewSigsByDigest: make(map[string]map[ReviewKey]Timestamped[Signature]),
		packageReviews:        make(map[string]map[string]map[string]map[ReviewKey]struct{}),
		authorToReviews:       make(map[id.Id]map[PackageVersionKey]struct{}),
		urlBySelf:             make(map[id.Id]*selfURLRecord),
		urlByOthers:           make(map[id.Id]Timestamped[string]),
		alternatives:          make(map[AuthorPackageKey]Timestamped[Signature]),
		flags:                 make(map[AuthorPackageKey]Timestamped[proof.Flags]),
		altByPkg:              make(map[PackageIdKey][]AlternativeEntry),
	}
	for _, o := range opts {
		o(db)
	}
	return db
}

// AddProof imports one verified proof. selfVerified marks a url claim on
// p's own `from` field as fetched from that very URL (or the local user's
// repository); it has no effect on proofs carrying no url. AddProof never
// returns an error and never panics on well-typed input: a proof kind this
// core doesn't recognize is warn-logged and dropped (spec §7).
func (db *ProofDB) AddProof(p proof.Proof, sig Signature, selfVerified bool) {
	common := p.GetCommon()
	db.recordURLClaim(common.From, common.From.Id, common.Date, selfVerified)

	switch t := p.(type) {
	case *proof.TrustProof:
		db.addTrust(t, sig)
	case *proof.PackageReview:
		db.addPackageReview(t, sig)
	case *proof.CodeReview:
		// CodeReview participates in no core query (spec §3); retained only
		// as a matter of completeness for future callers, not indexed here.
	default:
		db.logger.Warn("proofdb: dropping proof of unrecognized kind", zap.String("kind", string(p.Kind())))
	}
}

func (db *ProofDB) addTrust(t *proof.TrustProof, sig Signature) {
	db.trustProofBySig[sig] = t
	common := t.Common

	for _, target := range t.Ids {
		key := EdgeKey{From: common.From.Id, To: target.Id}
		val := TrustEdgeValue{Sig: sig, Level: t.Trust, Override: t.Override}
		if updateIfNewer(db.trustEdges, key, common.Date, val) {
			if db.reverseTrust[target.Id] == nil {
				db.reverseTrust[target.Id] = make(map[id.Id]Timestamped[proof.TrustLevel])
			}
			updateIfNewer(db.reverseTrust[target.Id], common.From.Id, common.Date, t.Trust)
			db.bumpInsertCounter()
		}
		db.recordURLClaim(target, common.From.Id, common.Date, false)
	}
	for _, o := range t.Override {
		db.recordURLClaim(o.Id, common.From.Id, common.Date, false)
	}
}

func (db *ProofDB) addPackageReview(pr *proof.PackageReview, sig Signature) {
	db.pkgReviewBySig[sig] = pr
	common := pr.Common
	pvKey := packageVersionKey(pr.Package.Id)
	reviewKey := ReviewKey{From: common.From.Id, PackageVersionKey: pvKey}

	if !updateIfNewer(db.pkgReviewSigById, reviewKey, common.Date, sig) {
		return
	}
	db.bumpInsertCounter()

	digestHex := hex.EncodeToString(pr.Package.Digest)
	if db.pkgReviewSigsByDigest[digestHex] == nil {
		db.pkgReviewSigsByDigest[digestHex] = make(map[ReviewKey]Timestamped[Signature])
	}
	updateIfNewer(db.pkgReviewSigsByDigest[digestHex], reviewKey, common.Date, sig)

	bySource, ok := db.packageReviews[pvKey.Source]
	if !ok {
		bySource = make(map[string]map[string]map[ReviewKey]struct{})
		db.packageReviews[pvKey.Source] = bySource
	}
	byName, ok := bySource[pvKey.Name]
	if !ok {
		byName = make(map[string]map[ReviewKey]struct{})
		bySource[pvKey.Name] = byName
	}
	byVersion, ok := byName[pvKey.Version]
	if !ok {
		byVersion = make(map[ReviewKey]struct{})
		byName[pvKey.Version] = byVersion
	}
	byVersion[reviewKey] = struct{}{}

	if db.authorToReviews[common.From.Id] == nil {
		db.authorToReviews[common.From.Id] = make(map[PackageVersionKey]struct{})
	}
	db.authorToReviews[common.From.Id][pvKey] = struct{}{}

	apKey := AuthorPackageKey{From: common.From.Id, PackageIdKey: packageIdKey(pr.Package.Id.Id)}
	updateIfNewer(db.alternatives, apKey, common.Date, sig)
	updateIfNewer(db.flags, apKey, common.Date, pr.Flags)
}

// recordURLClaim updates url_by_id_self or url_by_id_others depending on
// whether target.Id is the identity making the assertion (spec §4.3 "URL
// verification state").
func (db *ProofDB) recordURLClaim(target id.PublicId, assertingFrom id.Id, date time.Time, selfVerified bool) {
	if target.Url == "" {
		return
	}
	if target.Id == assertingFrom {
		rec, ok := db.urlBySelf[target.Id]
		if !ok {
			rec = &selfURLRecord{}
			db.urlBySelf[target.Id] = rec
		}
		if !ok || !date.Before(rec.TS.Date) {
			rec.TS = Timestamped[string]{Date: date, Value: target.Url}
		}
		if selfVerified {
			rec.SelfVerified = true
		}
		return
	}
	updateIfNewer(db.urlByOthers, target.Id, date, target.Url)
}

func (db *ProofDB) bumpInsertCounter() {
	db.altMu.Lock()
	db.insertCounter++
	db.altMu.Unlock()
}

// TrustDetails returns the current winning trust edge from → to, if any.
func (db *ProofDB) TrustDetails(from, to id.Id) (TrustEdgeValue, bool) {
	ts, ok := db.trustEdges[EdgeKey{From: from, To: to}]
	if !ok {
		return TrustEdgeValue{}, false
	}
	return ts.Value, true
}

// OutgoingTrust returns every (to, TrustEdgeValue) pair authored by from.
func (db *ProofDB) OutgoingTrust(from id.Id) map[id.Id]TrustEdgeValue {
	out := make(map[id.Id]TrustEdgeValue)
	for k, ts := range db.trustEdges {
		if k.From == from {
			out[k.To] = ts.Value
		}
	}
	return out
}

// ReverseTrust returns every identity asserting trust toward to, with the
// level and date of their current edge.
func (db *ProofDB) ReverseTrust(to id.Id) map[id.Id]Timestamped[proof.TrustLevel] {
	return db.reverseTrust[to]
}

// TrustProofBySig resolves a trust proof's signature to its content.
func (db *ProofDB) TrustProofBySig(sig Signature) (*proof.TrustProof, bool) {
	p, ok := db.trustProofBySig[sig]
	return p, ok
}

// PackageReviewBySig resolves a package review's signature to its content.
func (db *ProofDB) PackageReviewBySig(sig Signature) (*proof.PackageReview, bool) {
	p, ok := db.pkgReviewBySig[sig]
	return p, ok
}

// CurrentReviewSig returns the signature currently winning for the given
// (author, package version), if any.
func (db *ProofDB) CurrentReviewSig(from id.Id, pv proof.PackageVersionId) (Signature, bool) {
	ts, ok := db.pkgReviewSigById[ReviewKey{From: from, PackageVersionKey: packageVersionKey(pv)}]
	return ts.Value, ok
}

// ReviewsByDigest returns every currently-winning (author, version) review
// whose package digest equals digest.
func (db *ProofDB) ReviewsByDigest(digest []byte) []*proof.PackageReview {
	m := db.pkgReviewSigsByDigest[hex.EncodeToString(digest)]
	out := make([]*proof.PackageReview, 0, len(m))
	for _, ts := range m {
		if pr, ok := db.pkgReviewBySig[ts.Value]; ok {
			out = append(out, pr)
		}
	}
	return out
}

// ReviewsFor returns every currently-winning review for (source, name),
// across all versions.
func (db *ProofDB) ReviewsFor(source, name string) []*proof.PackageReview {
	var out []*proof.PackageReview
	for _, byVersion := range db.packageReviews[source][name] {
		for key := range byVersion {
			if ts, ok := db.pkgReviewSigById[key]; ok {
				if pr, ok := db.pkgReviewBySig[ts.Value]; ok {
					out = append(out, pr)
				}
			}
		}
	}
	return out
}

// AuthorReviews returns every package version the given author has a
// currently-winning review for.
func (db *ProofDB) AuthorReviews(from id.Id) []proof.PackageVersionId {
	out := make([]proof.PackageVersionId, 0, len(db.authorToReviews[from]))
	for k := range db.authorToReviews[from] {
		out = append(out, pvKeyToId(k))
	}
	return out
}

func pvKeyToId(k PackageVersionKey) proof.PackageVersionId {
	v, err := semver.NewVersion(k.Version)
	if err != nil {
		// authorToReviews is only ever populated from already-validated
		// PackageInfo values, so the stored version string always parses.
		panic(fmt.Sprintf("proofdb: corrupt version key %q: %v", k.Version, err))
	}
	return proof.PackageVersionId{Id: proof.PackageId{Source: k.Source, Name: k.Name}, Version: v}
}

// SelfURL returns the url an identity has asserted about itself, and
// whether that assertion is currently marked self-verified (spec §4.3).
func (db *ProofDB) SelfURL(i id.Id) (url string, selfVerified bool, ok bool) {
	rec, found := db.urlBySelf[i]
	if !found {
		return "", false, false
	}
	return rec.TS.Value, rec.SelfVerified, true
}

// OthersURL returns the url third parties have most recently asserted
// about an identity.
func (db *ProofDB) OthersURL(i id.Id) (url string, ok bool) {
	ts, found := db.urlByOthers[i]
	if !found {
		return "", false
	}
	return ts.Value, true
}

// Flags returns the currently-winning flags an author has set for a
// package, if any.
func (db *ProofDB) Flags(from id.Id, pkg proof.PackageId) (proof.Flags, bool) {
	ts, ok := db.flags[AuthorPackageKey{From: from, PackageIdKey: packageIdKey(pkg)}]
	return ts.Value, ok
}
