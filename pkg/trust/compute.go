package trust

import (
	"container/heap"

	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
	"github.com/revtrust/revtrust/pkg/proofdb"
)

// Compute builds the TrustSet reachable from root over db under params.
// It repeatedly runs a best-first pass and restarts it, seeded with every
// identity discovered distrusted so far, until a pass discovers no new
// distrust — resolving spec §4.4's restart rule against its own S3 worked
// example (a distrust discovered while processing a lower-confidence node
// must retroactively exclude everything reached through the newly
// distrusted identity, including nodes visited earlier in the same pass
// at an equal, not just strictly greater, confidence level). Each restart
// strictly grows the seeded distrusted set, and there are finitely many
// ids, so this terminates (spec §4.4 invariant).
func Compute(db *proofdb.ProofDB, root id.Id, params TrustDistanceParams) *TrustSet {
	seed := make(map[id.Id]struct{})
	for {
		ts, newlyDistrusted := runPass(db, root, params, seed)
		if len(newlyDistrusted) == 0 {
			return ts
		}
		for i := range newlyDistrusted {
			seed[i] = struct{}{}
		}
	}
}

func runPass(db *proofdb.ProofDB, root id.Id, params TrustDistanceParams, seed map[id.Id]struct{}) (*TrustSet, map[id.Id]struct{}) {
	ts := &TrustSet{
		Root:                         root,
		Trusted:                      make(map[id.Id]TrustedInfo),
		Distrusted:                   make(map[id.Id]DistrustedInfo),
		TrustIgnoreOverrides:         make(map[proofdb.EdgeKey]*OverrideSources),
		PackageReviewIgnoreOverrides: make(map[PkgOverrideKey]*OverrideSources),
	}
	for i := range seed {
		ts.Distrusted[i] = DistrustedInfo{ReportedBy: map[id.Id]struct{}{}}
	}

	newlyDistrusted := make(map[id.Id]struct{})
	ts.Trusted[root] = TrustedInfo{Distance: 0, EffectiveLevel: proof.High, ReportedBy: map[id.Id]proof.TrustLevel{}}

	pq := &priorityQueue{{Id: root, Level: proof.High, Distance: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(queueItem)
		cur, ok := ts.Trusted[item.Id]
		if !ok || cur.EffectiveLevel != item.Level || cur.Distance != item.Distance {
			continue // stale: superseded by a better entry already
		}
		ts.Log = append(ts.Log, LogEntry{Event: "visit", From: item.Id})

		applyPackageReviewOverrides(db, ts, item.Id, item.Level)

		for candidate, edge := range db.OutgoingTrust(item.Id) {
			processEdge(db, ts, params, item, candidate, edge, newlyDistrusted, pq)
		}
	}

	return ts, newlyDistrusted
}

func applyPackageReviewOverrides(db *proofdb.ProofDB, ts *TrustSet, from id.Id, eff proof.TrustLevel) {
	for _, pv := range db.AuthorReviews(from) {
		sig, ok := db.CurrentReviewSig(from, pv)
		if !ok {
			continue
		}
		pr, ok := db.PackageReviewBySig(sig)
		if !ok {
			continue
		}
		for _, o := range pr.Override {
			key := PkgOverrideKey{Target: o.Id.Id, PackageVersionKey: pvKeyOf(pv)}
			src, ok := ts.PackageReviewIgnoreOverrides[key]
			if !ok {
				src = &OverrideSources{}
				ts.PackageReviewIgnoreOverrides[key] = src
			}
			src.Insert(from, eff)
		}
	}
}

func processEdge(
	db *proofdb.ProofDB,
	ts *TrustSet,
	params TrustDistanceParams,
	from queueItem,
	candidate id.Id,
	edge proofdb.TrustEdgeValue,
	newlyDistrusted map[id.Id]struct{},
	pq *priorityQueue,
) {
	effCandidate := edge.Level
	if from.Level < effCandidate {
		effCandidate = from.Level
	}

	if _, skip := ts.Distrusted[candidate]; skip {
		ts.Log = append(ts.Log, LogEntry{Event: "skip-distrusted", From: from.Id, To: candidate})
		return
	}

	edgeKey := proofdb.EdgeKey{From: from.Id, To: candidate}
	if src, ok := ts.TrustIgnoreOverrides[edgeKey]; ok && src.Max() > from.Level {
		ts.Log = append(ts.Log, LogEntry{Event: "skip-overridden", From: from.Id, To: candidate})
		return
	}

	isDistrust := edge.Level == proof.Distrust
	if isDistrust {
		di := ts.Distrusted[candidate]
		if di.ReportedBy == nil {
			di = DistrustedInfo{ReportedBy: map[id.Id]struct{}{}}
		}
		di.ReportedBy[from.Id] = struct{}{}
		ts.Distrusted[candidate] = di
		newlyDistrusted[candidate] = struct{}{}
		delete(ts.Trusted, candidate)
		ts.Log = append(ts.Log, LogEntry{Event: "distrust", From: from.Id, To: candidate})
	}

	for _, o := range edge.Override {
		overrideKey := proofdb.EdgeKey{From: o.Id.Id, To: candidate}
		src, ok := ts.TrustIgnoreOverrides[overrideKey]
		if !ok {
			src = &OverrideSources{}
			ts.TrustIgnoreOverrides[overrideKey] = src
		}
		src.Insert(from.Id, from.Level)
	}

	if isDistrust {
		return
	}
	if effCandidate == proof.TrustNone {
		return
	}

	// The distance an edge costs to traverse is a property of the edge's
	// own declared level, not of the degraded effective level it yields;
	// resolved against spec §4.4's S1 worked example, whose total distance
	// (1+10+100+1=112) only reproduces when each edge contributes
	// distance_for(its own level).
	step, ok := params.distanceFor(edge.Level)
	if !ok {
		return
	}
	dist := from.Distance + step
	if dist > params.MaxDistance {
		return
	}

	updateTrusted(ts, candidate, dist, effCandidate, from.Id, edge.Level, pq)
}

func updateTrusted(ts *TrustSet, candidate id.Id, dist uint64, eff proof.TrustLevel, reporter id.Id, reportedLevel proof.TrustLevel, pq *priorityQueue) {
	cur, exists := ts.Trusted[candidate]
	if !exists {
		ts.Trusted[candidate] = TrustedInfo{
			Distance:       dist,
			EffectiveLevel: eff,
			ReportedBy:     map[id.Id]proof.TrustLevel{reporter: reportedLevel},
		}
		heap.Push(pq, queueItem{Id: candidate, Level: eff, Distance: dist})
		return
	}

	if cur.ReportedBy == nil {
		cur.ReportedBy = map[id.Id]proof.TrustLevel{}
	}
	cur.ReportedBy[reporter] = reportedLevel

	improved := eff > cur.EffectiveLevel || (eff == cur.EffectiveLevel && dist < cur.Distance)
	if improved {
		cur.Distance = dist
		cur.EffectiveLevel = eff
	}
	ts.Trusted[candidate] = cur
	if improved {
		heap.Push(pq, queueItem{Id: candidate, Level: cur.EffectiveLevel, Distance: cur.Distance})
	}
}

func pvKeyOf(pv proof.PackageVersionId) proofdb.PackageVersionKey {
	return proofdb.PackageVersionKey{
		PackageIdKey: proofdb.PackageIdKey{Source: pv.Id.Source, Name: pv.Id.Name},
		Version:      pv.Version.String(),
	}
}
