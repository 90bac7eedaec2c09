package proofdb

import "github.com/revtrust/revtrust/pkg/proof"

// GetPkgAlternatives returns every (author, other package) pair such that
// some author's most recent review for either pkgId or the other package
// lists the other in its alternatives (spec §4.3, symmetric relation). The
// derivation is lazily recomputed behind a read-write lock, guarded by the
// monotonically increasing insertion counter bumped on every winning write.
func (db *ProofDB) GetPkgAlternatives(pkgId PackageIdKey) []AlternativeEntry {
	db.altMu.RLock()
	if db.altGen == db.insertCounter {
		out := db.altByPkg[pkgId]
		db.altMu.RUnlock()
		return out
	}
	db.altMu.RUnlock()

	db.altMu.Lock()
	defer db.altMu.Unlock()
	if db.altGen != db.insertCounter {
		db.recomputeAlternativesLocked()
	}
	return db.altByPkg[pkgId]
}

func (db *ProofDB) recomputeAlternativesLocked() {
	byPkg := make(map[PackageIdKey][]AlternativeEntry)
	for apKey, ts := range db.alternatives {
		pr, ok := db.pkgReviewBySig[ts.Value]
		if !ok {
			continue
		}
		for _, alt := range pr.Alternatives {
			altKey := packageIdKey(alt)
			byPkg[apKey.PackageIdKey] = append(byPkg[apKey.PackageIdKey], AlternativeEntry{Author: apKey.From, Other: alt})
			byPkg[altKey] = append(byPkg[altKey], AlternativeEntry{
				Author: apKey.From,
				Other:  proof.PackageId{Source: apKey.Source, Name: apKey.Name},
			})
		}
	}
	db.altByPkg = byPkg
	db.altGen = db.insertCounter
}
