package trust_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
	"github.com/revtrust/revtrust/pkg/proofdb"
	"github.com/revtrust/revtrust/pkg/trust"
)

func personId(b byte) id.PublicId {
	var raw id.Id
	for i := range raw {
		raw[i] = b
	}
	return id.PublicId{Id: raw}
}

var (
	personA = personId(1)
	personB = personId(2)
	personC = personId(3)
	personD = personId(4)
	personE = personId(5)
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func addTrustEdge(t *testing.T, db *proofdb.ProofDB, sigByte byte, from id.PublicId, level proof.TrustLevel, at time.Time, overrides []proof.OverrideItem, to ...id.PublicId) {
	t.Helper()
	var s proofdb.Signature
	s[0] = sigByte
	db.AddProof(&proof.TrustProof{
		Common:   proof.Common{Kind: proof.KindTrust, Date: at, From: from},
		Ids:      to,
		Trust:    level,
		Override: overrides,
	}, s, false)
}

func TestComputeGradedDistance(t *testing.T) {
	// spec §8 S1: A->B(High), B->C(Medium), C->D(Low), D->E(High).
	// high=1, medium=10, low=100, max=111. E is just out of reach.
	db := proofdb.New()
	addTrustEdge(t, db, 1, personA, proof.High, epoch, nil, personB)
	addTrustEdge(t, db, 2, personB, proof.Medium, epoch, nil, personC)
	addTrustEdge(t, db, 3, personC, proof.Low, epoch, nil, personD)
	addTrustEdge(t, db, 4, personD, proof.High, epoch, nil, personE)

	params := trust.TrustDistanceParams{MaxDistance: 111, HighTrustDistance: 1, MediumTrustDistance: 10, LowTrustDistance: 100}
	ts := trust.Compute(db, personA.Id, params)

	for _, p := range []id.PublicId{personA, personB, personC, personD} {
		assert.Contains(t, ts.Trusted, p.Id, "expected %x to be trusted", p.Id)
	}
	assert.NotContains(t, ts.Trusted, personE.Id, "E is beyond max_distance")

	// Adding B->D (Medium) brings E within range.
	addTrustEdge(t, db, 5, personB, proof.Medium, epoch, nil, personD)
	ts2 := trust.Compute(db, personA.Id, params)
	assert.Contains(t, ts2.Trusted, personE.Id, "E should now be reachable via B->D")
}

func TestComputeDistrustWithRestart(t *testing.T) {
	// spec §8 S3: A->B High, A->C High, B->D Low, D->C Distrust, C->E Low.
	db := proofdb.New()
	addTrustEdge(t, db, 1, personA, proof.High, epoch, nil, personB)
	addTrustEdge(t, db, 2, personA, proof.High, epoch, nil, personC)
	addTrustEdge(t, db, 3, personB, proof.Low, epoch, nil, personD)
	addTrustEdge(t, db, 4, personD, proof.Distrust, epoch, nil, personC)
	addTrustEdge(t, db, 5, personC, proof.Low, epoch, nil, personE)

	params := trust.TrustDistanceParams{MaxDistance: 10000, HighTrustDistance: 1, MediumTrustDistance: 10, LowTrustDistance: 100}
	ts := trust.Compute(db, personA.Id, params)

	assert.Contains(t, ts.Trusted, personA.Id)
	assert.Contains(t, ts.Trusted, personB.Id)
	assert.Contains(t, ts.Trusted, personD.Id)
	assert.NotContains(t, ts.Trusted, personC.Id, "C must be distrusted, not trusted")
	assert.NotContains(t, ts.Trusted, personE.Id, "E is only reachable through distrusted C")
	assert.True(t, ts.IsDistrusted(personC.Id))

	// Add E->D Distrust: mutual distrust leaves trusted = {A, B}.
	addTrustEdge(t, db, 6, personE, proof.Distrust, epoch, nil, personD)
	ts2 := trust.Compute(db, personA.Id, params)
	assert.Contains(t, ts2.Trusted, personA.Id)
	assert.Contains(t, ts2.Trusted, personB.Id)
	assert.NotContains(t, ts2.Trusted, personD.Id)
	assert.NotContains(t, ts2.Trusted, personC.Id)
}

func TestComputeOverrideIgnoresTrustEdge(t *testing.T) {
	// spec §8 S4: A trusts B Medium, C High. C's Trust proof naming D at
	// None overrides B. B trusts D High. D must not be reachable via B's
	// edge because C's override (issued at High) dominates B's effective
	// level (Medium) while A is evaluating it.
	db := proofdb.New()
	addTrustEdge(t, db, 1, personA, proof.Medium, epoch, nil, personB)
	addTrustEdge(t, db, 2, personA, proof.High, epoch, nil, personC)
	addTrustEdge(t, db, 3, personC, proof.TrustNone, epoch, []proof.OverrideItem{{Id: personB}}, personD)
	addTrustEdge(t, db, 4, personB, proof.High, epoch, nil, personD)

	params := trust.TrustDistanceParams{MaxDistance: 10000, HighTrustDistance: 1, MediumTrustDistance: 10, LowTrustDistance: 100}
	ts := trust.Compute(db, personA.Id, params)
	assert.NotContains(t, ts.Trusted, personD.Id, "C's override should dominate B's edge to D")

	// If A trusts B at High (equal to C), the override no longer dominates
	// and D becomes reachable.
	db2 := proofdb.New()
	addTrustEdge(t, db2, 1, personA, proof.High, epoch, nil, personB)
	addTrustEdge(t, db2, 2, personA, proof.High, epoch, nil, personC)
	addTrustEdge(t, db2, 3, personC, proof.TrustNone, epoch, []proof.OverrideItem{{Id: personB}}, personD)
	addTrustEdge(t, db2, 4, personB, proof.High, epoch, nil, personD)

	ts2 := trust.Compute(db2, personA.Id, params)
	assert.Contains(t, ts2.Trusted, personD.Id, "equal effective level should not be overridden")
}

func TestTrustedAndDistrustedAreDisjoint(t *testing.T) {
	db := proofdb.New()
	addTrustEdge(t, db, 1, personA, proof.High, epoch, nil, personB)
	addTrustEdge(t, db, 2, personA, proof.Distrust, epoch, nil, personC)

	params := trust.TrustDistanceParams{MaxDistance: 100, HighTrustDistance: 1, MediumTrustDistance: 10, LowTrustDistance: 50}
	ts := trust.Compute(db, personA.Id, params)
	for i := range ts.Trusted {
		assert.NotContains(t, ts.Distrusted, i)
	}
}

func TestDistanceBeyondMaxIsExcluded(t *testing.T) {
	db := proofdb.New()
	addTrustEdge(t, db, 1, personA, proof.Low, epoch, nil, personB)
	params := trust.TrustDistanceParams{MaxDistance: 5, HighTrustDistance: 1, MediumTrustDistance: 2, LowTrustDistance: 100}
	ts := trust.Compute(db, personA.Id, params)
	assert.NotContains(t, ts.Trusted, personB.Id, "distance 100 exceeds max_distance 5")
}

func TestDistanceExactlyAtMaxIsIncluded(t *testing.T) {
	db := proofdb.New()
	addTrustEdge(t, db, 1, personA, proof.Low, epoch, nil, personB)
	params := trust.TrustDistanceParams{MaxDistance: 100, HighTrustDistance: 1, MediumTrustDistance: 10, LowTrustDistance: 100}
	ts := trust.Compute(db, personA.Id, params)
	require.Contains(t, ts.Trusted, personB.Id)
	dist, ok := ts.Distance(personB.Id)
	require.True(t, ok)
	assert.Equal(t, uint64(100), dist)
}

func TestMultipleTrustProofsKeepMaxDateEdge(t *testing.T) {
	db := proofdb.New()
	addTrustEdge(t, db, 1, personA, proof.Low, epoch, nil, personB)
	addTrustEdge(t, db, 2, personA, proof.High, epoch.Add(time.Hour), nil, personB)

	edge, ok := db.TrustDetails(personA.Id, personB.Id)
	require.True(t, ok)
	assert.Equal(t, proof.High, edge.Level, "the edge with the maximum date must win")
}
