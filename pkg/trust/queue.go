package trust

import (
	"github.com/revtrust/revtrust/pkg/id"
	"github.com/revtrust/revtrust/pkg/proof"
)

// queueItem is one pending visit: an identity proposed at a given
// effective level and distance. Stale items (superseded by a better
// update to the same identity before they're popped) are detected by
// comparing against the frontier's current best and discarded lazily.
type queueItem struct {
	Id       id.Id
	Level    proof.TrustLevel
	Distance uint64
}

// priorityQueue orders items by (effective level DESC, distance ASC, id
// ASC), the exact ordering spec §4.4 requires for the best-first
// traversal.
type priorityQueue []queueItem

func (q priorityQueue) Len() int { return len(q) }

func (q priorityQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.Level != b.Level {
		return a.Level > b.Level
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Id.Less(b.Id)
}

func (q priorityQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *priorityQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
