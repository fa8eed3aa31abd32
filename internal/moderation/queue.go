package moderation

import (
	"container/heap"
	"time"
)

// banEntry is one live ban.  A principal has at most one entry: it
// cannot be struck again until the entry is popped and the ban lifted.
type banEntry struct {
	expiry   time.Time
	nickname string
}

// banQueue is a min-heap ordered by expiry, then nickname, so equal
// deadlines still pop in a deterministic order.
type banQueue []banEntry

var _ heap.Interface = (*banQueue)(nil)

func (q banQueue) Len() int { return len(q) }

func (q banQueue) Less(i, j int) bool {
	if !q[i].expiry.Equal(q[j].expiry) {
		return q[i].expiry.Before(q[j].expiry)
	}
	return q[i].nickname < q[j].nickname
}

func (q banQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *banQueue) Push(x any) { *q = append(*q, x.(banEntry)) }

func (q *banQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = banEntry{}
	*q = old[:n-1]
	return e
}

// peek returns the earliest entry without removing it.
func (q banQueue) peek() (banEntry, bool) {
	if len(q) == 0 {
		return banEntry{}, false
	}
	return q[0], true
}
