package moderation

import (
	"container/heap"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBanQueue_OrdersByExpiry(t *testing.T) {
	base := time.Now()
	q := &banQueue{}
	heap.Push(q, banEntry{expiry: base.Add(3 * time.Second), nickname: "carol"})
	heap.Push(q, banEntry{expiry: base.Add(1 * time.Second), nickname: "alice"})
	heap.Push(q, banEntry{expiry: base.Add(2 * time.Second), nickname: "bob"})

	next, ok := q.peek()
	require.True(t, ok)
	require.Equal(t, "alice", next.nickname)

	var got []string
	for q.Len() > 0 {
		got = append(got, heap.Pop(q).(banEntry).nickname)
	}
	require.Equal(t, []string{"alice", "bob", "carol"}, got)
}

func TestBanQueue_TieBreakByNickname(t *testing.T) {
	at := time.Now()
	q := &banQueue{}
	for _, n := range []string{"zed", "amy", "mia", "bob"} {
		heap.Push(q, banEntry{expiry: at, nickname: n})
	}

	var got []string
	for q.Len() > 0 {
		got = append(got, heap.Pop(q).(banEntry).nickname)
	}
	require.Equal(t, []string{"amy", "bob", "mia", "zed"}, got)
}

func TestBanQueue_PeekEmpty(t *testing.T) {
	var q banQueue
	_, ok := q.peek()
	require.False(t, ok)
}
