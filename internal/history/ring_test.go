package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRing_Empty(t *testing.T) {
	r := New(3)
	msgs, ok := r.LastN()
	require.False(t, ok)
	require.Empty(t, msgs)
	require.Equal(t, 0, r.Len())
}

func TestRing_InsertionOrder(t *testing.T) {
	req := require.New(t)
	r := New(3)
	r.Append("alice", "one")
	r.Append("bob", "two")

	msgs, ok := r.LastN()
	req.True(ok)
	req.Equal([]Message{
		{Seq: 1, Sender: "alice", Text: "one"},
		{Seq: 2, Sender: "bob", Text: "two"},
	}, msgs)
}

func TestRing_EvictsOldestFirst(t *testing.T) {
	tests := []struct {
		size    int
		appends int
		want    []string
	}{
		{1, 3, []string{"m3"}},
		{3, 3, []string{"m1", "m2", "m3"}},
		{3, 4, []string{"m2", "m3", "m4"}},
		{3, 7, []string{"m5", "m6", "m7"}},
		{5, 2, []string{"m1", "m2"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("size%d_appends%d", tt.size, tt.appends), func(t *testing.T) {
			r := New(tt.size)
			for i := 1; i <= tt.appends; i++ {
				r.Append("x", fmt.Sprintf("m%d", i))
			}
			msgs, ok := r.LastN()
			require.True(t, ok)
			got := make([]string, len(msgs))
			for i, m := range msgs {
				got[i] = m.Text
			}
			require.Equal(t, tt.want, got)
			require.LessOrEqual(t, r.Len(), tt.size)
		})
	}
}

func TestRing_SnapshotIsCopy(t *testing.T) {
	r := New(2)
	r.Append("alice", "hi")
	msgs, _ := r.LastN()
	msgs[0].Text = "mutated"

	again, _ := r.LastN()
	require.Equal(t, "hi", again[0].Text)
}

func TestRing_SizeFloor(t *testing.T) {
	r := New(0)
	require.Equal(t, 1, r.Cap())
}

func TestMessage_Line(t *testing.T) {
	m := Message{Sender: "alice", Text: "hi"}
	require.Equal(t, "[alice says] hi", m.Line())
}

func TestRing_ConcurrentAppend(t *testing.T) {
	r := New(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Append("x", "y")
			}
		}()
	}
	wg.Wait()

	msgs, ok := r.LastN()
	require.True(t, ok)
	require.Len(t, msgs, 50)
	for i := 1; i < len(msgs); i++ {
		require.Equal(t, msgs[i-1].Seq+1, msgs[i].Seq, "sequence must be contiguous")
	}
	require.Equal(t, uint64(800), msgs[len(msgs)-1].Seq)
}
