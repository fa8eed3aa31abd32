package metrics

import "testing"

// BenchmarkCollector_Broadcast measures the per-message counter cost.
func BenchmarkCollector_Broadcast(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Broadcast(16)
	}
}

func BenchmarkCollector_Snapshot(b *testing.B) {
	c := New()
	c.ConnectionOpened()
	c.Broadcast(4)
	c.CommandFailed("test")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Snapshot()
	}
}
