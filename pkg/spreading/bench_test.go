package spreading

import "testing"

// benchGraph builds a layered graph: each node links forward to the next
// three, giving realistic fan-out without randomness.
func benchGraph(n int) []Association {
	var assocs []Association
	for i := 0; i < n; i++ {
		for k := 1; k <= 3 && i+k < n; k++ {
			assocs = append(assocs, Association{
				Source:           i,
				Target:           i + k,
				ForwardStrength:  0.8,
				BackwardStrength: 0.5,
			})
		}
	}
	return assocs
}

func BenchmarkSpread10k(b *testing.B) {
	const n = 10_000
	assocs := benchGraph(n)
	cfg := DefaultConfig()
	cfg.MaxNodes = n

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Spread(n, assocs, []int{0, n / 2}, []float64{1.0, 0.8}, cfg, 3)
	}
}

func BenchmarkPageRank1k(b *testing.B) {
	const n = 1000
	assocs := benchGraph(n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		PageRank(n, assocs, 0.85, 20)
	}
}
