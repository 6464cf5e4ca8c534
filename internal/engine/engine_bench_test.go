package engine_test

import (
	"testing"

	"bcx_go/internal/domain"
	"bcx_go/internal/engine"
	"bcx_go/internal/event"
)

// BenchmarkEngine_Decide measures the per-event cost of the decision path.
func BenchmarkEngine_Decide(b *testing.B) {
	eng := engine.NewEngine(domain.PairBTCGBP, engine.WithMaxOrders(0))
	px := 30000.0
	bar := domain.PriceBar{Low: 29900}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		bar.Timestamp = float64(i)
		eng.Decide(event.MarketData{PriceBar: &bar, LastTradePrice: &px})
	}
}

// BenchmarkEngine_Cancel measures open-order snapshot handling.
func BenchmarkEngine_Cancel(b *testing.B) {
	eng := engine.NewEngine(domain.PairBTCGBP)
	snap := event.OpenOrdersSnapshot{OrderIDs: []string{"a", "b", "c", "d"}}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		eng.Decide(snap)
	}
}
