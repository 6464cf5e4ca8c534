package engine_test

import (
	"math"
	"reflect"
	"testing"

	"bcx_go/internal/domain"
	"bcx_go/internal/engine"
	"bcx_go/internal/event"
	"bcx_go/internal/strategy"
)

func bar(low float64) *domain.PriceBar {
	return &domain.PriceBar{Timestamp: 1, Open: low + 1, High: low + 2, Low: low, Close: low + 1, Volume: 3}
}

func TestEngine_ThresholdFires(t *testing.T) {
	eng := engine.NewEngine(domain.PairBTCGBP)

	// Last trade arrives on the ticker, the bar on the prices channel.
	if cmd := eng.Decide(event.MarketData{LastTradePrice: event.Price(10.0)}); cmd != nil {
		t.Fatalf("Expected no command without a price bar, got %#v", cmd)
	}

	cmd := eng.Decide(event.MarketData{PriceBar: bar(10.5)})
	submit, ok := cmd.(engine.SubmitNewOrder)
	if !ok {
		t.Fatalf("Expected SubmitNewOrder, got %#v", cmd)
	}
	if math.Abs(submit.ReferencePrice-9.95) > 1e-9 {
		t.Errorf("Expected reference price 9.95, got %v", submit.ReferencePrice)
	}
}

func TestEngine_ThresholdHolds(t *testing.T) {
	t.Run("last above low", func(t *testing.T) {
		eng := engine.NewEngine(domain.PairBTCGBP)
		cmd := eng.Decide(event.MarketData{PriceBar: bar(9.5), LastTradePrice: event.Price(10.0)})
		if cmd != nil {
			t.Errorf("Expected no command, got %#v", cmd)
		}
	})

	t.Run("last equal to low", func(t *testing.T) {
		eng := engine.NewEngine(domain.PairBTCGBP)
		cmd := eng.Decide(event.MarketData{PriceBar: bar(10.0), LastTradePrice: event.Price(10.0)})
		if cmd != nil {
			t.Errorf("Equality must not trigger, got %#v", cmd)
		}
	})

	t.Run("only latest values count", func(t *testing.T) {
		eng := engine.NewEngine(domain.PairBTCGBP)
		eng.Decide(event.MarketData{PriceBar: bar(20.0)})
		eng.Decide(event.MarketData{PriceBar: bar(9.0)})
		cmd := eng.Decide(event.MarketData{LastTradePrice: event.Price(10.0)})
		if cmd != nil {
			t.Errorf("Older bar must not be used, got %#v", cmd)
		}
	})
}

func TestEngine_CapEnforcement(t *testing.T) {
	eng := engine.NewEngine(domain.PairBTCGBP)
	if eng.MaxOrders() != engine.DefaultMaxOrders {
		t.Fatalf("Expected default cap %d, got %d", engine.DefaultMaxOrders, eng.MaxOrders())
	}

	signal := event.MarketData{PriceBar: bar(10.5), LastTradePrice: event.Price(10.0)}

	for i := 0; i < engine.DefaultMaxOrders; i++ {
		if _, ok := eng.Decide(signal).(engine.SubmitNewOrder); !ok {
			t.Fatalf("Order %d: expected SubmitNewOrder below cap", i+1)
		}
		eng.IncrementSubmitted()
	}

	if !eng.CapReached() {
		t.Fatal("Expected cap to be reached")
	}
	for i := 0; i < 50; i++ {
		if cmd := eng.Decide(signal); cmd != nil {
			t.Fatalf("Decide returned %#v after cap reached", cmd)
		}
	}
	if eng.Submitted() != engine.DefaultMaxOrders {
		t.Errorf("Expected submitted %d, got %d", engine.DefaultMaxOrders, eng.Submitted())
	}
}

func TestEngine_ZeroCap(t *testing.T) {
	eng := engine.NewEngine(domain.PairBTCGBP, engine.WithMaxOrders(0))
	cmd := eng.Decide(event.MarketData{PriceBar: bar(10.5), LastTradePrice: event.Price(10.0)})
	if cmd != nil {
		t.Errorf("Zero cap must never submit, got %#v", cmd)
	}
}

func TestEngine_CancelPassThrough(t *testing.T) {
	eng := engine.NewEngine(domain.PairBTCUSD, engine.WithMaxOrders(0))
	eng.Decide(event.MarketData{PriceBar: bar(10.5), LastTradePrice: event.Price(10.0)})

	ids := []string{"o-3", "o-1", "o-2"}
	cmd := eng.Decide(event.OpenOrdersSnapshot{OrderIDs: ids})

	cancel, ok := cmd.(engine.CancelOrders)
	if !ok {
		t.Fatalf("Expected CancelOrders, got %#v", cmd)
	}
	if !reflect.DeepEqual(cancel.OrderIDs, ids) {
		t.Errorf("Expected ids %v unchanged, got %v", ids, cancel.OrderIDs)
	}

	// Cancels must not touch history.
	if len(eng.PriceHistory()) != 1 || len(eng.LastTradePrices()) != 1 {
		t.Errorf("Cancel handling modified history: %+v", eng.Snapshot())
	}

	if cmd := eng.Decide(event.OpenOrdersSnapshot{}); cmd != nil {
		t.Errorf("Expected no command for empty snapshot, got %#v", cmd)
	}
	if cmd := eng.Decide(&event.OpenOrdersSnapshot{OrderIDs: []string{"x"}}); cmd == nil {
		t.Error("Expected pointer snapshot to be handled")
	}
}

func TestEngine_HistoryAccumulation(t *testing.T) {
	eng := engine.NewEngine(domain.PairBTCGBP)

	const n = 25
	for i := 0; i < n; i++ {
		eng.Decide(event.MarketData{PriceBar: &domain.PriceBar{Timestamp: float64(i), Low: 100}})
	}

	history := eng.PriceHistory()
	if len(history) != n {
		t.Fatalf("Expected %d bars, got %d", n, len(history))
	}
	for i, b := range history {
		if b.Timestamp != float64(i) {
			t.Fatalf("Bar %d out of order: timestamp %v", i, b.Timestamp)
		}
	}

	book := &domain.OrderBook{SeqNum: 7, Symbol: "BTC-GBP", Bids: []domain.BookRow{{Num: 1, Price: 99, Qty: 1}}}
	eng.Decide(event.MarketData{Book: book, LastTradePrice: event.Price(101)})

	if books := eng.BookHistory(); len(books) != 1 || books[0].SeqNum != 7 {
		t.Errorf("Expected one book with seqnum 7, got %+v", books)
	}
	if prices := eng.LastTradePrices(); len(prices) != 1 || prices[0] != 101 {
		t.Errorf("Expected last trade prices [101], got %v", prices)
	}
}

func TestEngine_EmptyMarketData(t *testing.T) {
	eng := engine.NewEngine(domain.PairBTCGBP)
	eng.Decide(event.MarketData{PriceBar: bar(10.5)})
	before := eng.Snapshot()

	for i := 0; i < 3; i++ {
		if cmd := eng.Decide(event.MarketData{}); cmd != nil {
			t.Fatalf("Expected no command for empty MarketData, got %#v", cmd)
		}
	}

	if after := eng.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("Empty MarketData changed state: before %+v after %+v", before, after)
	}
	if cmd := eng.Decide(nil); cmd != nil {
		t.Errorf("Expected nil event to yield no command, got %#v", cmd)
	}
}

func TestEngine_CustomRule(t *testing.T) {
	always := strategy.RuleFunc(func(lastPrice float64, _ domain.PriceBar) (float64, bool) {
		return lastPrice, true
	})
	eng := engine.NewEngine(domain.PairBTCGBP, engine.WithRule(always), engine.WithMaxOrders(1))

	cmd := eng.Decide(event.MarketData{PriceBar: bar(1), LastTradePrice: event.Price(50)})
	if submit, ok := cmd.(engine.SubmitNewOrder); !ok || submit.ReferencePrice != 50 {
		t.Errorf("Expected custom rule price 50, got %#v", cmd)
	}
}
