package engine

import (
	"log/slog"
	"slices"

	"bcx_go/internal/domain"
	"bcx_go/internal/event"
	"bcx_go/internal/strategy"
)

// DefaultMaxOrders is the per-session cap on submitted orders.
const DefaultMaxOrders = 2

// Engine holds trading state across the message stream and turns one
// MarketEvent at a time into at most one Command.
// It is not safe for concurrent use; the Sequencer owns it.
type Engine struct {
	pair      domain.Pair
	rule      strategy.Rule
	maxOrders int
	submitted int

	priceHistory    []domain.PriceBar
	bookHistory     []domain.OrderBook
	lastTradePrices []float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxOrders overrides the submitted-order cap.
func WithMaxOrders(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxOrders = n
		}
	}
}

// WithRule overrides the threshold rule.
func WithRule(r strategy.Rule) Option {
	return func(e *Engine) {
		if r != nil {
			e.rule = r
		}
	}
}

// NewEngine creates an engine for a single session on pair.
func NewEngine(pair domain.Pair, opts ...Option) *Engine {
	e := &Engine{
		pair:      pair,
		rule:      strategy.NewThreshold(strategy.DefaultDiscount),
		maxOrders: DefaultMaxOrders,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide consumes one event and returns the command it warrants, or nil.
// It never fails: missing data resolves to no command.
func (e *Engine) Decide(ev event.MarketEvent) Command {
	switch ev := ev.(type) {
	case event.OpenOrdersSnapshot:
		// Orders found open on (re)connect are always cancelled.
		if len(ev.OrderIDs) == 0 {
			return nil
		}
		return CancelOrders{OrderIDs: slices.Clone(ev.OrderIDs)}
	case *event.OpenOrdersSnapshot:
		if ev == nil {
			return nil
		}
		return e.Decide(*ev)
	case event.MarketData:
		return e.onMarketData(ev)
	case *event.MarketData:
		if ev == nil {
			return nil
		}
		return e.onMarketData(*ev)
	default:
		return nil
	}
}

func (e *Engine) onMarketData(md event.MarketData) Command {
	if md.PriceBar != nil {
		e.priceHistory = append(e.priceHistory, *md.PriceBar)
	}
	if md.Book != nil {
		e.bookHistory = append(e.bookHistory, *md.Book)
	}
	if md.LastTradePrice != nil {
		e.lastTradePrices = append(e.lastTradePrices, *md.LastTradePrice)
	}

	if len(e.lastTradePrices) == 0 || len(e.priceHistory) == 0 {
		return nil
	}
	px := e.lastTradePrices[len(e.lastTradePrices)-1]
	bar := e.priceHistory[len(e.priceHistory)-1]

	slog.Debug("Checking last trade against bar low",
		slog.String("symbol", e.pair.Symbol()),
		slog.Float64("last_px", px),
		slog.Float64("low", bar.Low),
	)

	limit, ok := e.rule.Evaluate(px, bar)
	if !ok || e.submitted >= e.maxOrders {
		return nil
	}
	return SubmitNewOrder{ReferencePrice: limit}
}

// IncrementSubmitted records one successfully dispatched SubmitNewOrder.
// The caller must invoke it before the next Decide.
func (e *Engine) IncrementSubmitted() {
	e.submitted++
}

// Pair returns the session's instrument.
func (e *Engine) Pair() domain.Pair { return e.pair }

// MaxOrders returns the submitted-order cap.
func (e *Engine) MaxOrders() int { return e.maxOrders }

// Submitted returns how many orders have been submitted this session.
func (e *Engine) Submitted() int { return e.submitted }

// CapReached reports whether no further SubmitNewOrder will be emitted.
func (e *Engine) CapReached() bool { return e.submitted >= e.maxOrders }

// PriceHistory returns a copy of the accumulated price bars, oldest first.
func (e *Engine) PriceHistory() []domain.PriceBar { return slices.Clone(e.priceHistory) }

// BookHistory returns a copy of the accumulated order-book snapshots, oldest first.
func (e *Engine) BookHistory() []domain.OrderBook { return slices.Clone(e.bookHistory) }

// LastTradePrices returns a copy of the observed last-trade prices, oldest first.
func (e *Engine) LastTradePrices() []float64 { return slices.Clone(e.lastTradePrices) }

// State is a point-in-time summary of the engine for diagnostics.
type State struct {
	Symbol         string           `json:"symbol"`
	MaxOrders      int              `json:"max_orders"`
	Submitted      int              `json:"submitted"`
	PriceBars      int              `json:"price_bars"`
	Books          int              `json:"books"`
	LastTrades     int              `json:"last_trades"`
	LastBar        *domain.PriceBar `json:"last_bar,omitempty"`
	LastTradePrice *float64         `json:"last_trade_price,omitempty"`
}

// Snapshot returns the engine's current State.
func (e *Engine) Snapshot() State {
	s := State{
		Symbol:     e.pair.Symbol(),
		MaxOrders:  e.maxOrders,
		Submitted:  e.submitted,
		PriceBars:  len(e.priceHistory),
		Books:      len(e.bookHistory),
		LastTrades: len(e.lastTradePrices),
	}
	if n := len(e.priceHistory); n > 0 {
		bar := e.priceHistory[n-1]
		s.LastBar = &bar
	}
	if n := len(e.lastTradePrices); n > 0 {
		px := e.lastTradePrices[n-1]
		s.LastTradePrice = &px
	}
	return s
}
