package domain

import (
	"fmt"
	"strings"
)

// Pair identifies the traded instrument. It is fixed for the lifetime of a session.
type Pair struct {
	Base   string `json:"base"`   // currency prices are quoted in, e.g. "GBP"
	Quoted string `json:"quoted"` // asset being traded, e.g. "BTC"
}

var (
	PairBTCGBP = Pair{Base: "GBP", Quoted: "BTC"}
	PairBTCUSD = Pair{Base: "USD", Quoted: "BTC"}
)

// Symbol returns the exchange symbol, e.g. "BTC-GBP".
func (p Pair) Symbol() string {
	return p.Quoted + "-" + p.Base
}

func (p Pair) String() string {
	return p.Symbol()
}

// PairForBase resolves the tradable pair for a base currency code.
func PairForBase(base string) (Pair, error) {
	switch strings.ToUpper(strings.TrimSpace(base)) {
	case "GBP":
		return PairBTCGBP, nil
	case "USD":
		return PairBTCUSD, nil
	default:
		return Pair{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, base)
	}
}

// PriceBar is one OHLCV candle from the prices channel.
type PriceBar struct {
	Timestamp float64 `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// BookRow is a single level of the l2 order book.
type BookRow struct {
	Num   int     `json:"num"`
	Price float64 `json:"px"`
	Qty   float64 `json:"qty"`
}

// OrderBook is an l2 snapshot. Bids and asks keep the feed's ordering.
type OrderBook struct {
	SeqNum  int64     `json:"seqnum"`
	Event   string    `json:"event"`
	Channel string    `json:"channel"`
	Symbol  string    `json:"symbol"`
	Bids    []BookRow `json:"bids"`
	Asks    []BookRow `json:"asks"`
}

// BestBid returns the first bid row, if any.
func (b *OrderBook) BestBid() (BookRow, bool) {
	if len(b.Bids) == 0 {
		return BookRow{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the first ask row, if any.
func (b *OrderBook) BestAsk() (BookRow, bool) {
	if len(b.Asks) == 0 {
		return BookRow{}, false
	}
	return b.Asks[0], true
}
