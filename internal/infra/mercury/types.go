package mercury

import (
	"time"

	"bcx_go/internal/domain"
)

const (
	defaultReadTimeout  = 60 * time.Second
	defaultPingInterval = 30 * time.Second
	handshakeTimeout    = 10 * time.Second
	writeTimeout        = 10 * time.Second
)

// Channel names of the Mercury gateway.
const (
	ChannelAuth      = "auth"
	ChannelHeartbeat = "heartbeat"
	ChannelTicker    = "ticker"
	ChannelPrices    = "prices"
	ChannelL2        = "l2"
	ChannelBalances  = "balances"
	ChannelTrading   = "trading"
)

// Event kinds carried in the "event" field.
const (
	EventSubscribed   = "subscribed"
	EventUnsubscribed = "unsubscribed"
	EventRejected     = "rejected"
	EventSnapshot     = "snapshot"
)

// SubscribeRequest is a channel subscription (or the auth handshake).
type SubscribeRequest struct {
	Token         string `json:"token,omitempty"`
	Action        string `json:"action"`
	Channel       string `json:"channel"`
	Symbol        string `json:"symbol,omitempty"`
	Granularity   int    `json:"granularity,omitempty"`
	LocalCurrency string `json:"local_currency,omitempty"`
}

// AuthRequest returns the auth subscription carrying the API token.
func AuthRequest(token string) SubscribeRequest {
	return SubscribeRequest{Token: token, Action: "subscribe", Channel: ChannelAuth}
}

// MarketSubscriptions returns the market-data subscriptions for pair.
// Balances need an authenticated session and are only included when authenticated is true.
func MarketSubscriptions(pair domain.Pair, granularity int, authenticated bool) []SubscribeRequest {
	symbol := pair.Symbol()
	subs := []SubscribeRequest{
		{Action: "subscribe", Channel: ChannelPrices, Symbol: symbol, Granularity: granularity},
		{Action: "subscribe", Channel: ChannelTicker, Symbol: symbol},
		{Action: "subscribe", Channel: ChannelL2, Symbol: symbol},
	}
	if authenticated {
		subs = append(subs, SubscribeRequest{Action: "subscribe", Channel: ChannelBalances, LocalCurrency: pair.Base})
	}
	return subs
}

// TradingSubscriptions returns the subscription for order entry and open-order snapshots.
func TradingSubscriptions() []SubscribeRequest {
	return []SubscribeRequest{{Action: "subscribe", Channel: ChannelTrading}}
}

// envelope holds the fields common to every gateway message.
type envelope struct {
	SeqNum  int64  `json:"seqnum"`
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Text    string `json:"text,omitempty"`
}

type tickerMessage struct {
	Symbol         string   `json:"symbol"`
	LastTradePrice *float64 `json:"last_trade_price"`
}

// pricesMessage carries one candle as [timestamp, open, high, low, close, volume].
type pricesMessage struct {
	Symbol string    `json:"symbol"`
	Price  []float64 `json:"price"`
}

type tradingOrder struct {
	OrderID   string  `json:"orderID"`
	ClOrdID   string  `json:"clOrdID"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	OrdStatus string  `json:"ordStatus"`
	ExecType  string  `json:"execType"`
	Price     float64 `json:"price"`
	OrderQty  float64 `json:"orderQty"`
	CumQty    float64 `json:"cumQty"`
	Text      string  `json:"text"`
}

type tradingMessage struct {
	tradingOrder
	Orders []tradingOrder `json:"orders"`
}
