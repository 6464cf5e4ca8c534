package event

import "bcx_go/internal/domain"

// Type defines the type of event.
type Type uint16

const (
	EvMarketData Type = iota + 1
	EvOpenOrders
)

func (t Type) String() string {
	switch t {
	case EvMarketData:
		return "MARKET_DATA"
	case EvOpenOrders:
		return "OPEN_ORDERS"
	default:
		return "UNKNOWN"
	}
}

// MarketEvent is a parsed exchange message consumed by the decision engine.
// The set is closed: only MarketData and OpenOrdersSnapshot implement it.
type MarketEvent interface {
	GetType() Type
	marketEvent()
}

// MarketData carries whichever market observations arrived in one message.
// Any field may be nil.
type MarketData struct {
	PriceBar       *domain.PriceBar  `json:"price_bar,omitempty"`
	Book           *domain.OrderBook `json:"book,omitempty"`
	LastTradePrice *float64          `json:"last_trade_price,omitempty"`
}

func (MarketData) GetType() Type { return EvMarketData }
func (MarketData) marketEvent()  {}


// OpenOrdersSnapshot lists the orders still open on the account, as reported
// by the trading channel on (re)subscribe.
type OpenOrdersSnapshot struct {
	OrderIDs []string `json:"order_ids"`
}

func (OpenOrdersSnapshot) GetType() Type { return EvOpenOrders }
func (OpenOrdersSnapshot) marketEvent()  {}

// Price returns a pointer to px, for building MarketData literals.
func Price(px float64) *float64 {
	return &px
}
