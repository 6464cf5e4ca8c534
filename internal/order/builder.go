package order

import (
	"bcx_go/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ActionNewOrder = "NewOrderSingle"
	ActionCancel   = "CancelOrderRequest"
	ChannelTrading = "trading"

	// ClOrdIDLength is the number of UUID characters kept for a client order id.
	ClOrdIDLength = 20
)

// NewOrder is the NewOrderSingle payload of the trading channel.
type NewOrder struct {
	Action      string  `json:"action"`
	Channel     string  `json:"channel"`
	OrdType     string  `json:"ordType"`
	TimeInForce string  `json:"timeInForce"`
	OrderQty    float64 `json:"orderQty"`
	Side        string  `json:"side"`
	Price       float64 `json:"price"`
	Symbol      string  `json:"symbol"`
	ClOrdID     string  `json:"clOrdID"`
}

// Builder assembles a NewOrder. Unset fields keep protocol defaults.
type Builder struct {
	order NewOrder
}

// NewBuilder returns a builder preset to a GTC limit buy.
func NewBuilder() *Builder {
	return &Builder{order: NewOrder{
		Action:      ActionNewOrder,
		Channel:     ChannelTrading,
		OrdType:     domain.OrderTypeLimit,
		TimeInForce: domain.TimeInForceGTC,
		Side:        string(domain.SideBuy),
	}}
}

func (b *Builder) OrdType(ordType string) *Builder {
	b.order.OrdType = ordType
	return b
}

func (b *Builder) OrderQty(qty float64) *Builder {
	b.order.OrderQty = qty
	return b
}

func (b *Builder) Side(side domain.Side) *Builder {
	b.order.Side = string(side)
	return b
}

func (b *Builder) Price(price float64) *Builder {
	b.order.Price = price
	return b
}

func (b *Builder) Symbol(symbol string) *Builder {
	b.order.Symbol = symbol
	return b
}

func (b *Builder) ClOrdID(id string) *Builder {
	b.order.ClOrdID = id
	return b
}

// Finalize returns the assembled order. The builder can be reused.
func (b *Builder) Finalize() NewOrder {
	return b.order
}

// BuildNewOrder builds a GTC limit order with a fresh client order id.
// It performs no I/O.
func BuildNewOrder(side domain.Side, price, qty float64, symbol string) NewOrder {
	return NewBuilder().
		Side(side).
		Price(price).
		OrderQty(qty).
		Symbol(symbol).
		ClOrdID(NewClientOrderID()).
		Finalize()
}

// NewClientOrderID returns the first 20 characters of a random UUIDv4.
func NewClientOrderID() string {
	return uuid.NewString()[:ClOrdIDLength]
}

// CancelRequest is the CancelOrderRequest payload of the trading channel.
type CancelRequest struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
	OrderID string `json:"orderID"`
}

// BuildCancel builds a cancellation for orderID.
func BuildCancel(orderID string) CancelRequest {
	return CancelRequest{
		Action:  ActionCancel,
		Channel: ChannelTrading,
		OrderID: orderID,
	}
}

// RoundPrice rounds price half away from zero to the given number of decimal places.
func RoundPrice(price float64, places int32) float64 {
	return decimal.NewFromFloat(price).Round(places).InexactFloat64()
}
