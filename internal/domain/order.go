package domain

// Side is the direction of an order on the wire.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether s is a side the exchange accepts.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

const (
	OrderTypeLimit  = "limit"
	OrderTypeMarket = "market"

	TimeInForceGTC = "GTC"
)

// Journal actions and statuses for OrderRecord.
const (
	ActionSubmit = "submit"
	ActionCancel = "cancel"

	StatusSent   = "sent"
	StatusFailed = "failed"
)
