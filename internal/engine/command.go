package engine

// Command is an instruction the Engine emits for the order gateway.
// The set is closed: only CancelOrders and SubmitNewOrder implement it.
// A nil Command means no action.
type Command interface {
	command()
}

// CancelOrders asks the gateway to cancel every listed order. Never empty.
type CancelOrders struct {
	OrderIDs []string `json:"order_ids"`
}

// SubmitNewOrder asks the gateway to place a buy limit order at ReferencePrice.
type SubmitNewOrder struct {
	ReferencePrice float64 `json:"reference_price"`
}

func (CancelOrders) command()   {}
func (SubmitNewOrder) command() {}
