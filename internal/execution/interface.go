package execution

import (
	"context"

	"bcx_go/internal/order"
)

// Execution sends order commands to the exchange.
type Execution interface {
	// SubmitOrder sends a new order. A nil error means the payload was handed
	// to the transport, not that the exchange accepted it.
	SubmitOrder(ctx context.Context, o order.NewOrder) error

	// CancelOrder requests cancellation of an open order.
	CancelOrder(ctx context.Context, c order.CancelRequest) error
}
