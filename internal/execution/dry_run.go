package execution

import (
	"context"
	"log/slog"
	"sync"

	"bcx_go/internal/order"
)

// DryRun is a safe implementation that only logs and records orders.
type DryRun struct {
	mu      sync.Mutex
	orders  []order.NewOrder
	cancels []order.CancelRequest
}

func NewDryRun() *DryRun {
	return &DryRun{}
}

func (d *DryRun) SubmitOrder(ctx context.Context, o order.NewOrder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slog.Info("DRY RUN: Submit Order",
		slog.String("cl_ord_id", o.ClOrdID),
		slog.String("symbol", o.Symbol),
		slog.String("side", o.Side),
		slog.Float64("price", o.Price),
		slog.Float64("qty", o.OrderQty),
	)

	d.mu.Lock()
	d.orders = append(d.orders, o)
	d.mu.Unlock()
	return nil
}

func (d *DryRun) CancelOrder(ctx context.Context, c order.CancelRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slog.Info("DRY RUN: Cancel Order", slog.String("order_id", c.OrderID))

	d.mu.Lock()
	d.cancels = append(d.cancels, c)
	d.mu.Unlock()
	return nil
}

// Orders returns the orders recorded so far.
func (d *DryRun) Orders() []order.NewOrder {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]order.NewOrder(nil), d.orders...)
}

// Cancels returns the cancellations recorded so far.
func (d *DryRun) Cancels() []order.CancelRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]order.CancelRequest(nil), d.cancels...)
}
