package mercury

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"bcx_go/internal/order"

	"golang.org/x/time/rate"
)

// Sender writes one text frame to the trading connection.
type Sender interface {
	Send(data []byte) error
}

// Gateway serializes order commands onto the trading channel.
type Gateway struct {
	sender  Sender
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewGateway creates a gateway that sends at most ordersPerSecond frames per second.
func NewGateway(sender Sender, ordersPerSecond float64) *Gateway {
	return &Gateway{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(ordersPerSecond), 1),
		logger:  slog.Default().With("module", "mercury_gateway"),
	}
}

// SubmitOrder sends a NewOrderSingle.
func (g *Gateway) SubmitOrder(ctx context.Context, o order.NewOrder) error {
	b, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	g.logger.Info("Submitting order", slog.String("payload", string(b)))
	return g.send(ctx, b)
}

// CancelOrder sends a CancelOrderRequest.
func (g *Gateway) CancelOrder(ctx context.Context, c order.CancelRequest) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cancel: %w", err)
	}
	g.logger.Info("Cancelling order", slog.String("payload", string(b)))
	return g.send(ctx, b)
}

func (g *Gateway) send(ctx context.Context, b []byte) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return g.sender.Send(b)
}
