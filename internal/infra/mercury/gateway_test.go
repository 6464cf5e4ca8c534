package mercury

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"bcx_go/internal/domain"
	"bcx_go/internal/execution"
	"bcx_go/internal/order"
)

type recordingSender struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (s *recordingSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, data)
	return nil
}

func TestGateway_ImplementsExecution(t *testing.T) {
	var _ execution.Execution = (*Gateway)(nil)
}

func TestGateway_SubmitOrder(t *testing.T) {
	sender := &recordingSender{}
	gw := NewGateway(sender, 100)

	o := order.BuildNewOrder(domain.SideBuy, 9.95, 0.01, "BTC-GBP")
	if err := gw.SubmitOrder(context.Background(), o); err != nil {
		t.Fatalf("SubmitOrder failed: %v", err)
	}

	if len(sender.frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(sender.frames))
	}
	var got order.NewOrder
	if err := json.Unmarshal(sender.frames[0], &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got != o {
		t.Errorf("Frame = %+v, want %+v", got, o)
	}
}

func TestGateway_CancelOrder(t *testing.T) {
	sender := &recordingSender{}
	gw := NewGateway(sender, 100)

	if err := gw.CancelOrder(context.Background(), order.BuildCancel("abc123")); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}

	want := `{"action":"CancelOrderRequest","channel":"trading","orderID":"abc123"}`
	if string(sender.frames[0]) != want {
		t.Errorf("Frame = %s, want %s", sender.frames[0], want)
	}
}

func TestGateway_SendError(t *testing.T) {
	sender := &recordingSender{err: domain.NewNetworkError("write", domain.ErrNotConnected)}
	gw := NewGateway(sender, 100)

	err := gw.SubmitOrder(context.Background(), order.BuildNewOrder(domain.SideBuy, 1, 1, "BTC-GBP"))
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestGateway_RateLimitHonoursContext(t *testing.T) {
	sender := &recordingSender{}
	gw := NewGateway(sender, 0.001) // one token, then ~17 minutes per token

	ctx := context.Background()
	if err := gw.CancelOrder(ctx, order.BuildCancel("first")); err != nil {
		t.Fatalf("First cancel failed: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := gw.CancelOrder(cancelled, order.BuildCancel("second")); err == nil {
		t.Fatal("Expected rate limiter to fail on cancelled context")
	}
	if len(sender.frames) != 1 {
		t.Errorf("Expected only the first frame to be sent, got %d", len(sender.frames))
	}
}
