package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"bcx_go/internal/domain"
	"bcx_go/internal/event"
	"bcx_go/internal/execution"
	"bcx_go/internal/infra"
	"bcx_go/internal/order"
)

// Journal records dispatched order commands.
type Journal interface {
	RecordOrder(rec *domain.OrderRecord) error
}

// SequencerConfig holds the order parameters applied to SubmitNewOrder.
type SequencerConfig struct {
	Side           domain.Side
	OrderQty       float64
	PricePrecision int32
	DumpPath       string // written on panic; empty disables the dump
}

// Sequencer is the single-threaded event processor. It is the only caller of
// Engine.Decide and Engine.IncrementSubmitted, which keeps the order cap exact.
type Sequencer struct {
	inbox   chan event.MarketEvent
	engine  *Engine
	exec    execution.Execution
	journal Journal
	cfg     SequencerConfig
	metrics *infra.Metrics

	processed uint64
}

// NewSequencer creates a new sequencer instance. journal may be nil.
func NewSequencer(inboxSize int, eng *Engine, exec execution.Execution, journal Journal, cfg SequencerConfig) *Sequencer {
	if cfg.Side == "" {
		cfg.Side = domain.SideBuy
	}
	return &Sequencer{
		inbox:   make(chan event.MarketEvent, inboxSize),
		engine:  eng,
		exec:    exec,
		journal: journal,
		cfg:     cfg,
		metrics: infra.GlobalMetrics,
	}
}

// Inbox returns the event channel. Feed workers send parsed events here.
func (s *Sequencer) Inbox() chan<- event.MarketEvent {
	return s.inbox
}

// Engine returns the engine owned by this sequencer. Only safe to read once Run has returned.
func (s *Sequencer) Engine() *Engine {
	return s.engine
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("Sequencer started", slog.String("symbol", s.engine.Pair().Symbol()))

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			if s.cfg.DumpPath != "" {
				s.DumpState(s.cfg.DumpPath)
			}
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sequencer stopping...", slog.Uint64("processed", s.processed))
			return
		case ev := <-s.inbox:
			s.processEvent(ctx, ev)
		}
	}
}

func (s *Sequencer) processEvent(ctx context.Context, ev event.MarketEvent) {
	start := time.Now()

	cmd := s.engine.Decide(ev)
	if cmd != nil {
		slog.Debug("Command emitted",
			slog.String("event", ev.GetType().String()),
			slog.String("command", fmt.Sprintf("%T", cmd)),
		)
		s.metrics.RecordCommand()
		s.dispatch(ctx, cmd)
	}

	s.processed++
	s.metrics.RecordEvent(time.Since(start).Nanoseconds())
}

func (s *Sequencer) dispatch(ctx context.Context, cmd Command) {
	switch c := cmd.(type) {
	case CancelOrders:
		slog.Info("Cancelling open orders", slog.Int("count", len(c.OrderIDs)))
		for _, id := range c.OrderIDs {
			s.cancel(ctx, id)
		}
	case SubmitNewOrder:
		s.submit(ctx, c)
	default:
		slog.Warn("Unknown command type", slog.String("type", fmt.Sprintf("%T", cmd)))
	}
}

func (s *Sequencer) submit(ctx context.Context, c SubmitNewOrder) {
	price := order.RoundPrice(c.ReferencePrice, s.cfg.PricePrecision)
	o := order.BuildNewOrder(s.cfg.Side, price, s.cfg.OrderQty, s.engine.Pair().Symbol())

	rec := &domain.OrderRecord{
		Action:  domain.ActionSubmit,
		ClOrdID: o.ClOrdID,
		Symbol:  o.Symbol,
		Side:    o.Side,
		Price:   o.Price,
		Qty:     o.OrderQty,
		Status:  domain.StatusSent,
	}

	if err := s.exec.SubmitOrder(ctx, o); err != nil {
		// A failed submission does not count against the cap.
		slog.Error("Order submission failed",
			slog.String("cl_ord_id", o.ClOrdID),
			slog.Float64("price", o.Price),
			slog.Any("error", err),
		)
		s.metrics.RecordFailure()
		rec.Status = domain.StatusFailed
		rec.Error = err.Error()
		s.record(rec)
		return
	}

	s.engine.IncrementSubmitted()
	s.metrics.RecordSubmitted()
	s.record(rec)

	slog.Info("Order submitted",
		slog.String("cl_ord_id", o.ClOrdID),
		slog.String("symbol", o.Symbol),
		slog.Float64("price", o.Price),
		slog.Float64("qty", o.OrderQty),
		slog.Int("submitted", s.engine.Submitted()),
		slog.Int("max_orders", s.engine.MaxOrders()),
	)
}

func (s *Sequencer) cancel(ctx context.Context, orderID string) {
	req := order.BuildCancel(orderID)
	rec := &domain.OrderRecord{
		Action:  domain.ActionCancel,
		OrderID: orderID,
		Symbol:  s.engine.Pair().Symbol(),
		Status:  domain.StatusSent,
	}

	if err := s.exec.CancelOrder(ctx, req); err != nil {
		slog.Error("Order cancel failed", slog.String("order_id", orderID), slog.Any("error", err))
		s.metrics.RecordFailure()
		rec.Status = domain.StatusFailed
		rec.Error = err.Error()
		s.record(rec)
		return
	}

	s.metrics.RecordCancelled()
	s.record(rec)
}

func (s *Sequencer) record(rec *domain.OrderRecord) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordOrder(rec); err != nil {
		slog.Warn("Failed to journal order", slog.String("action", rec.Action), slog.Any("error", err))
	}
}

// DumpState writes the engine state to a file (for post-mortem).
func (s *Sequencer) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		Processed uint64 `json:"processed"`
		Engine    State  `json:"engine"`
	}{
		Processed: s.processed,
		Engine:    s.engine.Snapshot(),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
