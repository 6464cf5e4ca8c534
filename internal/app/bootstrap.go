package app

import (
	"context"
	"log/slog"
	"time"

	"bcx_go/internal/domain"
	"bcx_go/internal/engine"
	"bcx_go/internal/execution"
	"bcx_go/internal/infra"
	"bcx_go/internal/infra/mercury"
	"bcx_go/internal/infra/storage"
	"bcx_go/internal/strategy"
)

const metricsInterval = time.Minute

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config    *infra.Config
	Storage   *storage.Storage
	Pair      domain.Pair
	Engine    *engine.Engine
	Sequencer *engine.Sequencer
	Execution execution.Execution

	marketWorker  *mercury.Worker
	tradingWorker *mercury.Worker
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration and wires every component. Nothing touches
// the network until Run.
func (b *Bootstrap) Initialize(configPath string) error {
	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}

	// 2. Setup Logger
	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("Bootstrapping bcx_go...", slog.String("version", cfg.App.Version))

	return b.build(cfg)
}

// build wires the components for a loaded configuration.
func (b *Bootstrap) build(cfg *infra.Config) error {
	b.Config = cfg

	// 3. Order journal
	var journal engine.Journal
	if cfg.Storage.Enabled {
		store, err := storage.NewStorage(cfg.Storage.Path)
		if err != nil {
			return err
		}
		b.Storage = store
		journal = store
		slog.Info("Order journal initialized")
	}

	// 4. Engine
	b.Pair = cfg.Pair()
	rule := strategy.NewThreshold(cfg.Trading.Discount.InexactFloat64())
	b.Engine = engine.NewEngine(b.Pair,
		engine.WithMaxOrders(cfg.Trading.MaxOrders),
		engine.WithRule(rule),
	)
	slog.Info("Trading pair selected",
		slog.String("symbol", b.Pair.Symbol()),
		slog.Int("max_orders", cfg.Trading.MaxOrders),
	)

	// 5. Execution: orders go over their own authenticated connection.
	authenticated := cfg.Exchange.APISecret != ""
	if authenticated {
		b.tradingWorker = mercury.NewWorker(b.workerConfig("trading", mercury.TradingSubscriptions()), nil)
	}
	if cfg.Trading.DryRun {
		b.Execution = execution.NewDryRun()
		slog.Warn("Dry run enabled: orders are logged, not sent")
	} else {
		if b.tradingWorker == nil {
			return &domain.ConfigError{Field: "exchange.api_secret_file", Err: domain.ErrMissingSecret}
		}
		b.Execution = mercury.NewGateway(b.tradingWorker, cfg.Trading.OrdersPerSecond)
	}

	// 6. Sequencer
	b.Sequencer = engine.NewSequencer(cfg.Trading.InboxSize, b.Engine, b.Execution, journal, engine.SequencerConfig{
		Side:           domain.Side(cfg.Trading.Side),
		OrderQty:       cfg.Trading.OrderQty.InexactFloat64(),
		PricePrecision: cfg.Trading.PricePrecision,
		DumpPath:       cfg.App.DumpPath,
	})

	// 7. Feed workers share one parser and the sequencer inbox.
	parser := mercury.NewParser()
	feed := mercury.Feed(parser, b.Sequencer.Inbox())
	if b.tradingWorker != nil {
		// Open-order snapshots arrive on the trading channel.
		b.tradingWorker.OnMessage(feed)
	}
	b.marketWorker = mercury.NewWorker(
		b.workerConfig("market", mercury.MarketSubscriptions(b.Pair, cfg.Exchange.Granularity, authenticated)),
		feed,
	)

	return nil
}

func (b *Bootstrap) workerConfig(id string, subs []mercury.SubscribeRequest) mercury.WorkerConfig {
	return mercury.WorkerConfig{
		ID:            id,
		URL:           b.Config.Exchange.WSURL,
		Origin:        b.Config.Exchange.Origin,
		Token:         b.Config.Exchange.APISecret,
		Subscriptions: subs,
		ReadTimeout:   time.Duration(b.Config.Exchange.ReadTimeoutSec) * time.Second,
	}
}

// Run starts the sequencer and both connections, then blocks until ctx ends.
// It returns early with the worker's error when the gateway refuses a connection for good.
func (b *Bootstrap) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Sequencer.Run(ctx)
	}()
	slog.InfoContext(ctx, "Sequencer started")

	// A nil channel never fires when there is no trading connection.
	var tradingDone <-chan struct{}
	if b.tradingWorker != nil {
		if err := b.tradingWorker.Connect(ctx); err != nil {
			cancel()
			<-done
			return err
		}
		defer b.tradingWorker.Disconnect()
		tradingDone = b.tradingWorker.Done()
		slog.InfoContext(ctx, "Trading worker started")
	}

	if err := b.marketWorker.Connect(ctx); err != nil {
		cancel()
		<-done
		return err
	}
	defer b.marketWorker.Disconnect()
	slog.InfoContext(ctx, "Market worker started", slog.String("symbol", b.Pair.Symbol()))

	go logMetrics(ctx, metricsInterval)

	var runErr error
	select {
	case <-ctx.Done():
	case <-b.marketWorker.Done():
		runErr = b.marketWorker.Err()
	case <-tradingDone:
		runErr = b.tradingWorker.Err()
	}
	if runErr != nil {
		slog.Error("Gateway connection lost for good", slog.Any("error", runErr))
	}

	slog.Info("Shutting down gracefully...")
	cancel()
	<-done

	slog.Info("Session summary",
		slog.Int("submitted", b.Engine.Submitted()),
		slog.Int("max_orders", b.Engine.MaxOrders()),
		slog.Any("metrics", infra.GlobalMetrics.Snapshot()),
	)
	return runErr
}

// Close releases the order journal.
func (b *Bootstrap) Close() {
	if b.Storage == nil {
		return
	}
	if err := b.Storage.Close(); err != nil {
		slog.Warn("Failed to close order journal", slog.Any("error", err))
	}
}

func logMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			slog.Info("Metrics", slog.Any("metrics", infra.GlobalMetrics.Snapshot()))
		}
	}
}
