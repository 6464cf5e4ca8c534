package mercury

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bcx_go/internal/domain"
	"bcx_go/internal/event"
	"bcx_go/internal/infra"

	"github.com/gorilla/websocket"
)

const maxRetries = 10

// MessageHandler receives every text frame read from the connection.
type MessageHandler func(ctx context.Context, msg []byte)

// WorkerConfig describes one gateway connection.
type WorkerConfig struct {
	ID            string
	URL           string
	Origin        string
	Token         string // empty skips the auth handshake
	Subscriptions []SubscribeRequest
	ReadTimeout   time.Duration
	PingInterval  time.Duration
}

// Worker handles one Mercury gateway WebSocket connection
type Worker struct {
	cfg       WorkerConfig
	handler   MessageHandler
	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}
	err       error
	metrics   *infra.Metrics
}

// NewWorker creates a new gateway worker
func NewWorker(cfg WorkerConfig, handler MessageHandler) *Worker {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	return &Worker{
		cfg:     cfg,
		handler: handler,
		done:    make(chan struct{}),
		metrics: infra.GlobalMetrics,
	}
}

// OnMessage replaces the message handler. Call it before Connect.
func (w *Worker) OnMessage(handler MessageHandler) {
	w.handler = handler
}

// Connect starts the WebSocket connection with automatic reconnection
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.connectionLoop(ctx)

	return nil
}

// connectionLoop handles connection and reconnection with exponential backoff
func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Mercury worker panic recovered", slog.String("id", w.cfg.ID), slog.Any("panic", r))
		}
	}()

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("Mercury connection loop stopped", slog.String("id", w.cfg.ID))
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			if !domain.IsRetriable(err) {
				slog.Error("Mercury connection refused, giving up",
					slog.String("id", w.cfg.ID),
					slog.Any("error", err),
				)
				w.mu.Lock()
				w.err = err
				w.mu.Unlock()
				return
			}
			slog.Warn("Mercury connection failed",
				slog.String("id", w.cfg.ID),
				slog.Any("error", err),
				slog.Int("retry", retryCount),
			)

			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				slog.Error("Mercury max retries exceeded, resetting counter", slog.String("id", w.cfg.ID))
				retryCount = 0
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retryCount = 0
		w.readLoop(ctx)
	}
}

// connect dials, authenticates and subscribes.
func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	header := make(http.Header)
	if w.cfg.Origin != "" {
		header.Set("Origin", w.cfg.Origin)
	}

	conn, resp, err := dialer.DialContext(ctx, w.cfg.URL, header)
	if err != nil {
		if resp != nil {
			return domain.NewHandshakeError(resp.StatusCode, err)
		}
		return domain.NewNetworkError("dial", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()
	w.metrics.IncrementConnections()

	if w.cfg.Token != "" {
		if err := w.writeJSON(AuthRequest(w.cfg.Token)); err != nil {
			w.closeConnection()
			return domain.NewNetworkError("auth", err)
		}
	}

	for _, sub := range w.cfg.Subscriptions {
		slog.Info("Attempt to subscribe to channel", slog.String("id", w.cfg.ID), slog.String("channel", sub.Channel))
		if err := w.writeJSON(sub); err != nil {
			w.closeConnection()
			return domain.NewNetworkError("subscribe", err)
		}
	}

	go w.pingLoop(ctx, conn)

	slog.Info("Mercury WebSocket connected",
		slog.String("id", w.cfg.ID),
		slog.Int("subscriptions", len(w.cfg.Subscriptions)),
	)
	return nil
}

func (w *Worker) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.threadSafeWrite(websocket.TextMessage, b)
}

// Send writes a text frame. It fails fast when disconnected.
func (w *Worker) Send(data []byte) error {
	if err := w.threadSafeWrite(websocket.TextMessage, data); err != nil {
		return domain.NewNetworkError("write", err)
	}
	return nil
}

// threadSafeWrite sends a message to the WebSocket connection in a thread-safe manner
func (w *Worker) threadSafeWrite(messageType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.RLock()
	conn := w.conn
	w.mu.RUnlock()

	if conn == nil {
		return domain.ErrNotConnected
	}

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(messageType, data)
}

// readLoop reads messages until the connection fails or ctx ends.
func (w *Worker) readLoop(ctx context.Context) {
	w.mu.RLock()
	conn := w.conn
	w.mu.RUnlock()
	if conn == nil {
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(w.cfg.ReadTimeout))
	})

	for {
		select {
		case <-ctx.Done():
			w.closeConnection()
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(w.cfg.ReadTimeout))

		msgType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Mercury WebSocket read error", slog.String("id", w.cfg.ID), slog.Any("error", err))
			}
			w.closeConnection()
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		w.metrics.RecordMessage()
		if w.handler != nil {
			w.handler(ctx, message)
		}
	}
}

func (w *Worker) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(w.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mu.RLock()
			current := w.conn
			w.mu.RUnlock()
			if current != conn {
				return
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				slog.Warn("Mercury ping error", slog.String("id", w.cfg.ID), slog.Any("error", err))
				return
			}
		}
	}
}

// closeConnection safely closes the WebSocket connection
func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	if w.connected {
		w.connected = false
		w.metrics.DecrementConnections()
	}
}

// Disconnect closes the WebSocket connection
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
	slog.Info("Mercury WebSocket disconnected", slog.String("id", w.cfg.ID))
}

// Done is closed once the connection loop has exited, either because ctx
// ended or because the gateway refused the connection for good.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Err returns the fatal error that stopped the worker, or nil.
func (w *Worker) Err() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.err
}

// IsConnected returns connection status
func (w *Worker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Feed returns a handler that parses each message and forwards the events to inbox.
// Sends block so that no event is dropped; ctx cancellation unblocks them.
func Feed(parser *Parser, inbox chan<- event.MarketEvent) MessageHandler {
	return func(ctx context.Context, msg []byte) {
		events, err := parser.Parse(msg)
		if err != nil {
			infra.GlobalMetrics.RecordParseError()
			slog.Warn("Skipping message", slog.Any("error", err))
			return
		}
		for _, ev := range events {
			select {
			case inbox <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
