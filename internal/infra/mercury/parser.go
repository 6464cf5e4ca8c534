package mercury

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"bcx_go/internal/domain"
	"bcx_go/internal/event"
)

// Parser maps raw gateway messages to market events.
// Channels the engine does not consume are logged and dropped.
type Parser struct {
	logger *slog.Logger
}

func NewParser() *Parser {
	return &Parser{logger: slog.Default().With("module", "mercury_parser")}
}

// Parse decodes one websocket text frame. A nil slice with a nil error means
// the message was valid but carries nothing for the engine.
func (p *Parser) Parse(raw []byte) ([]event.MarketEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}

	switch env.Event {
	case EventSubscribed, EventUnsubscribed:
		p.logger.Info("Subscription acknowledged", slog.String("channel", env.Channel), slog.String("event", env.Event))
		return nil, nil
	case EventRejected:
		return nil, fmt.Errorf("%w: channel=%s text=%s", domain.ErrRejected, env.Channel, env.Text)
	}

	switch env.Channel {
	case ChannelTicker:
		return p.parseTicker(raw)
	case ChannelPrices:
		return p.parsePrices(raw)
	case ChannelL2:
		return p.parseL2(raw)
	case ChannelTrading:
		return p.parseTrading(env, raw)
	case ChannelBalances:
		p.logger.Info("Latest balances", slog.String("payload", string(raw)))
		return nil, nil
	case ChannelHeartbeat, ChannelAuth:
		return nil, nil
	case "":
		return nil, fmt.Errorf("%w: missing channel", domain.ErrMalformedMessage)
	default:
		p.logger.Debug("Other channel", slog.String("channel", env.Channel), slog.String("payload", string(raw)))
		return nil, nil
	}
}

func (p *Parser) parseTicker(raw []byte) ([]event.MarketEvent, error) {
	var msg tickerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: ticker: %v", domain.ErrMalformedMessage, err)
	}
	if msg.LastTradePrice == nil {
		return nil, nil
	}

	p.logger.Debug("Ticker tick", slog.String("symbol", msg.Symbol), slog.Float64("last_trade_price", *msg.LastTradePrice))
	return []event.MarketEvent{event.MarketData{LastTradePrice: event.Price(*msg.LastTradePrice)}}, nil
}

func (p *Parser) parsePrices(raw []byte) ([]event.MarketEvent, error) {
	var msg pricesMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: prices: %v", domain.ErrMalformedMessage, err)
	}
	if msg.Price == nil {
		return nil, nil
	}
	if len(msg.Price) != 6 {
		return nil, fmt.Errorf("%w: prices: expected 6 values, got %d", domain.ErrMalformedMessage, len(msg.Price))
	}

	bar := domain.PriceBar{
		Timestamp: msg.Price[0],
		Open:      msg.Price[1],
		High:      msg.Price[2],
		Low:       msg.Price[3],
		Close:     msg.Price[4],
		Volume:    msg.Price[5],
	}

	p.logger.Debug("Price tick",
		slog.String("symbol", msg.Symbol),
		slog.Float64("high", bar.High),
		slog.Float64("low", bar.Low),
		slog.Float64("open", bar.Open),
		slog.Float64("close", bar.Close),
	)
	return []event.MarketEvent{event.MarketData{PriceBar: &bar}}, nil
}

func (p *Parser) parseL2(raw []byte) ([]event.MarketEvent, error) {
	var book domain.OrderBook
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, fmt.Errorf("%w: l2: %v", domain.ErrMalformedMessage, err)
	}
	return []event.MarketEvent{event.MarketData{Book: &book}}, nil
}

func (p *Parser) parseTrading(env envelope, raw []byte) ([]event.MarketEvent, error) {
	var msg tradingMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: trading: %v", domain.ErrMalformedMessage, err)
	}

	if env.Event != EventSnapshot {
		p.logger.Info("Execution report",
			slog.String("event", env.Event),
			slog.String("order_id", msg.OrderID),
			slog.String("cl_ord_id", msg.ClOrdID),
			slog.String("ord_status", msg.OrdStatus),
			slog.String("exec_type", msg.ExecType),
			slog.Float64("price", msg.Price),
			slog.Float64("cum_qty", msg.CumQty),
			slog.String("text", msg.Text),
		)
		return nil, nil
	}

	ids := make([]string, 0, len(msg.Orders))
	for _, o := range msg.Orders {
		if o.OrderID == "" {
			continue
		}
		ids = append(ids, o.OrderID)
	}
	if len(ids) == 0 {
		p.logger.Info("No active orders")
	} else {
		p.logger.Info("Open orders", slog.Any("order_ids", ids))
	}
	return []event.MarketEvent{event.OpenOrdersSnapshot{OrderIDs: ids}}, nil
}
