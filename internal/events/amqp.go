package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout = 2 * time.Second
	dialTimeout    = 2 * time.Second
	// redialInterval spaces reconnect attempts while the broker is down so
	// writes fail fast instead of each waiting on a dial.
	redialInterval = 5 * time.Second
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// dialFunc opens a connection and a channel on which the exchange exists.
type dialFunc func() (io.Closer, channel, error)

// AMQPPublisher writes events as JSON to a topic exchange, routed by event type.
// A channel closed by the broker is replaced on the next Publish.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     io.Closer
	ch       channel
	dial     dialFunc
	nextDial time.Time
	shutdown bool
	exchange string
	logger   *slog.Logger
}

// NewAMQPPublisher dials url and declares a durable topic exchange.
func NewAMQPPublisher(url, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{
		exchange: exchange,
		logger:   logger,
		dial: func() (io.Closer, channel, error) {
			return dialExchange(url, exchange)
		},
	}

	conn, ch, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.conn, p.ch = conn, ch

	if logger != nil {
		logger.Info("event publisher connected", "exchange", exchange)
	}
	return p, nil
}

func dialExchange(url, exchange string) (io.Closer, channel, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return conn, ch, nil
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, evt Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", evt.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureChannel(); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, evt.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Type:         evt.Type,
		Timestamp:    evt.OccurredAt,
		AppId:        "staybook-server",
		Body:         body,
	})
	if err != nil {
		if p.ch.IsClosed() {
			_ = p.drop()
		}
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// ensureChannel redials when the channel is gone. Callers hold p.mu.
func (p *AMQPPublisher) ensureChannel() error {
	if p.shutdown {
		return amqp.ErrClosed
	}
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	_ = p.drop()

	now := time.Now()
	if p.dial == nil || now.Before(p.nextDial) {
		return amqp.ErrClosed
	}

	conn, ch, err := p.dial()
	if err != nil {
		p.nextDial = now.Add(redialInterval)
		return fmt.Errorf("reconnect: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.nextDial = time.Time{}

	if p.logger != nil {
		p.logger.Info("event publisher reconnected", "exchange", p.exchange)
	}
	return nil
}

// drop closes and forgets the current channel and connection.
func (p *AMQPPublisher) drop() error {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		if err != nil && !errors.Is(err, amqp.ErrClosed) {
			return err
		}
	}
	return nil
}

// Shutdown closes the channel and connection. Later publishes fail.
func (p *AMQPPublisher) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.shutdown = true
	return p.drop()
}
