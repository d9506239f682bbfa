package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const defaultExchange = "luxelens.events"

// AMQPNotifier publishes completion events to a fanout exchange so other
// services (e.g. the front-end push channel) can react to finished work.
type AMQPNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   zerolog.Logger
}

// NewAMQPNotifier dials the broker and declares the target exchange.
func NewAMQPNotifier(url, exchange string, logger zerolog.Logger) (*AMQPNotifier, error) {
	if exchange == "" {
		exchange = defaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("notify: dial amqp: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("notify: declare exchange: %w", err)
	}
	return &AMQPNotifier{conn: conn, channel: channel, exchange: exchange, logger: logger}, nil
}

func (n *AMQPNotifier) GenerationCompleted(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("notify: encode event: %w", err)
	}
	err = n.channel.PublishWithContext(ctx, n.exchange, string(evt.Kind), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("notify: publish event: %w", err)
	}
	n.logger.Debug().Str("kind", string(evt.Kind)).Msg("notify: event published")
	return nil
}

// Close releases the channel and connection.
func (n *AMQPNotifier) Close() error {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

var _ Notifier = (*AMQPNotifier)(nil)
