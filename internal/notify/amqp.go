package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/remote"
)

const RoutingKeyOrderCreated = "order.created"

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQP publishes order summaries to a topic exchange for back-office consumers.
type AMQP struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// OrderEvent is the message body published for each new order.
type OrderEvent struct {
	Type        string       `json:"type"`
	OrderNumber string       `json:"order_number"`
	UserID      string       `json:"user_id"`
	Total       int64        `json:"total"`
	Status      string       `json:"status"`
	Summary     string       `json:"summary"`
	Order       models.Order `json:"order"`
}

func DialAMQP(cfg config.RabbitMQConfig) (*AMQP, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	return &AMQP{conn: conn, ch: ch, exchange: cfg.Exchange}, nil
}

func (a *AMQP) Name() string { return "rabbitmq" }

func (a *AMQP) Configured() bool { return a != nil && a.ch != nil }

func (a *AMQP) SendOrderSummary(ctx context.Context, order models.Order) error {
	if !a.Configured() {
		return remote.ErrNotConfigured
	}

	// The slip image stays in the local store.
	order.PaymentMeta.SlipImageData = ""
	body, err := json.Marshal(OrderEvent{
		Type:        RoutingKeyOrderCreated,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		Status:      string(order.Status),
		Summary:     Summary(order),
		Order:       order,
	})
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	err = a.ch.PublishWithContext(ctx, a.exchange, RoutingKeyOrderCreated,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			ContentType:  "application/json",
			MessageId:    order.OrderNumber,
			Body:         body,
		})
	if err != nil {
		return classifyAMQP(err)
	}
	return nil
}

func (a *AMQP) Close() error {
	if a == nil || a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

func classifyAMQP(err error) error {
	kind := remote.KindOf(err)

	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		switch {
		case amqpErr.Code == amqp.AccessRefused:
			kind = remote.KindPermission
		case amqpErr.Recover, errors.Is(err, amqp.ErrClosed):
			kind = remote.KindTransient
		}
	}

	return &remote.Error{Kind: kind, Op: "rabbitmq publish", Err: err}
}

var _ Notifier = (*AMQP)(nil)
