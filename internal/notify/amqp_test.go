package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/remote"
)

type mockChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (m *mockChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	m.exchange = exchange
	m.key = key
	m.msg = msg
	return m.err
}

func TestAMQPPublishesOrderEvent(t *testing.T) {
	ch := &mockChannel{}
	pub := &AMQP{ch: ch, exchange: "orders_exchange"}

	order := testOrder()
	order.PaymentMethod = models.PaymentTransfer
	order.PaymentMeta = models.PaymentMeta{SlipImageData: "data:image/png;base64,AAAA", Verified: true}

	require.NoError(t, pub.SendOrderSummary(context.Background(), order))

	assert.Equal(t, "orders_exchange", ch.exchange)
	assert.Equal(t, RoutingKeyOrderCreated, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var event OrderEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &event))
	assert.Equal(t, order.OrderNumber, event.OrderNumber)
	assert.Equal(t, int64(80), event.Total)
	assert.Empty(t, event.Order.PaymentMeta.SlipImageData)
	assert.True(t, event.Order.PaymentMeta.Verified)
}

func TestAMQPClassifiesFailures(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		err  error
		kind remote.Kind
	}{
		{"access refused", &amqp.Error{Code: amqp.AccessRefused, Reason: "no access"}, remote.KindPermission},
		{"closed", amqp.ErrClosed, remote.KindTransient},
		{"deadline", context.DeadlineExceeded, remote.KindTransient},
		{"other", errors.New("boom"), remote.KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &AMQP{ch: &mockChannel{err: tc.err}, exchange: "x"}
			err := pub.SendOrderSummary(ctx, testOrder())
			assert.Equal(t, tc.kind, remote.KindOf(err))
		})
	}
}

func TestAMQPNotConfigured(t *testing.T) {
	var pub *AMQP
	assert.False(t, pub.Configured())
	assert.ErrorIs(t, pub.SendOrderSummary(context.Background(), testOrder()), remote.ErrNotConfigured)
	assert.NoError(t, pub.Close())
}
