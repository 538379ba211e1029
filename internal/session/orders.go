package session

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/ledger"
	"github.com/safar/storefront/internal/metrics"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
)

// ListOrders filters the collection, most recent first, and returns one page.
func (c *Controller) ListOrders(f store.Filter, page, pageSize int) *store.OffsetPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return store.Paginate(c.orders.ListFiltered(f), page, pageSize)
}

func (c *Controller) Order(id int64) (models.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	order, ok := c.orders.FindByID(id)
	if !ok {
		return models.Order{}, database.ErrOrderNotFound
	}
	return order, nil
}

// SetOrderStatus applies the admin's status change locally, then mirrors
// it to the ledger in the background.
func (c *Controller) SetOrderStatus(ctx context.Context, id int64, status models.OrderStatus) (models.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	order, err := c.orders.SetStatus(ctx, id, status)
	metrics.RecordOrderOperation("set_status", err == nil)
	if err != nil {
		return models.Order{}, err
	}

	c.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"status":       status,
	}).Info("order status changed")

	c.mirrorStatus(order)
	return order, nil
}

func (c *Controller) Report() store.Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orders.Report(c.now())
}

// LedgerSettings reports the active ledger credentials; the token is never
// serialized.
func (c *Controller) LedgerSettings() (ledger.Settings, bool) {
	if c.ledger == nil {
		return ledger.Settings{}, false
	}
	s := c.ledger.Settings()
	return s, s.Configured()
}

// UpdateLedgerSettings swaps the ledger credentials and stores them for
// later runs. An empty token keeps the current one.
func (c *Controller) UpdateLedgerSettings(ctx context.Context, s ledger.Settings) error {
	if c.ledger == nil {
		return ErrNoLedger
	}
	if s.Token == "" {
		s.Token = c.ledger.Settings().Token
	}
	if err := c.ledger.Configure(s); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return ledger.SaveSettings(ctx, c.kv, s)
}

// LedgerOrders lists the orders mirrored in the ledger.
func (c *Controller) LedgerOrders(ctx context.Context) ([]ledger.RemoteOrder, error) {
	if c.ledger == nil {
		return nil, ErrNoLedger
	}

	ctx, cancel := context.WithTimeout(ctx, c.remoteTimeout)
	defer cancel()
	return c.ledger.ListOrders(ctx)
}
