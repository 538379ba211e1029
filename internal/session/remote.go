package session

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/safar/storefront/internal/metrics"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/remote"
)

const ledgerAdapter = "ledger"

// goRemote runs fn in the background under the remote timeout. Its error
// is counted, logged and turned into a notice for audience; it never
// reaches the caller that triggered it.
func (c *Controller) goRemote(adapter, audience string, fields logrus.Fields, fn func(ctx context.Context) error) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.remoteTimeout)
		defer cancel()

		err := fn(ctx)
		if err == nil {
			metrics.RecordRemoteCall(adapter, "ok")
			return
		}

		kind := remote.KindOf(err)
		metrics.RecordRemoteCall(adapter, string(kind))
		c.log.WithFields(fields).WithFields(logrus.Fields{
			"adapter": adapter,
			"kind":    kind,
		}).WithError(err).Warn("remote call failed")

		c.notices.post(audience, noticeFor(adapter, kind))
	}()
}

func noticeFor(adapter string, kind remote.Kind) Notice {
	if kind == remote.KindPermission {
		return Notice{
			Level:   NoticeWarning,
			Message: fmt.Sprintf("%s needs permission again. Your order is saved.", adapter),
			Action:  ActionReauthenticate,
		}
	}
	return Notice{
		Level:   NoticeWarning,
		Message: fmt.Sprintf("Could not reach %s. Your order is saved.", adapter),
	}
}

func (c *Controller) ledgerReady() bool {
	return c.ledger != nil && c.ledger.Configured()
}

// mirrorOrder records the order in the ledger and remembers the issue
// number. Callers hold c.mu.
func (c *Controller) mirrorOrder(order models.Order) {
	if !c.ledgerReady() {
		return
	}

	fields := logrus.Fields{"order_number": order.OrderNumber, "user_id": order.UserID}
	c.goRemote(ledgerAdapter, order.UserID, fields, func(ctx context.Context) error {
		issue, err := c.ledger.CreateOrder(ctx, order)
		if err != nil {
			return err
		}
		c.recordIssue(order.ID, issue)
		return nil
	})
}

// notifyOrder sends the order summary on every configured channel.
// Callers hold c.mu.
func (c *Controller) notifyOrder(order models.Order) {
	fields := logrus.Fields{"order_number": order.OrderNumber, "user_id": order.UserID}
	for _, n := range c.notifiers {
		if !n.Configured() {
			continue
		}
		c.goRemote(n.Name(), order.UserID, fields, func(ctx context.Context) error {
			return n.SendOrderSummary(ctx, order)
		})
	}
}

// mirrorStatus moves the order's ledger issue to the new status, locating
// the issue by order number when it was never recorded.
func (c *Controller) mirrorStatus(order models.Order) {
	if !c.ledgerReady() {
		return
	}

	fields := logrus.Fields{"order_number": order.OrderNumber, "status": order.Status}
	c.goRemote(ledgerAdapter, AdminAudience, fields, func(ctx context.Context) error {
		issue := order.RemoteIssue
		if issue == 0 {
			found, err := c.ledger.FindIssue(ctx, order.OrderNumber)
			if err != nil {
				return fmt.Errorf("find issue for %s: %w", order.OrderNumber, err)
			}
			issue = found
			c.recordIssue(order.ID, issue)
		}
		return c.ledger.SetStatus(ctx, issue, order.Status)
	})
}

func (c *Controller) recordIssue(orderID int64, issue int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.orders.SetRemoteIssue(context.Background(), orderID, issue); err != nil {
		c.log.WithField("order_id", orderID).WithError(err).Warn("record ledger issue failed")
	}
}
