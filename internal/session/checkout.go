package session

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/safar/storefront/internal/checkout"
	"github.com/safar/storefront/internal/metrics"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/store"
)

// CheckoutView is what the storefront renders for the active checkout.
type CheckoutView struct {
	ID            string               `json:"id"`
	Step          string               `json:"step"`
	StepNumber    int                  `json:"step_number"`
	Customer      models.Customer      `json:"customer"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	HasSlip       bool                 `json:"has_slip"`
	Cart          store.CartView       `json:"cart"`
	Receipt       *models.Order        `json:"receipt,omitempty"`
}

// StartCheckout opens a fresh checkout for the user, replacing any earlier
// one, prefilled with the last customer details they confirmed.
func (c *Controller) StartCheckout(ctx context.Context, userID string) (CheckoutView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart, err := c.cart(ctx, userID)
	if err != nil {
		return CheckoutView{}, err
	}

	prefill, _, err := c.customers.Load(ctx, userID)
	if err != nil {
		c.log.WithField("user_id", userID).WithError(err).Warn("load customer info failed")
	}

	w := checkout.New(prefill)
	delete(c.wizards, userID)
	c.evictCheckouts()
	c.wizards[userID] = &openCheckout{wizard: w, started: c.now()}
	return c.view(w, cart), nil
}

// Checkout renders the active checkout. A receipt is shown once, after
// which the finished checkout is dropped.
func (c *Controller) Checkout(ctx context.Context, userID string) (CheckoutView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, cart, err := c.checkout(ctx, userID)
	if err != nil {
		return CheckoutView{}, err
	}
	if w.Step() == checkout.StepReceipt {
		delete(c.wizards, userID)
	}
	return c.view(w, cart), nil
}

// CloseCheckout abandons the checkout and everything it collected.
func (c *Controller) CloseCheckout(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.wizards, userID)
}

// NextStep validates the current step and advances. Leaving the customer
// step also remembers the details for the next checkout.
func (c *Controller) NextStep(ctx context.Context, userID string) (CheckoutView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, cart, err := c.checkout(ctx, userID)
	if err != nil {
		return CheckoutView{}, err
	}

	from := w.Step()
	if err := w.Next(cart.Lines()); err != nil {
		return c.view(w, cart), err
	}
	if from == checkout.StepCustomerInfo {
		c.customers.Save(ctx, userID, w.Customer())
	}
	return c.view(w, cart), nil
}

func (c *Controller) BackStep(ctx context.Context, userID string) (CheckoutView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, cart, err := c.checkout(ctx, userID)
	if err != nil {
		return CheckoutView{}, err
	}
	if err := w.Back(); err != nil {
		return c.view(w, cart), err
	}
	return c.view(w, cart), nil
}

func (c *Controller) SetCustomer(ctx context.Context, userID string, customer models.Customer) (CheckoutView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, cart, err := c.checkout(ctx, userID)
	if err != nil {
		return CheckoutView{}, err
	}
	if err := w.SetCustomer(customer); err != nil {
		return c.view(w, cart), err
	}
	return c.view(w, cart), nil
}

func (c *Controller) SetPayment(ctx context.Context, userID string, method models.PaymentMethod, transferRef string, slip *checkout.Slip) (CheckoutView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, cart, err := c.checkout(ctx, userID)
	if err != nil {
		return CheckoutView{}, err
	}
	if err := w.SetPayment(method, transferRef, slip); err != nil {
		return c.view(w, cart), err
	}
	return c.view(w, cart), nil
}

// Confirm commits the order from the summary step. Once the order is in
// the local collection the checkout has succeeded: the cart is cleared and
// the ledger and notification calls run in the background, where failures
// only produce notices.
func (c *Controller) Confirm(ctx context.Context, userID string) (models.Order, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, cart, err := c.checkout(ctx, userID)
	if err != nil {
		return models.Order{}, err
	}
	if w.Step() != checkout.StepSummary {
		if w.Step() == checkout.StepReceipt {
			return models.Order{}, checkout.ErrWizardClosed
		}
		return models.Order{}, checkout.ErrInvalidTransition
	}

	lines := cart.Lines()
	if len(lines) == 0 {
		metrics.RecordOrderOperation("confirm", false)
		return models.Order{}, checkout.ErrCartEmpty
	}

	now := c.now()
	stamp := checkout.Stamp{
		ID:       c.orders.NextID(now),
		Now:      now,
		Location: c.loc,
		Suffix:   c.suffix(),
		UserID:   userID,
	}

	order, err := buildOrder(w, lines, stamp)
	if err != nil {
		order = w.EmergencyOrder(lines, stamp, err)
		c.log.WithFields(logrus.Fields{
			"order_number": order.OrderNumber,
			"user_id":      userID,
		}).WithError(err).Error("build order failed, saved emergency order")
	}

	order = c.orders.Create(ctx, order)
	cart.Clear(ctx)
	if err := w.Complete(order); err != nil {
		c.log.WithError(err).Warn("complete checkout")
	}
	metrics.RecordOrderOperation("confirm", true)

	c.log.WithFields(logrus.Fields{
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total":        order.Total,
		"status":       order.Status,
	}).Info("order created")

	c.mirrorOrder(order)
	c.notifyOrder(order)

	return order, nil
}

// buildOrder turns a panic while assembling the order into an error so the
// emergency path can still keep the customer's data.
func buildOrder(w *checkout.Wizard, lines []models.CartLine, s checkout.Stamp) (order models.Order, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("build order panicked: %v", r)
		}
	}()
	return w.BuildOrder(lines, s)
}

type openCheckout struct {
	wizard  *checkout.Wizard
	started time.Time
}

// evictCheckouts makes room for one more checkout, dropping finished ones
// first and then the oldest. Callers hold c.mu.
func (c *Controller) evictCheckouts() {
	if len(c.wizards) < c.maxCheckouts {
		return
	}
	for id, open := range c.wizards {
		if open.wizard.Step() == checkout.StepReceipt {
			delete(c.wizards, id)
		}
	}

	for len(c.wizards) >= c.maxCheckouts {
		var oldest *string
		var started time.Time
		for id, open := range c.wizards {
			if oldest == nil || open.started.Before(started) {
				oldest, started = &id, open.started
			}
		}
		c.log.WithField("user_id", *oldest).Warn("too many open checkouts, dropping the oldest")
		delete(c.wizards, *oldest)
	}
}

// checkout returns the user's active wizard and cart. Callers hold c.mu.
func (c *Controller) checkout(ctx context.Context, userID string) (*checkout.Wizard, *store.Cart, error) {
	open, ok := c.wizards[userID]
	if !ok {
		return nil, nil, ErrNoCheckout
	}
	cart, err := c.cart(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return open.wizard, cart, nil
}

func (c *Controller) view(w *checkout.Wizard, cart *store.Cart) CheckoutView {
	method, _ := w.Payment()
	v := CheckoutView{
		ID:            w.ID().String(),
		Step:          w.Step().String(),
		StepNumber:    int(w.Step()),
		Customer:      w.Customer(),
		PaymentMethod: method,
		HasSlip:       w.HasSlip(),
		Cart:          cart.View(),
	}
	if receipt, ok := w.Receipt(); ok {
		v.Receipt = &receipt
	}
	return v
}
