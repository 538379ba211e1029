package checkout

import (
	"fmt"
	"time"

	"github.com/safar/storefront/internal/models"
)

const dateLayout = "2 Jan 2006 15:04"

// Stamp carries the identifiers and clock reading an order is created with.
type Stamp struct {
	ID       int64
	Now      time.Time
	Location *time.Location
	Suffix   int
	UserID   string
}

func (s Stamp) OrderNumber() string {
	return fmt.Sprintf("ORD-%d-%03d", s.Now.UnixMilli(), s.Suffix%1000)
}

// InitialStatus is the status an order starts in. Cash is confirmed at
// once; other methods wait for the admin to check the slip.
func InitialStatus(method models.PaymentMethod, meta models.PaymentMeta) models.OrderStatus {
	switch {
	case !method.RequiresSlip():
		return models.OrderStatusConfirmed
	case meta.Verified:
		return models.OrderStatusPending
	default:
		return models.OrderStatusPendingPayment
	}
}

// BuildOrder snapshots the cart lines and collected data into an order.
// It is only valid on the summary step.
func (w *Wizard) BuildOrder(lines []models.CartLine, s Stamp) (models.Order, error) {
	if err := w.require(StepSummary); err != nil {
		return models.Order{}, err
	}
	if len(lines) == 0 {
		return models.Order{}, ErrCartEmpty
	}

	order := models.Order{
		ID:            s.ID,
		OrderNumber:   s.OrderNumber(),
		Items:         append([]models.CartLine(nil), lines...),
		Customer:      w.customer,
		PaymentMethod: w.method,
		PaymentMeta:   w.meta,
		Total:         models.LinesTotal(lines),
		Status:        InitialStatus(w.method, w.meta),
		Date:          s.Now.In(s.Location).Format(dateLayout),
		CreatedAt:     s.Now,
		UserID:        s.UserID,
	}

	if err := order.CheckTotal(); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// EmergencyOrder keeps whatever the customer entered when building the
// real order failed after validation had passed. It always needs an admin
// to review it, so it never starts confirmed.
func (w *Wizard) EmergencyOrder(lines []models.CartLine, s Stamp, cause error) models.Order {
	status := InitialStatus(w.method, w.meta)
	if status == models.OrderStatusConfirmed {
		status = models.OrderStatusPending
	}

	return models.Order{
		ID:            s.ID,
		OrderNumber:   s.OrderNumber(),
		Items:         append([]models.CartLine(nil), lines...),
		Customer:      w.customer,
		PaymentMethod: w.method,
		PaymentMeta:   w.meta,
		Total:         models.LinesTotal(lines),
		Status:        status,
		Date:          s.Now.In(s.Location).Format(dateLayout),
		CreatedAt:     s.Now,
		UserID:        s.UserID,
		Note:          fmt.Sprintf("emergency save: %v", cause),
	}
}
