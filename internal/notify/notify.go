// Package notify pushes order summaries to the channels that tell the shop
// about new orders. Delivery is best effort and never affects the order.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/safar/storefront/internal/models"
)

type Notifier interface {
	// Name identifies the channel in logs and metrics.
	Name() string
	Configured() bool
	SendOrderSummary(ctx context.Context, order models.Order) error
}

// Summary renders the order as plain text, one item per line.
func Summary(order models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New order %s\n", order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%s x%d %s\n", item.Name, item.Quantity, models.FormatMoney(item.Subtotal()))
	}
	fmt.Fprintf(&b, "Total %s (%s)\n", models.FormatMoney(order.Total), order.PaymentMethod)
	fmt.Fprintf(&b, "%s, %s\n%s", order.Customer.Name, order.Customer.Phone, order.Customer.Address)

	return b.String()
}
