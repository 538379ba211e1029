package ledger

import (
	"fmt"
	"strings"

	"github.com/safar/storefront/internal/models"
)

func Title(order models.Order) string {
	return fmt.Sprintf("%s · %s · %s", order.OrderNumber, order.Customer.Name, models.FormatMoney(order.Total))
}

// Body renders the order as markdown. The slip image itself is left out.
func Body(order models.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Order %s\n\n", order.OrderNumber)
	fmt.Fprintf(&b, "**Date:** %s  \n**Status:** %s  \n**User:** %s\n\n", order.Date, order.Status, order.UserID)

	b.WriteString("### Customer\n\n")
	fmt.Fprintf(&b, "- Name: %s\n- Phone: %s\n- Address: %s\n", order.Customer.Name, order.Customer.Phone, order.Customer.Address)
	if order.Customer.Note != "" {
		fmt.Fprintf(&b, "- Note: %s\n", order.Customer.Note)
	}

	b.WriteString("\n### Items\n\n| Item | Qty | Price | Subtotal |\n|---|---:|---:|---:|\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "| %s | %d | %s | %s |\n",
			item.Name, item.Quantity, models.FormatMoney(item.Price), models.FormatMoney(item.Subtotal()))
	}
	fmt.Fprintf(&b, "\n**Total:** %s\n\n", models.FormatMoney(order.Total))

	b.WriteString("### Payment\n\n")
	fmt.Fprintf(&b, "- Method: %s\n", order.PaymentMethod)
	if order.PaymentMeta.TransferRef != "" {
		fmt.Fprintf(&b, "- Reference: %s\n", order.PaymentMeta.TransferRef)
	}
	if order.PaymentMethod.RequiresSlip() {
		slip := "missing"
		if order.PaymentMeta.SlipImageData != "" {
			slip = "attached"
		}
		fmt.Fprintf(&b, "- Slip: %s\n- Verified: %t\n", slip, order.PaymentMeta.Verified)
	}

	if order.Note != "" {
		fmt.Fprintf(&b, "\n> %s\n", order.Note)
	}

	return b.String()
}
