package models

import (
	"errors"
	"fmt"
	"time"
)

type Category string

const (
	CategoryIce   Category = "ice"
	CategoryWater Category = "water"
	CategoryGas   Category = "gas"
	CategoryOther Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryIce, CategoryWater, CategoryGas, CategoryOther:
		return true
	}
	return false
}

type Product struct {
	ID          int64    `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Price       int64    `json:"price" yaml:"price"`
	Stock       int      `json:"stock" yaml:"stock"`
	Category    Category `json:"category" yaml:"category"`
	Icon        string   `json:"icon,omitempty" yaml:"icon"`
	Image       string   `json:"image,omitempty" yaml:"image"`
}

// CartLine copies the display fields of a product at the time it was added.
// Orders keep these copies, so later catalog edits never reach them.
type CartLine struct {
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Price     int64    `json:"price"`
	Category  Category `json:"category"`
	Icon      string   `json:"icon,omitempty"`
	Image     string   `json:"image,omitempty"`
	Quantity  int      `json:"quantity"`
}

func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

func LineFromProduct(p Product, quantity int) CartLine {
	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		Icon:      p.Icon,
		Image:     p.Image,
		Quantity:  quantity,
	}
}

func LinesTotal(lines []CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

type Customer struct {
	Name    string `json:"customer_name"`
	Phone   string `json:"customer_phone"`
	Address string `json:"delivery_address"`
	Note    string `json:"delivery_note,omitempty"`
}

type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentTransfer  PaymentMethod = "transfer"
	PaymentPromptPay PaymentMethod = "promptpay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentTransfer, PaymentPromptPay:
		return true
	}
	return false
}

// RequiresSlip reports whether the method needs an uploaded payment slip.
func (m PaymentMethod) RequiresSlip() bool {
	return m == PaymentTransfer || m == PaymentPromptPay
}

type PaymentMeta struct {
	TransferRef   string `json:"transfer_ref,omitempty"`
	SlipImageData string `json:"slip_image_data,omitempty"`
	Verified      bool   `json:"verified"`
}

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

var ErrTotalMismatch = errors.New("order total does not match items")

type Order struct {
	ID            int64         `json:"id"`
	OrderNumber   string        `json:"order_number"`
	Items         []CartLine    `json:"items"`
	Customer      Customer      `json:"customer"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentMeta   PaymentMeta   `json:"payment_meta"`
	Total         int64         `json:"total"`
	Status        OrderStatus   `json:"status"`
	Date          string        `json:"date"`
	CreatedAt     time.Time     `json:"created_at"`
	UserID        string        `json:"user_id"`
	Note          string        `json:"note,omitempty"`
	RemoteIssue   int           `json:"remote_issue,omitempty"`
}

// CheckTotal verifies the total invariant. It is run once, when the order
// is built.
func (o *Order) CheckTotal() error {
	if sum := LinesTotal(o.Items); sum != o.Total {
		return fmt.Errorf("%w: total %d, items %d", ErrTotalMismatch, o.Total, sum)
	}
	return nil
}

// Counted reports whether the order contributes to revenue.
func (o *Order) Counted() bool {
	return o.Status != OrderStatusCancelled
}
