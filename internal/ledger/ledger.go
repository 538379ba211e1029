// Package ledger mirrors orders to an issue tracker used as a remote order
// log. Every call is best effort: the local order is already committed.
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/safar/storefront/internal/models"
)

const (
	LabelOrder    = "order"
	statusPrefix  = "status:"
	paymentPrefix = "payment:"
)

var ErrIssueNotFound = errors.New("ledger issue not found")

type Ledger interface {
	Configured() bool
	// CreateOrder opens a remote record for the order and returns its issue number.
	CreateOrder(ctx context.Context, order models.Order) (int, error)
	// SetStatus swaps the status labels on the issue, leaving other labels alone.
	SetStatus(ctx context.Context, issue int, status models.OrderStatus) error
	// FindIssue locates the issue mirroring an order number.
	FindIssue(ctx context.Context, orderNumber string) (int, error)
	ListOrders(ctx context.Context) ([]RemoteOrder, error)
}

// RemoteOrder is an order as it appears in the ledger.
type RemoteOrder struct {
	Issue  int                `json:"issue"`
	Title  string             `json:"title"`
	State  string             `json:"state"`
	Status models.OrderStatus `json:"status,omitempty"`
	Labels []string           `json:"labels"`
	URL    string             `json:"url"`
}

func StatusLabel(status models.OrderStatus) string {
	return statusPrefix + string(status)
}

func PaymentLabel(method models.PaymentMethod) string {
	return paymentPrefix + string(method)
}

// Labels derives the label set for a new order record.
func Labels(order models.Order) []string {
	return []string{LabelOrder, StatusLabel(order.Status), PaymentLabel(order.PaymentMethod)}
}

// ReplaceStatus drops every status label and appends the new one.
func ReplaceStatus(labels []string, status models.OrderStatus) []string {
	result := make([]string, 0, len(labels)+1)
	for _, l := range labels {
		if !strings.HasPrefix(l, statusPrefix) {
			result = append(result, l)
		}
	}
	return append(result, StatusLabel(status))
}

func statusFromLabels(labels []string) models.OrderStatus {
	for _, l := range labels {
		if strings.HasPrefix(l, statusPrefix) {
			return models.OrderStatus(strings.TrimPrefix(l, statusPrefix))
		}
	}
	return ""
}

// issueState closes the issue once the order reaches a final status.
func issueState(status models.OrderStatus) string {
	if status == models.OrderStatusCompleted || status == models.OrderStatusCancelled {
		return "closed"
	}
	return "open"
}
