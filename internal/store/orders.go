package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/kvstore"
	"github.com/safar/storefront/internal/models"
)

// Orders owns the order collection, most recent first. Any status may
// follow any other; transition legality is left to the operator.
type Orders struct {
	coll   collection
	loc    *time.Location
	orders []models.Order
}

func NewOrders(kv kvstore.Store, log logrus.FieldLogger, loc *time.Location) *Orders {
	return &Orders{
		coll: collection{kv: kv, key: kvstore.KeyOrders, log: log},
		loc:  loc,
	}
}

func (o *Orders) Restore(ctx context.Context) error {
	var orders []models.Order
	if _, err := o.coll.load(ctx, &orders); err != nil {
		return err
	}
	o.orders = orders
	return nil
}

// Create puts the order at the front of the collection.
func (o *Orders) Create(ctx context.Context, order models.Order) models.Order {
	order.Items = append([]models.CartLine(nil), order.Items...)
	o.orders = append([]models.Order{order}, o.orders...)
	o.coll.save(ctx, o.orders)
	return order
}

// Taken reports whether an order already uses the ID.
func (o *Orders) Taken(id int64) bool {
	return o.index(id) >= 0
}

// NextID returns an unused order ID derived from now.
func (o *Orders) NextID(now time.Time) int64 {
	return nextID(now, o.Taken)
}

func (o *Orders) FindByID(id int64) (models.Order, bool) {
	if i := o.index(id); i >= 0 {
		return cloneOrder(o.orders[i]), true
	}
	return models.Order{}, false
}

func (o *Orders) SetStatus(ctx context.Context, id int64, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, fmt.Errorf("%w: %q", database.ErrInvalidStatus, status)
	}

	i := o.index(id)
	if i < 0 {
		return models.Order{}, database.ErrOrderNotFound
	}

	o.orders[i].Status = status
	o.coll.save(ctx, o.orders)
	return cloneOrder(o.orders[i]), nil
}

// SetRemoteIssue records the ledger issue mirroring the order.
func (o *Orders) SetRemoteIssue(ctx context.Context, id int64, issue int) error {
	i := o.index(id)
	if i < 0 {
		return database.ErrOrderNotFound
	}

	o.orders[i].RemoteIssue = issue
	o.coll.save(ctx, o.orders)
	return nil
}

func (o *Orders) List() []models.Order {
	return o.ListFiltered(Filter{})
}

// Filter narrows an order listing. An empty Status or "all" matches every
// status; a zero Day matches every date.
type Filter struct {
	Status string
	Day    time.Time
}

// ListFiltered keeps collection order. Days are compared as calendar days
// in the store's timezone, using each order's creation time.
func (o *Orders) ListFiltered(f Filter) []models.Order {
	result := []models.Order{}
	for _, order := range o.orders {
		if f.Status != "" && f.Status != "all" && string(order.Status) != f.Status {
			continue
		}
		if !f.Day.IsZero() && !sameDay(order.CreatedAt, f.Day, o.loc) {
			continue
		}
		result = append(result, cloneOrder(order))
	}
	return result
}

func (o *Orders) index(id int64) int {
	for i := range o.orders {
		if o.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneOrder(order models.Order) models.Order {
	order.Items = append([]models.CartLine(nil), order.Items...)
	return order
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
