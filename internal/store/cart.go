package store

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/kvstore"
	"github.com/safar/storefront/internal/models"
)

type ProductLookup interface {
	Get(id int64) (models.Product, bool)
}

// Cart holds one user's selected lines. Quantities are clamped to the
// product's stock whenever they are added or set.
type Cart struct {
	coll     collection
	products ProductLookup
	lines    []models.CartLine
}

func NewCart(kv kvstore.Store, log logrus.FieldLogger, userID string, products ProductLookup) *Cart {
	return &Cart{
		coll:     collection{kv: kv, key: kvstore.UserKey(kvstore.KeyCart, userID), log: log},
		products: products,
	}
}

func (c *Cart) Restore(ctx context.Context) error {
	var lines []models.CartLine
	if _, err := c.coll.load(ctx, &lines); err != nil {
		return err
	}
	c.lines = lines
	return nil
}

func (c *Cart) Lines() []models.CartLine {
	return append([]models.CartLine(nil), c.lines...)
}

// Add puts quantity units of the product in the cart, merging with an
// existing line. A quantity below one counts as one.
func (c *Cart) Add(ctx context.Context, productID int64, quantity int) (models.CartLine, error) {
	p, ok := c.products.Get(productID)
	if !ok {
		return models.CartLine{}, database.ErrProductNotFound
	}
	if p.Stock <= 0 {
		return models.CartLine{}, database.ErrOutOfStock
	}
	quantity = min(max(quantity, 1), p.Stock)

	i := c.index(productID)
	if i < 0 {
		c.lines = append(c.lines, models.LineFromProduct(p, 0))
		i = len(c.lines) - 1
	}
	c.lines[i].Quantity = min(c.lines[i].Quantity, p.Stock-quantity) + quantity

	c.coll.save(ctx, c.lines)
	return c.lines[i], nil
}

// SetQuantity replaces the line quantity; zero or less removes the line.
func (c *Cart) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		c.Remove(ctx, productID)
		return nil
	}

	p, known := c.products.Get(productID)
	i := c.index(productID)
	switch {
	case i < 0 && !known:
		return database.ErrProductNotFound
	case i < 0:
		if p.Stock <= 0 {
			return database.ErrOutOfStock
		}
		c.lines = append(c.lines, models.LineFromProduct(p, 0))
		i = len(c.lines) - 1
	}

	if known {
		quantity = min(quantity, p.Stock)
	} else {
		// Delisted products can only shrink.
		quantity = min(quantity, c.lines[i].Quantity)
	}
	c.lines[i].Quantity = quantity

	c.coll.save(ctx, c.lines)
	return nil
}

func (c *Cart) Remove(ctx context.Context, productID int64) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.coll.save(ctx, c.lines)
}

func (c *Cart) Clear(ctx context.Context) {
	c.lines = nil
	c.coll.save(ctx, []models.CartLine{})
}

func (c *Cart) Total() int64 {
	return models.LinesTotal(c.lines)
}

func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) index(productID int64) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// CartView is the recomputed projection returned after every cart change.
type CartView struct {
	Lines []models.CartLine `json:"lines"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
}

func (c *Cart) View() CartView {
	lines := c.Lines()
	if lines == nil {
		lines = []models.CartLine{}
	}
	return CartView{Lines: lines, Total: c.Total(), Count: c.Count()}
}

var _ ProductLookup = (*Catalog)(nil)
