package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/kvstore"
	"github.com/safar/storefront/internal/models"
)

// Catalog owns the product collection. It is not safe for concurrent use;
// the session controller serializes access.
type Catalog struct {
	coll     collection
	now      func() time.Time
	products []models.Product
}

func NewCatalog(kv kvstore.Store, log logrus.FieldLogger, now func() time.Time) *Catalog {
	return &Catalog{
		coll: collection{kv: kv, key: kvstore.KeyProducts, log: log},
		now:  now,
	}
}

// Restore loads the stored catalog, seeding it on first run.
func (c *Catalog) Restore(ctx context.Context) error {
	var products []models.Product
	ok, err := c.coll.load(ctx, &products)
	if err != nil {
		return err
	}
	if ok {
		c.products = products
		return nil
	}

	return c.Reset(ctx)
}

// Reset replaces the catalog with the seed products.
func (c *Catalog) Reset(ctx context.Context) error {
	products, err := SeedProducts()
	if err != nil {
		return err
	}
	c.products = products
	c.coll.save(ctx, c.products)
	return nil
}

func (c *Catalog) List() []models.Product {
	return append([]models.Product(nil), c.products...)
}

func (c *Catalog) Get(id int64) (models.Product, bool) {
	if i := c.index(id); i >= 0 {
		return c.products[i], true
	}
	return models.Product{}, false
}

// Upsert replaces the product with the same ID, or appends it under a new
// ID when the ID is zero or unknown.
func (c *Catalog) Upsert(ctx context.Context, p models.Product) (models.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}

	if i := c.index(p.ID); p.ID != 0 && i >= 0 {
		c.products[i] = p
	} else {
		p.ID = nextID(c.now(), func(id int64) bool { return c.index(id) >= 0 })
		c.products = append(c.products, p)
	}

	c.coll.save(ctx, c.products)
	return p, nil
}

// Remove deletes the product. Unknown IDs are ignored.
func (c *Catalog) Remove(ctx context.Context, id int64) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}

	c.products = append(c.products[:i], c.products[i+1:]...)
	c.coll.save(ctx, c.products)
	return true
}

func (c *Catalog) index(id int64) int {
	for i := range c.products {
		if c.products[i].ID == id {
			return i
		}
	}
	return -1
}

func validateProduct(p models.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", database.ErrInvalidProduct)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", database.ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", database.ErrInvalidProduct)
	case !p.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", database.ErrInvalidProduct, p.Category)
	}
	return nil
}
