// Package session holds the single controller that owns the catalog, the
// order collection and every user's cart and checkout. All mutation goes
// through its methods, serialized by one lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/kvstore"
	"github.com/safar/storefront/internal/ledger"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/notify"
	"github.com/safar/storefront/internal/store"
)

const (
	defaultRemoteTimeout = 5 * time.Second

	// Carts are persisted on every change, so dropping one from memory
	// only costs a reload.
	maxCachedCarts   = 10000
	maxOpenCheckouts = 1000
)

var (
	ErrNoCheckout = errors.New("no checkout in progress")
	ErrNoLedger   = errors.New("no order ledger available")
)

// Ledger is the remote order log together with its runtime credentials.
type Ledger interface {
	ledger.Ledger
	Settings() ledger.Settings
	Configure(settings ledger.Settings) error
}

type Options struct {
	KV        kvstore.Store
	Ledger    Ledger
	Notifiers []notify.Notifier
	Location  *time.Location
	Log       logrus.FieldLogger

	// RemoteTimeout bounds each ledger or notification call.
	RemoteTimeout time.Duration
	Now           func() time.Time
	// Suffix supplies the random tail of order numbers.
	Suffix func() int
}

type Controller struct {
	mu sync.Mutex

	kv        kvstore.Store
	catalog   *store.Catalog
	orders    *store.Orders
	customers *store.CustomerInfo
	carts     map[string]*store.Cart
	wizards   map[string]*openCheckout
	notices   *noticeBoard

	maxCarts     int
	maxCheckouts int

	ledger    Ledger
	notifiers []notify.Notifier

	loc           *time.Location
	now           func() time.Time
	suffix        func() int
	remoteTimeout time.Duration
	log           logrus.FieldLogger
	inflight      sync.WaitGroup
}

// New restores the stored catalog and orders and applies any ledger
// credentials saved by the admin console.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.KV == nil {
		return nil, errors.New("session: key-value store is required")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Suffix == nil {
		opts.Suffix = func() int { return rand.IntN(1000) }
	}
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = defaultRemoteTimeout
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	c := &Controller{
		kv:            opts.KV,
		catalog:       store.NewCatalog(opts.KV, opts.Log, opts.Now),
		orders:        store.NewOrders(opts.KV, opts.Log, opts.Location),
		customers:     store.NewCustomerInfo(opts.KV, opts.Log),
		carts:         make(map[string]*store.Cart),
		wizards:       make(map[string]*openCheckout),
		maxCarts:      maxCachedCarts,
		maxCheckouts:  maxOpenCheckouts,
		notices:       newNoticeBoard(opts.Now),
		ledger:        opts.Ledger,
		notifiers:     opts.Notifiers,
		loc:           opts.Location,
		now:           opts.Now,
		suffix:        opts.Suffix,
		remoteTimeout: opts.RemoteTimeout,
		log:           opts.Log,
	}

	if err := c.catalog.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore catalog: %w", err)
	}
	if err := c.orders.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore orders: %w", err)
	}

	if c.ledger != nil {
		settings, err := ledger.LoadSettings(ctx, c.kv, c.ledger.Settings())
		if err != nil {
			c.log.WithError(err).Warn("load ledger settings failed, keeping configured credentials")
		} else if err := c.ledger.Configure(settings); err != nil {
			return nil, fmt.Errorf("configure ledger: %w", err)
		}
	}

	return c, nil
}

// Wait blocks until every in-flight remote call has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) Products() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog.List()
}

func (c *Controller) Product(id int64) (models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.catalog.Get(id)
	if !ok {
		return models.Product{}, database.ErrProductNotFound
	}
	return p, nil
}

func (c *Controller) SaveProduct(ctx context.Context, p models.Product) (models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog.Upsert(ctx, p)
}

func (c *Controller) DeleteProduct(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.catalog.Remove(ctx, id) {
		return database.ErrProductNotFound
	}
	return nil
}

// ResetCatalog replaces every product with the seed catalog.
func (c *Controller) ResetCatalog(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalog.Reset(ctx)
}

func (c *Controller) CustomerInfo(ctx context.Context, userID string) (models.Customer, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customers.Load(ctx, userID)
}

func (c *Controller) Notices(userID string) []Notice {
	return c.notices.drain(userID)
}
