package store

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/safar/storefront/internal/kvstore"
	"github.com/safar/storefront/internal/models"
)

// CustomerInfo remembers the last customer details a user checked out with,
// for prefilling the next checkout.
type CustomerInfo struct {
	kv  kvstore.Store
	log logrus.FieldLogger
}

func NewCustomerInfo(kv kvstore.Store, log logrus.FieldLogger) *CustomerInfo {
	return &CustomerInfo{kv: kv, log: log}
}

func (c *CustomerInfo) Load(ctx context.Context, userID string) (models.Customer, bool, error) {
	var customer models.Customer
	ok, err := c.coll(userID).load(ctx, &customer)
	return customer, ok, err
}

func (c *CustomerInfo) Save(ctx context.Context, userID string, customer models.Customer) {
	c.coll(userID).save(ctx, customer)
}

func (c *CustomerInfo) coll(userID string) collection {
	return collection{kv: c.kv, key: kvstore.UserKey(kvstore.KeyCustomerInfo, userID), log: c.log}
}
