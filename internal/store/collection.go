package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/kvstore"
)

// collection reads and writes one whole document under a single key.
type collection struct {
	kv  kvstore.Store
	key string
	log logrus.FieldLogger
}

func (c collection) load(ctx context.Context, dest interface{}) (bool, error) {
	data, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", c.key, err)
	}
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return true, nil
}

// save replaces the stored document. A failed write is logged and
// swallowed: the in-memory collection stays authoritative for the session.
func (c collection) save(ctx context.Context, value interface{}) {
	data, err := json.Marshal(value)
	if err == nil {
		err = c.kv.Put(ctx, c.key, data)
	}
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"key":   c.key,
			"class": database.ClassifyError(err).String(),
		}).WithError(err).Warn("persist collection failed")
	}
}

// nextID hands out timestamp-based identifiers, stepping past any that are
// already taken.
func nextID(now time.Time, taken func(int64) bool) int64 {
	id := now.UnixMilli()
	for taken(id) {
		id++
	}
	return id
}
