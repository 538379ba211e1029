package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/safar/storefront/internal/kvstore"
	"github.com/safar/storefront/internal/logging"
)

var bangkok = time.FixedZone("ICT", 7*60*60)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestCatalog(t *testing.T, kv kvstore.Store) *Catalog {
	t.Helper()

	catalog := NewCatalog(kv, logging.Discard(), fixedClock(time.Date(2026, 10, 19, 9, 0, 0, 0, bangkok)))
	require.NoError(t, catalog.Restore(context.Background()))
	return catalog
}

// failingStore accepts reads and rejects every write.
type failingStore struct {
	kvstore.Store
}

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}
