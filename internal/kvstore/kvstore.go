// Package kvstore is the durable string-keyed store every collection is
// serialized into. Each key holds one whole JSON document; writers replace
// the document, there are no partial updates.
package kvstore

import (
	"context"
	"fmt"
)

// Keys shared by the storefront collections.
const (
	KeyProducts     = "products"
	KeyOrders       = "orders"
	KeyCart         = "cart"
	KeyCustomerInfo = "customer_info"
	KeyLedgerToken  = "remote_ledger_token"
	KeyLedgerOwner  = "remote_ledger_owner"
	KeyLedgerRepo   = "remote_ledger_repo"
)

type Store interface {
	// Get loads the document stored under key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// UserKey namespaces a per-user key such as the cart.
func UserKey(key, userID string) string {
	return fmt.Sprintf("%s/%s", key, userID)
}
