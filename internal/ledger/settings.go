package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/safar/storefront/internal/kvstore"
)

// LoadSettings reads credentials saved by the admin console. Keys that were
// never written, or were saved empty, keep the fallback value.
func LoadSettings(ctx context.Context, kv kvstore.Store, fallback Settings) (Settings, error) {
	s := fallback
	fields := map[string]*string{
		kvstore.KeyLedgerToken: &s.Token,
		kvstore.KeyLedgerOwner: &s.Owner,
		kvstore.KeyLedgerRepo:  &s.Repo,
	}

	for key, dest := range fields {
		data, ok, err := kv.Get(ctx, key)
		if err != nil {
			return fallback, err
		}
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return fallback, fmt.Errorf("decode %s: %w", key, err)
		}
		if value != "" {
			*dest = value
		}
	}
	return s, nil
}

func SaveSettings(ctx context.Context, kv kvstore.Store, s Settings) error {
	values := map[string]string{
		kvstore.KeyLedgerToken: s.Token,
		kvstore.KeyLedgerOwner: s.Owner,
		kvstore.KeyLedgerRepo:  s.Repo,
	}

	for key, value := range values {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		if err := kv.Put(ctx, key, data); err != nil {
			return err
		}
	}
	return nil
}
