package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safar/storefront/internal/kvstore"
	"github.com/safar/storefront/internal/models"
)

func TestReplaceStatus(t *testing.T) {
	got := ReplaceStatus([]string{"order", "status:pending", "payment:cash", "status:ready"}, models.OrderStatusCancelled)
	assert.Equal(t, []string{"order", "payment:cash", "status:cancelled"}, got)
}

func TestIssueState(t *testing.T) {
	assert.Equal(t, "closed", issueState(models.OrderStatusCancelled))
	assert.Equal(t, "open", issueState(models.OrderStatusPreparing))
}

func TestBody(t *testing.T) {
	order := sampleOrder()
	order.PaymentMethod = models.PaymentTransfer
	order.PaymentMeta = models.PaymentMeta{TransferRef: "REF-9", SlipImageData: "data:image/png;base64,AA==", Verified: true}
	order.Customer.Note = "leave at gate"

	body := Body(order)

	assert.Contains(t, body, "## Order ORD-1-001")
	assert.Contains(t, body, "- Note: leave at gate")
	assert.Contains(t, body, "- Reference: REF-9")
	assert.Contains(t, body, "- Slip: attached")
	assert.Contains(t, body, "**Total:** ฿80.00")
	assert.NotContains(t, body, "base64")
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	fallback := Settings{Token: "env-token", Owner: "env-owner", Repo: "env-repo"}

	s, err := LoadSettings(ctx, kv, fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, s)

	saved := Settings{Token: "t", Owner: "o", Repo: "r"}
	require.NoError(t, SaveSettings(ctx, kv, saved))

	s, err = LoadSettings(ctx, kv, fallback)
	require.NoError(t, err)
	assert.Equal(t, saved, s)
	assert.True(t, s.Configured())
}

func TestSettingsEmptyTokenKeepsFallback(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	fallback := Settings{Token: "env-token", Owner: "env-owner", Repo: "env-repo"}

	require.NoError(t, SaveSettings(ctx, kv, Settings{Owner: "o", Repo: "r"}))

	s, err := LoadSettings(ctx, kv, fallback)
	require.NoError(t, err)
	assert.Equal(t, Settings{Token: "env-token", Owner: "o", Repo: "r"}, s)
}
