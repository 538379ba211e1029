package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, KeyProducts)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, KeyProducts, []byte(`[{"id":1}]`)))

	data, ok, err := m.Get(ctx, KeyProducts)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(data))

	require.NoError(t, m.Delete(ctx, KeyProducts))
	_, ok, err = m.Get(ctx, KeyProducts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	buf := []byte(`"a"`)
	require.NoError(t, m.Put(ctx, "k", buf))
	buf[1] = 'b'

	data, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"a"`, string(data))
}

func TestUserKey(t *testing.T) {
	assert.Equal(t, "cart/U123", UserKey(KeyCart, "U123"))
}
