package redisctx

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakflow/oakflow/internal/store/memory"
	"github.com/oakflow/oakflow/pkg/process"
	"github.com/oakflow/oakflow/pkg/process/expression"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewFromClient(client, opts...), mr
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	ok, err := store.Contains(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	c := expression.NewContextFrom(map[string]any{
		"amount":   12.5,
		"customer": "acme",
		"approved": true,
	})
	require.NoError(t, store.Put(ctx, 1, c))

	ok, err = store.Contains(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = store.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)

	amount, _ := got.Get("amount")
	assert.Equal(t, 12.5, amount)
	customer, _ := got.Get("customer")
	assert.Equal(t, "acme", customer)
	approved, _ := got.Get("approved")
	assert.Equal(t, true, approved)

	removed, err := store.Remove(ctx, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Remove(ctx, 1)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_KeyPrefix(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, WithPrefix("custom:"))

	require.NoError(t, store.Put(ctx, 7, expression.NewContext()))
	assert.True(t, mr.Exists("custom:7"))
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, WithTTL(time.Minute))

	require.NoError(t, store.Put(ctx, 7, expression.NewContext()))
	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_BacksExpressionEngine(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	svc := memory.New()
	svc.AddInstance(&process.Instance{ID: 1, Name: "order"})
	svc.SetVariables(1,
		process.Variable{Key: "a", Value: 3},
		process.Variable{Key: "b", Value: 4})

	engine := expression.New(svc,
		expression.WithStore(store),
		expression.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	// Lazily built context survives the JSON round trip; ints come
	// back as float64.
	value, err := engine.Eval(ctx, 1, "${a+b*2}")
	require.NoError(t, err)
	assert.Equal(t, float64(11), value)

	ok, err := store.Contains(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
