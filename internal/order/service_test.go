// AngelaMos | 2026
// service_test.go

package order

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-backend/internal/cache"
	"github.com/carterperez-dev/commerce-backend/internal/config"
	"github.com/carterperez-dev/commerce-backend/internal/core"
)

type memRepository struct {
	orders map[string]*Order
}

func newMemRepository() *memRepository {
	return &memRepository{orders: map[string]*Order{}}
}

func (r *memRepository) Create(_ context.Context, o *Order) error {
	for _, existing := range r.orders {
		if existing.IdempotencyKey != "" &&
			existing.IdempotencyKey == o.IdempotencyKey {
			return fmt.Errorf("create order: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	saved := *o
	r.orders[o.ID] = &saved
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	copied := *o
	return &copied, nil
}

func (r *memRepository) FindByIdempotencyKey(
	_ context.Context,
	accountID, key string,
) (*Order, error) {
	for _, o := range r.orders {
		if o.AccountID == accountID && o.IdempotencyKey == key {
			copied := *o
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("find order by key: %w", core.ErrNotFound)
}

func (r *memRepository) MarkPaid(
	_ context.Context,
	id, accountID string,
) (*Order, error) {
	o, ok := r.orders[id]
	if !ok || o.AccountID != accountID || o.Status != StatusPending {
		return nil, fmt.Errorf("mark order paid: %w", core.ErrNotFound)
	}

	now := time.Now().UTC()
	o.Status = StatusPaid
	o.PaidAt = &now
	o.UpdatedAt = now

	copied := *o
	return &copied, nil
}

func (r *memRepository) ListByAccount(
	_ context.Context,
	accountID string,
) ([]Order, error) {
	orders := []Order{}
	for _, o := range r.orders {
		if o.AccountID == accountID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (r *memRepository) List(
	_ context.Context,
	_ ListOrdersParams,
) ([]Order, int, error) {
	orders := []Order{}
	for _, o := range r.orders {
		orders = append(orders, *o)
	}
	return orders, len(orders), nil
}

func (r *memRepository) CancelStale(
	_ context.Context,
	olderThan time.Time,
) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.Status == StatusPending && o.CreatedAt.Before(olderThan) {
			o.Status = StatusCancelled
			n++
		}
	}
	return n, nil
}

type fakeCarts struct {
	lines   []Line
	cleared int
}

func (c *fakeCarts) PricedLines(_ context.Context, _ string) ([]Line, error) {
	return c.lines, nil
}

func (c *fakeCarts) ClearCart(_ context.Context, _ string) error {
	c.cleared++
	c.lines = nil
	return nil
}

type fakeContacts struct {
	contact ContactInfo
}

func (c *fakeContacts) Contact(
	_ context.Context,
	_ string,
) (*ContactInfo, error) {
	info := c.contact
	return &info, nil
}

type fakeMail struct {
	confirmations []string
	notifications []string
	invoices      []string
}

func (f *fakeMail) SendOrderConfirmation(_, _, orderID string, _ float64) {
	f.confirmations = append(f.confirmations, orderID)
}

func (f *fakeMail) SendOrderNotification(orderID, _ string, _ float64) {
	f.notifications = append(f.notifications, orderID)
}

func (f *fakeMail) SendOrderInvoice(_, _, orderID string, _ float64) {
	f.invoices = append(f.invoices, orderID)
}

type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return val, nil
}

func (c *memCache) SetWithExpiry(
	_ context.Context,
	key string,
	value []byte,
	_ time.Duration,
) error {
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func (c *memCache) DeletePrefix(_ context.Context, prefix string) error {
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
	return nil
}

type testEnv struct {
	svc      *Service
	repo     *memRepository
	carts    *fakeCarts
	contacts *fakeContacts
	mail     *fakeMail
	cache    *memCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo: newMemRepository(),
		carts: &fakeCarts{lines: []Line{
			{ProductID: "prod-1", Name: "Widget", UnitPrice: 5, Quantity: 2},
			{ProductID: "prod-2", Name: "Gadget", UnitPrice: 7.5, Quantity: 2},
		}},
		contacts: &fakeContacts{contact: ContactInfo{
			Email:   "jo@example.com",
			Name:    "Jo Birch",
			Phone:   "555-0100",
			Address: "1 Main St",
		}},
		mail:  &fakeMail{},
		cache: newMemCache(),
	}

	env.svc = NewService(
		env.repo,
		env.carts,
		env.contacts,
		env.mail,
		env.cache,
		config.CacheConfig{OrderTTL: time.Minute},
		slog.Default(),
	)

	return env
}

func TestCreateOrderCapturesTotal(t *testing.T) {
	env := newTestEnv(t)

	o, err := env.svc.CreateOrder(context.Background(), "acct-1")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.InDelta(t, 25, o.Total, 1e-9)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Widget", o.Items[0].Name)
	assert.InDelta(t, 10, o.Items[0].Subtotal, 1e-9)
	assert.Equal(t, 1, env.carts.cleared)
	assert.Equal(t, []string{o.ID}, env.mail.confirmations)
	assert.Equal(t, []string{o.ID}, env.mail.notifications)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	env.carts.lines = nil

	_, err := env.svc.CreateOrder(context.Background(), "acct-1")
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCreateOrderRequiresContactInfo(t *testing.T) {
	env := newTestEnv(t)
	env.contacts.contact.Address = ""

	_, err := env.svc.CreateOrder(context.Background(), "acct-1")
	assert.ErrorIs(t, err, ErrMissingContactInfo)

	env.contacts.contact.Address = "1 Main St"
	env.contacts.contact.Phone = ""

	_, err = env.svc.CreateOrder(context.Background(), "acct-1")
	assert.ErrorIs(t, err, ErrMissingContactInfo)
}

func TestCreateOrderRetryReturnsSameOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)

	// The retry replays the same cart, as a client resubmitting would.
	env.carts.lines = []Line{
		{ProductID: "prod-1", Name: "Widget", UnitPrice: 5, Quantity: 2},
		{ProductID: "prod-2", Name: "Gadget", UnitPrice: 7.5, Quantity: 2},
	}

	second, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, env.repo.orders, 1)
	assert.Len(t, env.mail.confirmations, 1)
}

func TestCreateOrderDifferentCartMakesNewOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)

	env.carts.lines = []Line{
		{ProductID: "prod-1", Name: "Widget", UnitPrice: 5, Quantity: 9},
	}

	second, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, env.repo.orders, 2)
}

func TestMarkPaidTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)

	paid, err := env.svc.MarkPaid(ctx, "acct-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = env.svc.MarkPaid(ctx, "acct-1", o.ID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestMarkPaidSendsInvoice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)
	env.mail.invoices = nil

	_, err = env.svc.MarkPaid(ctx, "acct-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{o.ID}, env.mail.invoices)

	// The rejected retry sends nothing.
	_, err = env.svc.MarkPaid(ctx, "acct-1", o.ID)
	require.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Len(t, env.mail.invoices, 1)
}

func TestMarkPaidRequiresContactInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)

	env.contacts.contact.Email = ""

	_, err = env.svc.MarkPaid(ctx, "acct-1", o.ID)
	assert.ErrorIs(t, err, ErrMissingContactInfo)
	assert.Empty(t, env.mail.invoices)

	got, err := env.svc.GetOrder(ctx, "acct-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestMarkPaidCancelledOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)
	env.repo.orders[o.ID].Status = StatusCancelled

	_, err = env.svc.MarkPaid(ctx, "acct-1", o.ID)
	assert.ErrorIs(t, err, ErrOrderCancelled)
}

func TestMarkPaidForeignAccountLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)

	_, err = env.svc.MarkPaid(ctx, "acct-2", o.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyPaid)

	_, err = env.svc.MarkPaid(ctx, "acct-1", "no-such-order")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetOrderScopedToAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)

	got, err := env.svc.GetOrder(ctx, "acct-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = env.svc.GetOrder(ctx, "acct-2", o.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListOrdersCachedAndInvalidated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	orders, err := env.svc.ListOrders(ctx, "acct-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	require.Contains(t, env.cache.entries, "orders:acct-1")

	o, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)
	assert.NotContains(t, env.cache.entries, "orders:acct-1")

	orders, err = env.svc.ListOrders(ctx, "acct-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
}

func TestCancelStaleSkipsPaidOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.svc.CreateOrder(ctx, "acct-1")
	require.NoError(t, err)

	_, err = env.svc.MarkPaid(ctx, "acct-1", o.ID)
	require.NoError(t, err)

	env.repo.orders[o.ID].CreatedAt = time.Now().Add(-48 * time.Hour)

	n, err := env.repo.CancelStale(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, StatusPaid, env.repo.orders[o.ID].Status)
}

func TestIdempotencyKeyProperties(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	lines := []Line{
		{ProductID: "b", Quantity: 1},
		{ProductID: "a", Quantity: 2},
	}
	reordered := []Line{
		{ProductID: "a", Quantity: 2},
		{ProductID: "b", Quantity: 1},
	}

	assert.Equal(t,
		idempotencyKey("acct-1", lines, now),
		idempotencyKey("acct-1", reordered, now),
	)
	assert.NotEqual(t,
		idempotencyKey("acct-1", lines, now),
		idempotencyKey("acct-2", lines, now),
	)
	assert.NotEqual(t,
		idempotencyKey("acct-1", lines, now),
		idempotencyKey("acct-1", lines, now.Add(time.Hour)),
	)
	// Same hour, different minute: same key.
	assert.Equal(t,
		idempotencyKey("acct-1", lines, now),
		idempotencyKey("acct-1", lines, now.Add(20*time.Minute)),
	)
}
