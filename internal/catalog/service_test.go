// AngelaMos | 2026
// service_test.go

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-backend/internal/cache"
	"github.com/carterperez-dev/commerce-backend/internal/config"
	"github.com/carterperez-dev/commerce-backend/internal/core"
)

type memRepository struct {
	products map[string]*Product
	reads    int
}

func newMemRepository() *memRepository {
	return &memRepository{products: map[string]*Product{}}
}

func (r *memRepository) Create(_ context.Context, product *Product) error {
	nameLC := strings.ToLower(product.Name)
	for _, p := range r.products {
		if p.NameLC == nameLC {
			return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
		}
	}

	product.NameLC = nameLC
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt

	saved := *product
	r.products[product.ID] = &saved
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id string) (*Product, error) {
	r.reads++

	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

func (r *memRepository) List(
	_ context.Context,
	params ListProductsParams,
) ([]Product, int, error) {
	r.reads++
	params.Normalize()

	var products []Product
	for _, p := range r.products {
		if params.Search != "" &&
			!strings.Contains(p.NameLC, strings.ToLower(params.Search)) {
			continue
		}
		products = append(products, *p)
	}
	return products, len(products), nil
}

func (r *memRepository) Update(_ context.Context, product *Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("update product: %w", core.ErrNotFound)
	}

	product.NameLC = strings.ToLower(product.Name)
	product.UpdatedAt = time.Now().UTC()

	saved := *product
	r.products[product.ID] = &saved
	return nil
}

func (r *memRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}
	delete(r.products, id)
	return nil
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
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *memRepository, *memCache) {
	t.Helper()

	repo := newMemRepository()
	store := newMemCache()
	svc := NewService(repo, store, config.CacheConfig{
		CatalogTTL: 10 * time.Minute,
	}, slog.Default())

	return svc, repo, store
}

func TestCreateAndGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{
		Name:  "Widget",
		Price: 5,
		Stock: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.InDelta(t, 5, got.Price, 1e-9)
}

func TestCreateDuplicateName(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductRequest{Name: "Widget", Price: 5})
	require.NoError(t, err)

	// Uniqueness is case-insensitive.
	_, err = svc.Create(ctx, CreateProductRequest{Name: "WIDGET", Price: 9})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestGetServesFromCache(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{Name: "Widget", Price: 5})
	require.NoError(t, err)

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	readsAfterFirst := repo.reads

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, readsAfterFirst, repo.reads)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{Name: "Widget", Price: 5})
	require.NoError(t, err)

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, store.entries)

	price := 8.0
	updated, err := svc.Update(ctx, created.ID, UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.InDelta(t, 8, updated.Price, 1e-9)
	assert.Empty(t, store.entries)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.InDelta(t, 8, got.Price, 1e-9)
}

func TestListCachedPerQuery(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductRequest{Name: "Widget", Price: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateProductRequest{Name: "Gadget", Price: 7})
	require.NoError(t, err)

	products, total, err := svc.List(ctx, ListProductsParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, products, 2)

	readsAfterFirst := repo.reads
	_, _, err = svc.List(ctx, ListProductsParams{})
	require.NoError(t, err)
	assert.Equal(t, readsAfterFirst, repo.reads)

	// A different search term is a different cache entry.
	products, total, err = svc.List(ctx, ListProductsParams{Search: "wid"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Widget", products[0].Name)
}

func TestDeleteRemovesProduct(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{Name: "Widget", Price: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestProductProviderView(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{Name: "Widget", Price: 5})
	require.NoError(t, err)

	info, err := svc.Product(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, info.ID)
	assert.Equal(t, "Widget", info.Name)
	assert.InDelta(t, 5, info.Price, 1e-9)

	_, err = svc.Product(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestVariantStock(t *testing.T) {
	p := &Product{Stock: 3}
	assert.Equal(t, 3, p.TotalStock())
	assert.True(t, p.InStock())

	p.Variants = []Variant{{SKU: "a", Stock: 2}, {SKU: "b", Stock: 0}}
	assert.Equal(t, 2, p.TotalStock())

	p.Variants = []Variant{{SKU: "a", Stock: 0}}
	assert.False(t, p.InStock())
}
