// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carterperez-dev/commerce-backend/internal/cache"
	"github.com/carterperez-dev/commerce-backend/internal/cart"
	"github.com/carterperez-dev/commerce-backend/internal/config"
)

const cachePrefix = "catalog:"

type cachedList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

type Service struct {
	repo   Repository
	cache  cache.Cache
	cfg    config.CacheConfig
	logger *slog.Logger
}

func NewService(
	repo Repository,
	c cache.Cache,
	cfg config.CacheConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:   repo,
		cache:  c,
		cfg:    cfg,
		logger: logger,
	}
}

var _ cart.ProductProvider = (*Service)(nil)

// Product satisfies the cart's view of the catalog: existence plus the
// current price, served through the same cache as Get.
func (s *Service) Product(
	ctx context.Context,
	id string,
) (*cart.ProductInfo, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &cart.ProductInfo{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
	}, nil
}

func (s *Service) Create(
	ctx context.Context,
	req CreateProductRequest,
) (*Product, error) {
	product := &Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Stock:       req.Stock,
		Variants:    toVariants(req.Variants),
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID))

	return product, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	key := cachePrefix + "product:" + id

	var cached Product
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "cache read failed",
			slog.String("key", key), slog.Any("error", err))
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, product, s.cfg.CatalogTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key), slog.Any("error", err))
	}

	return product, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListProductsParams,
) ([]Product, int, error) {
	params.Normalize()
	key := fmt.Sprintf(
		"%slist:%d:%d:%s",
		cachePrefix,
		params.Page,
		params.PageSize,
		params.Search,
	)

	var cached cachedList
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		return cached.Products, cached.Total, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "cache read failed",
			slog.String("key", key), slog.Any("error", err))
	}

	products, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	entry := cachedList{Products: products, Total: total}
	if err := cache.SetJSON(ctx, s.cache, key, entry, s.cfg.CatalogTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key), slog.Any("error", err))
	}

	return products, total, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateProductRequest,
) (*Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Variants != nil {
		product.Variants = toVariants(req.Variants)
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	return product, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id))

	return nil
}

// invalidate drops every catalog cache entry. Listings and product reads
// repopulate on the next request; a failed invalidation only means stale
// reads until the TTL runs out.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("error", err))
	}
}

func toVariants(inputs []VariantInput) []Variant {
	if len(inputs) == 0 {
		return nil
	}

	variants := make([]Variant, 0, len(inputs))
	for _, in := range inputs {
		variants = append(variants, Variant{
			SKU:   in.SKU,
			Name:  in.Name,
			Stock: in.Stock,
		})
	}
	return variants
}
