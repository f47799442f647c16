// AngelaMos | 2026
// service.go

package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/commerce-backend/internal/cache"
	"github.com/carterperez-dev/commerce-backend/internal/config"
	"github.com/carterperez-dev/commerce-backend/internal/core"
	"github.com/carterperez-dev/commerce-backend/internal/order"
)

var ErrProductNotFound = errors.New("product not found")

type ProductInfo struct {
	ID    string
	Name  string
	Price float64
}

// ProductProvider is the slice of the catalog the cart needs: existence and
// the current price.
type ProductProvider interface {
	Product(ctx context.Context, id string) (*ProductInfo, error)
}

type Service struct {
	repo     Repository
	products ProductProvider
	cache    cache.Cache
	cfg      config.CacheConfig
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	products ProductProvider,
	c cache.Cache,
	cfg config.CacheConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		products: products,
		cache:    c,
		cfg:      cfg,
		logger:   logger,
	}
}

var _ order.CartProvider = (*Service)(nil)

func cacheKey(accountID string) string {
	return "cart:" + accountID
}

// GetCart returns the priced cart view. A missing cart document is an empty
// cart, not an error. Items whose product has since been removed from the
// catalog are dropped from the view.
func (s *Service) GetCart(
	ctx context.Context,
	accountID string,
) (*CartResponse, error) {
	key := cacheKey(accountID)

	var cached CartResponse
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "cache read failed",
			slog.String("key", key), slog.Any("error", err))
	}

	c, err := s.repo.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return &CartResponse{Items: []ItemResponse{}}, nil
		}
		return nil, err
	}

	resp := &CartResponse{
		Items:     make([]ItemResponse, 0, len(c.Items)),
		UpdatedAt: c.UpdatedAt,
	}

	for _, item := range c.Items {
		info, err := s.products.Product(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("price cart item: %w", err)
		}

		subtotal := info.Price * float64(item.Quantity)
		resp.Items = append(resp.Items, ItemResponse{
			ProductID: item.ProductID,
			Name:      info.Name,
			Price:     info.Price,
			Quantity:  item.Quantity,
			Subtotal:  subtotal,
		})
		resp.Total += subtotal
	}

	if err := cache.SetJSON(ctx, s.cache, key, resp, s.cfg.CartTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key), slog.Any("error", err))
	}

	return resp, nil
}

func (s *Service) AddItem(
	ctx context.Context,
	accountID string,
	req AddItemRequest,
) error {
	if _, err := s.products.Product(ctx, req.ProductID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("check product: %w", err)
	}

	if err := s.repo.AddItem(ctx, accountID, req.ProductID, req.Quantity); err != nil {
		return err
	}

	s.invalidate(ctx, accountID)

	s.logger.InfoContext(ctx, "cart item added",
		slog.String("account_id", accountID),
		slog.String("product_id", req.ProductID),
		slog.Int("quantity", req.Quantity),
	)

	return nil
}

func (s *Service) UpdateItem(
	ctx context.Context,
	accountID, productID string,
	quantity int,
) error {
	if err := s.repo.SetItemQuantity(ctx, accountID, productID, quantity); err != nil {
		return err
	}

	s.invalidate(ctx, accountID)
	return nil
}

func (s *Service) RemoveItem(
	ctx context.Context,
	accountID, productID string,
) error {
	if err := s.repo.RemoveItem(ctx, accountID, productID); err != nil {
		return err
	}

	s.invalidate(ctx, accountID)
	return nil
}

// PricedLines snapshots the cart with live catalog prices for checkout. A
// product that disappeared since it was added fails the whole snapshot: an
// order must never contain a phantom line.
func (s *Service) PricedLines(
	ctx context.Context,
	accountID string,
) ([]order.Line, error) {
	c, err := s.repo.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	lines := make([]order.Line, 0, len(c.Items))
	for _, item := range c.Items {
		info, err := s.products.Product(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, fmt.Errorf(
					"product %s: %w",
					item.ProductID,
					core.ErrNotFound,
				)
			}
			return nil, fmt.Errorf("price cart line: %w", err)
		}

		lines = append(lines, order.Line{
			ProductID: item.ProductID,
			Name:      info.Name,
			UnitPrice: info.Price,
			Quantity:  item.Quantity,
		})
	}

	return lines, nil
}

func (s *Service) ClearCart(ctx context.Context, accountID string) error {
	if err := s.repo.Clear(ctx, accountID); err != nil {
		return err
	}

	s.invalidate(ctx, accountID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, accountID string) {
	if err := s.cache.Delete(ctx, cacheKey(accountID)); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
	}
}
