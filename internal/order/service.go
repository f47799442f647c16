// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/commerce-backend/internal/cache"
	"github.com/carterperez-dev/commerce-backend/internal/config"
	"github.com/carterperez-dev/commerce-backend/internal/core"
)

var (
	ErrCartEmpty          = errors.New("cart is empty")
	ErrAlreadyPaid        = errors.New("order already paid")
	ErrOrderCancelled     = errors.New("order is cancelled")
	ErrMissingContactInfo = errors.New("account has no contact info")
)

// Line is one priced cart line handed over at checkout.
type Line struct {
	ProductID string
	Name      string
	UnitPrice float64
	Quantity  int
}

// CartProvider supplies the priced snapshot of the caller's cart and clears
// it once the order exists.
type CartProvider interface {
	PricedLines(ctx context.Context, accountID string) ([]Line, error)
	ClearCart(ctx context.Context, accountID string) error
}

type ContactInfo struct {
	Email   string
	Name    string
	Phone   string
	Address string
}

type ContactProvider interface {
	Contact(ctx context.Context, accountID string) (*ContactInfo, error)
}

// MailSender delivers order email in the background. Failures are logged by
// the mail layer, never surfaced to checkout.
type MailSender interface {
	SendOrderConfirmation(email, name, orderID string, total float64)
	SendOrderNotification(orderID, accountEmail string, total float64)
	SendOrderInvoice(email, name, orderID string, total float64)
}

type Service struct {
	repo     Repository
	carts    CartProvider
	contacts ContactProvider
	mail     MailSender
	cache    cache.Cache
	cfg      config.CacheConfig
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	carts CartProvider,
	contacts ContactProvider,
	mail MailSender,
	c cache.Cache,
	cfg config.CacheConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		carts:    carts,
		contacts: contacts,
		mail:     mail,
		cache:    c,
		cfg:      cfg,
		logger:   logger,
	}
}

func ordersCacheKey(accountID string) string {
	return "orders:" + accountID
}

// CreateOrder turns the cart into a pending order. Prices are captured live
// at this moment and the total is fixed for the order's lifetime. A retried
// checkout within the same hour for the same cart resolves to the order the
// first attempt created.
func (s *Service) CreateOrder(
	ctx context.Context,
	accountID string,
) (*Order, error) {
	contact, err := s.contacts.Contact(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get contact info: %w", err)
	}
	if contact.Phone == "" || contact.Address == "" {
		return nil, ErrMissingContactInfo
	}

	lines, err := s.carts.PricedLines(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	key := idempotencyKey(accountID, lines, time.Now().UTC())

	if existing, err := s.repo.FindByIdempotencyKey(ctx, accountID, key); err == nil {
		return existing, nil
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	o := &Order{
		ID:             uuid.NewString(),
		AccountID:      accountID,
		Items:          make([]OrderItem, 0, len(lines)),
		Status:         StatusPending,
		IdempotencyKey: key,
	}

	for _, line := range lines {
		subtotal := line.UnitPrice * float64(line.Quantity)
		o.Items = append(o.Items, OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  subtotal,
		})
		o.Total += subtotal
	}

	if err := s.repo.Create(ctx, o); err != nil {
		// Lost the race to a concurrent retry with the same key.
		if errors.Is(err, core.ErrDuplicateKey) {
			return s.repo.FindByIdempotencyKey(ctx, accountID, key)
		}
		return nil, err
	}

	if err := s.carts.ClearCart(ctx, accountID); err != nil {
		s.logger.WarnContext(ctx, "cart clear after checkout failed",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
	}

	s.invalidate(ctx, accountID)

	s.mail.SendOrderConfirmation(contact.Email, contact.Name, o.ID, o.Total)
	s.mail.SendOrderNotification(o.ID, contact.Email, o.Total)

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", o.ID),
		slog.String("account_id", accountID),
		slog.Float64("total", o.Total),
	)

	return o, nil
}

// MarkPaid is idempotency-aware: the conditional update only matches a
// pending order, and a miss is diagnosed afterwards so the caller can tell
// "already paid" from "no such order". The invoice needs somewhere to go, so
// an account without email or name is rejected before any state changes.
func (s *Service) MarkPaid(
	ctx context.Context,
	accountID, orderID string,
) (*Order, error) {
	contact, err := s.contacts.Contact(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get contact info: %w", err)
	}
	if contact.Email == "" || contact.Name == "" {
		return nil, ErrMissingContactInfo
	}

	o, err := s.repo.MarkPaid(ctx, orderID, accountID)
	if err == nil {
		s.invalidate(ctx, accountID)

		s.mail.SendOrderInvoice(contact.Email, contact.Name, o.ID, o.Total)

		s.logger.InfoContext(ctx, "order paid",
			slog.String("order_id", o.ID),
			slog.String("account_id", accountID),
		)

		return o, nil
	}

	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	existing, getErr := s.repo.GetByID(ctx, orderID)
	if getErr != nil {
		return nil, fmt.Errorf("mark paid: %w", core.ErrNotFound)
	}

	// Another account's order looks like a missing one.
	if existing.AccountID != accountID {
		return nil, fmt.Errorf("mark paid: %w", core.ErrNotFound)
	}

	switch existing.Status {
	case StatusPaid:
		return nil, ErrAlreadyPaid
	case StatusCancelled:
		return nil, ErrOrderCancelled
	default:
		return nil, fmt.Errorf("mark paid: %w", core.ErrNotFound)
	}
}

func (s *Service) GetOrder(
	ctx context.Context,
	accountID, orderID string,
) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.AccountID != accountID {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}

	return o, nil
}

// ListOrders serves from cache when it can. An empty history is cached the
// same as a populated one.
func (s *Service) ListOrders(
	ctx context.Context,
	accountID string,
) ([]Order, error) {
	key := ordersCacheKey(accountID)

	var cached []Order
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "cache read failed",
			slog.String("key", key), slog.Any("error", err))
	}

	orders, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, s.cache, key, orders, s.cfg.OrderTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key), slog.Any("error", err))
	}

	return orders, nil
}

func (s *Service) ListAll(
	ctx context.Context,
	params ListOrdersParams,
) ([]Order, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) invalidate(ctx context.Context, accountID string) {
	if err := s.cache.Delete(ctx, ordersCacheKey(accountID)); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed",
			slog.String("account_id", accountID),
			slog.Any("error", err),
		)
	}
}

// idempotencyKey fingerprints a checkout: same account, same cart contents,
// same clock hour resolve to the same key.
func idempotencyKey(accountID string, lines []Line, now time.Time) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%s:%d", line.ProductID, line.Quantity))
	}
	sort.Strings(parts)

	payload := accountID + "|" + strings.Join(parts, ",") + "|" +
		now.Format("2006010215")

	return core.HashToken(payload)
}
