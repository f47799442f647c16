// AngelaMos | 2026
// sweeper.go

package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/carterperez-dev/commerce-backend/internal/config"
)

// CartStore deletes carts untouched since the cutoff.
type CartStore interface {
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// OrderStore cancels pending orders older than the cutoff. Paid orders are
// out of its reach by contract.
type OrderStore interface {
	CancelStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// Sweeper runs the periodic retention pass over carts and pending orders.
type Sweeper struct {
	carts  CartStore
	orders OrderStore
	cfg    config.SweepConfig
	logger *slog.Logger
}

func New(
	carts CartStore,
	orders OrderStore,
	cfg config.SweepConfig,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{
		carts:  carts,
		orders: orders,
		cfg:    cfg,
		logger: logger,
	}
}

// Run blocks until ctx is cancelled. One pass runs immediately so a restart
// never postpones retention by a full interval.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()

	carts, err := s.carts.DeleteStale(ctx, now.Add(-s.cfg.CartRetention))
	if err != nil {
		s.logger.Error("cart sweep failed", slog.Any("error", err))
	}

	orders, err := s.orders.CancelStale(ctx, now.Add(-s.cfg.OrderRetention))
	if err != nil {
		s.logger.Error("order sweep failed", slog.Any("error", err))
	}

	if carts > 0 || orders > 0 {
		s.logger.Info("sweep completed",
			slog.Int64("carts_deleted", carts),
			slog.Int64("orders_cancelled", orders),
		)
	}
}
