package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"orderdesk/internal/domain"
	"orderdesk/internal/repos"
)

// maxOrdersPerDay caps the 4-digit daily counter.
const maxOrdersPerDay = 9999

// OrderNumberGenerator mints ORD-YYYYMMDD-NNNN numbers. The counter is the
// highest suffix already issued for the owner's day, plus one, so deleting
// an order never frees its number for reuse.
// Next must run on the same transaction as the order insert: the insert's
// unique (owner_id, order_number) index then turns any concurrent duplicate
// into a rollback instead of a silent collision.
type OrderNumberGenerator struct {
	Orders *repos.OrderRepo
}

func (g *OrderNumberGenerator) Next(ctx context.Context, tx *sqlx.Tx, ownerID string, date time.Time) (string, error) {
	prefix := fmt.Sprintf("ORD-%s-", date.UTC().Format("20060102"))
	n, err := g.Orders.MaxNumberSuffix(ctx, tx, ownerID, prefix)
	if err != nil {
		return "", err
	}
	counter := n + 1
	if counter > maxOrdersPerDay {
		return "", domain.CapacityExceeded(fmt.Sprintf("daily order capacity of %d reached", maxOrdersPerDay))
	}
	return fmt.Sprintf("%s%04d", prefix, counter), nil
}
