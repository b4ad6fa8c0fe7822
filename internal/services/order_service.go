package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"orderdesk/internal/domain"
	"orderdesk/internal/repos"
)

// OrderService is the order lifecycle manager: it owns the state machine
// and runs every mutation inside one transaction, so a failure anywhere in
// the pipeline rolls back the stock reservation with it.
type OrderService struct {
	db        *sqlx.DB
	Orders    *repos.OrderRepo
	Customers *repos.CustomerRepo
	Stock     *StockService
	Numbers   *OrderNumberGenerator

	// Now is swappable in tests.
	Now func() time.Time
}

func NewOrderService(db *sqlx.DB, orders *repos.OrderRepo, customers *repos.CustomerRepo, stock *StockService) *OrderService {
	return &OrderService{
		db:        db,
		Orders:    orders,
		Customers: customers,
		Stock:     stock,
		Numbers:   &OrderNumberGenerator{Orders: orders},
		Now:       time.Now,
	}
}

type CreateOrderInput struct {
	CustomerID string      `json:"customer_id"`
	Items      []ItemInput `json:"items"`
	Notes      string      `json:"notes"`
}

// Create validates the request, reserves stock, mints an order number, and
// persists the order with unit prices snapshotted from the current catalog —
// all in one transaction. Validation failures happen before any mutation.
func (s *OrderService) Create(ctx context.Context, ownerID string, in CreateOrderInput) (*domain.Order, error) {
	cust, err := s.Customers.Find(ctx, ownerID, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if cust == nil {
		return nil, domain.NotFound("customer")
	}
	if len(in.Items) == 0 {
		return nil, domain.Validation("order must contain at least one item")
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, domain.Validation(fmt.Sprintf("invalid quantity %d for product %s", it.Quantity, it.ProductID))
		}
	}

	now := s.Now()
	var out *domain.Order
	err = repos.RunTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := s.Stock.Reserve(ctx, tx, ownerID, in.Items)
		if err != nil {
			return err
		}

		number, err := s.Numbers.Next(ctx, tx, ownerID, now)
		if err != nil {
			return err
		}

		order := domain.Order{
			ID:          uuid.NewString(),
			OwnerID:     ownerID,
			OrderNumber: number,
			CustomerID:  in.CustomerID,
			Status:      domain.StatusPending,
			Notes:       in.Notes,
			OrderDate:   now.UTC().Format("2006-01-02 15:04:05"),
			TotalCents:  res.TotalCents(),
		}
		if err := s.Orders.Insert(ctx, tx, order); err != nil {
			if repos.IsUniqueViolation(err) {
				return domain.Conflict("order number " + number + " already allocated")
			}
			return err
		}
		for _, line := range res.Lines {
			item := domain.OrderItem{
				ID:         uuid.NewString(),
				OrderID:    order.ID,
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
				PriceCents: line.PriceCents,
			}
			if err := s.Orders.InsertItem(ctx, tx, item); err != nil {
				return err
			}
		}
		// Derive the stored total from the items table so it cannot drift.
		if err := s.Orders.RecomputeTotal(ctx, tx, order.ID); err != nil {
			return err
		}

		out, err = s.Orders.Get(ctx, tx, ownerID, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the hydrated order, owner-scoped.
func (s *OrderService) Get(ctx context.Context, ownerID, orderID string) (*domain.Order, error) {
	o, err := s.Orders.Get(ctx, s.db, ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("order")
	}
	return o, nil
}

// UpdateStatus moves an order to a new status. Terminal orders stay put.
// Status changes never touch stock; only Create and Cancel do.
func (s *OrderService) UpdateStatus(ctx context.Context, ownerID, orderID, status string) (*domain.Order, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.Validation("unknown status: " + status)
	}

	var out *domain.Order
	err := repos.RunTx(ctx, s.db, func(tx *sqlx.Tx) error {
		cur, err := s.Orders.Status(ctx, tx, ownerID, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("order")
		}
		if err != nil {
			return err
		}
		if domain.Terminal(cur) && cur != status {
			return domain.InvalidState("cannot change status of a " + cur + " order")
		}
		if cur != status {
			if err := s.Orders.UpdateStatus(ctx, tx, ownerID, orderID, status); err != nil {
				return err
			}
		}
		out, err = s.Orders.Get(ctx, tx, ownerID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel sets the order to CANCELLED and restores stock, but only when the
// prior status was PENDING or PROCESSING. A COMPLETED order is considered
// fulfilled; returns are a restock workflow this path does not perform.
func (s *OrderService) Cancel(ctx context.Context, ownerID, orderID string) (*domain.Order, error) {
	var out *domain.Order
	err := repos.RunTx(ctx, s.db, func(tx *sqlx.Tx) error {
		cur, err := s.Orders.Status(ctx, tx, ownerID, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("order")
		}
		if err != nil {
			return err
		}
		if cur == domain.StatusCancelled {
			number, nerr := s.Orders.Number(ctx, tx, ownerID, orderID)
			if nerr != nil {
				number = orderID
			}
			return domain.AlreadyCancelled(number)
		}

		if cur == domain.StatusPending || cur == domain.StatusProcessing {
			items, err := s.Orders.Items(ctx, tx, orderID)
			if err != nil {
				return err
			}
			back := make([]ItemInput, 0, len(items))
			for _, it := range items {
				back = append(back, ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
			}
			if err := s.Stock.Release(ctx, tx, back); err != nil {
				return err
			}
		}

		if err := s.Orders.UpdateStatus(ctx, tx, ownerID, orderID, domain.StatusCancelled); err != nil {
			return err
		}
		out, err = s.Orders.Get(ctx, tx, ownerID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an order and its items. Only PENDING and CANCELLED orders
// may go; fulfilled orders keep their audit trail. Stock is untouched:
// cancellation already restored it, or it was never reserved.
func (s *OrderService) Delete(ctx context.Context, ownerID, orderID string) error {
	return repos.RunTx(ctx, s.db, func(tx *sqlx.Tx) error {
		cur, err := s.Orders.Status(ctx, tx, ownerID, orderID)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("order")
		}
		if err != nil {
			return err
		}
		if cur != domain.StatusPending && cur != domain.StatusCancelled {
			return domain.InvalidState("cannot delete a " + cur + " order")
		}
		return s.Orders.Delete(ctx, tx, ownerID, orderID)
	})
}

// List is the query layer: free-text search, customer filter, sorting and
// pagination, all owner-scoped.
func (s *OrderService) List(ctx context.Context, ownerID string, opts repos.ListOptions) (repos.ListResult, error) {
	return s.Orders.List(ctx, ownerID, opts)
}

// Stats aggregates the owner's orders over a lookback period.
func (s *OrderService) Stats(ctx context.Context, ownerID, period string) (repos.Stats, error) {
	if !repos.ValidPeriod(period) {
		return repos.Stats{}, domain.Validation("unknown period: " + period)
	}
	return s.Orders.StatsFor(ctx, ownerID, period)
}
