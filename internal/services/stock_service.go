package services

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"orderdesk/internal/domain"
	"orderdesk/internal/repos"
)

// ItemInput is one requested order line.
type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// ReservedLine is a committed line: quantity locked in and unit price
// captured at reservation time.
type ReservedLine struct {
	ProductID  string
	Title      string
	Quantity   int
	PriceCents int64
}

type Reservation struct {
	Lines []ReservedLine
}

func (r *Reservation) TotalCents() int64 {
	var total int64
	for _, l := range r.Lines {
		total += int64(l.Quantity) * l.PriceCents
	}
	return total
}

// StockService validates and applies stock reservations. All mutations run
// on the caller's transaction; a failed reservation leaves no decrements
// behind once the caller rolls back.
type StockService struct {
	Products *repos.ProductRepo
}

func NewStockService(products *repos.ProductRepo) *StockService {
	return &StockService{Products: products}
}

// MergeItems sums quantities for duplicate product ids, preserving the
// first-seen order, so partial sums can't sneak past the stock check.
func MergeItems(items []ItemInput) []ItemInput {
	idx := make(map[string]int, len(items))
	merged := make([]ItemInput, 0, len(items))
	for _, it := range items {
		if i, ok := idx[it.ProductID]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		idx[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged
}

// Reserve checks every line and decrements stock for all of them on tx.
// Shortfalls are collected across all lines so the caller gets one itemized
// error, not one failure per item.
func (s *StockService) Reserve(ctx context.Context, tx *sqlx.Tx, ownerID string, items []ItemInput) (*Reservation, error) {
	merged := MergeItems(items)

	ids := make([]string, 0, len(merged))
	for _, it := range merged {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Products.FindByIDs(ctx, tx, ownerID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var missing []string
	for _, it := range merged {
		if _, ok := byID[it.ProductID]; !ok {
			missing = append(missing, it.ProductID)
		}
	}
	if len(missing) > 0 {
		return nil, domain.ProductsNotFound(missing)
	}

	var short []domain.StockShortfall
	for _, it := range merged {
		p := byID[it.ProductID]
		if p.Stock < it.Quantity {
			short = append(short, domain.StockShortfall{
				ProductID: p.ID,
				Title:     p.Title,
				Available: p.Stock,
				Requested: it.Quantity,
			})
		}
	}
	if len(short) > 0 {
		return nil, domain.OutOfStock(short)
	}

	res := &Reservation{Lines: make([]ReservedLine, 0, len(merged))}
	for _, it := range merged {
		p := byID[it.ProductID]
		if err := s.Products.AdjustStock(ctx, tx, p.ID, -it.Quantity); err != nil {
			if errors.Is(err, repos.ErrInsufficientStock) {
				// A concurrent reservation won between our check and this
				// decrement; report what is actually left now.
				avail, rerr := s.Products.Stock(ctx, tx, ownerID, p.ID)
				if rerr != nil {
					avail = 0
				}
				return nil, domain.OutOfStock([]domain.StockShortfall{{
					ProductID: p.ID,
					Title:     p.Title,
					Available: avail,
					Requested: it.Quantity,
				}})
			}
			return nil, err
		}
		res.Lines = append(res.Lines, ReservedLine{
			ProductID:  p.ID,
			Title:      p.Title,
			Quantity:   it.Quantity,
			PriceCents: p.PriceCents,
		})
	}
	return res, nil
}

// Release returns previously reserved quantities to stock on tx. Symmetric
// to Reserve; used by cancellation.
func (s *StockService) Release(ctx context.Context, tx *sqlx.Tx, items []ItemInput) error {
	for _, it := range MergeItems(items) {
		if err := s.Products.AdjustStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}
