package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"orderdesk/internal/domain"
)

// ErrInsufficientStock is returned by AdjustStock when a decrement would
// push stock below zero. The reservation engine converts it into an
// itemized out-of-stock error after re-reading current availability.
var ErrInsufficientStock = errors.New("insufficient stock")

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, owner_id, title, sku, price_cents, stock, created_at, COALESCE(updated_at,'') AS updated_at`

// FindByIDs loads the given products owner-scoped. Callers inside a
// transaction pass the tx as q so reads see their own writes.
func (r *ProductRepo) FindByIDs(ctx context.Context, q sqlx.ExtContext, ownerID string, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
	  SELECT `+productCols+`
	  FROM products
	  WHERE owner_id = ? AND id IN (?)
	`, ownerID, ids)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	err = sqlx.SelectContext(ctx, q, &out, q.Rebind(query), args...)
	return out, err
}

// ByIDOrSKU looks a product up by ID first, then by SKU. ID precedence is
// part of the contract: a SKU that collides with another product's ID never
// shadows it.
func (r *ProductRepo) ByIDOrSKU(ctx context.Context, ownerID, key string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE owner_id = ? AND id = ?
	`, ownerID, key)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	err = r.db.GetContext(ctx, &p, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE owner_id = ? AND LOWER(sku) = LOWER(?)
	`, ownerID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, ownerID string) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.SelectContext(ctx, &out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE owner_id = ?
	  ORDER BY title
	`, ownerID)
	return out, err
}

// AdjustStock applies delta to a product's stock inside the caller's
// transaction. Decrements are conditional: the row only changes when enough
// stock remains, so two concurrent reservations can never both pass a stale
// check.
func (r *ProductRepo) AdjustStock(ctx context.Context, tx *sqlx.Tx, productID string, delta int) error {
	res, err := tx.ExecContext(ctx, `
	  UPDATE products
	  SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND stock + ? >= 0
	`, delta, productID, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Stock reads current stock through q (tx or db).
func (r *ProductRepo) Stock(ctx context.Context, q sqlx.ExtContext, ownerID, productID string) (int, error) {
	var stock int
	err := sqlx.GetContext(ctx, q, &stock, q.Rebind(`
	  SELECT stock FROM products WHERE owner_id = ? AND id = ?
	`), ownerID, productID)
	return stock, err
}

func (r *ProductRepo) Insert(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO products(id, owner_id, title, sku, price_cents, stock)
	  VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.OwnerID, p.Title, p.SKU, p.PriceCents, p.Stock)
	return err
}

// Update rewrites the admin-editable fields of a product.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
	  UPDATE products
	  SET title = ?, sku = ?, price_cents = ?, stock = ?, updated_at = CURRENT_TIMESTAMP
	  WHERE owner_id = ? AND id = ?
	`, p.Title, p.SKU, p.PriceCents, p.Stock, p.OwnerID, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
