package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"orderdesk/internal/domain"
)

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// Find returns the customer or nil when absent / owned by another tenant.
func (r *CustomerRepo) Find(ctx context.Context, ownerID, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.GetContext(ctx, &c, `
	  SELECT id, owner_id, email, name, phone, created_at
	  FROM customers
	  WHERE owner_id = ? AND id = ?
	`, ownerID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) List(ctx context.Context, ownerID string) ([]domain.Customer, error) {
	var out []domain.Customer
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, owner_id, email, name, phone, created_at
	  FROM customers
	  WHERE owner_id = ?
	  ORDER BY name
	`, ownerID)
	return out, err
}

// CountOrders counts all orders ever placed by the customer, any status.
// Customer deletion is blocked while this is non-zero.
func (r *CustomerRepo) CountOrders(ctx context.Context, customerID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders WHERE customer_id = ?`, customerID)
	return n, err
}

func (r *CustomerRepo) Insert(ctx context.Context, c domain.Customer) error {
	_, err := r.db.ExecContext(ctx, `
	  INSERT INTO customers(id, owner_id, email, name, phone)
	  VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.OwnerID, c.Email, c.Name, c.Phone)
	return err
}

func (r *CustomerRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE owner_id = ? AND id = ?`, ownerID, id)
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
