package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"orderdesk/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, owner_id, order_number, customer_id, status, notes, order_date, total_cents`

// MaxNumberSuffix returns the highest 4-digit counter among the owner's
// orders carrying prefix, 0 when none exist. Allocating from the maximum
// rather than the row count keeps numbers monotonic even after deletions.
// Runs on the creation transaction so the counter and the stock decrement
// share one boundary.
func (r *OrderRepo) MaxNumberSuffix(ctx context.Context, tx *sqlx.Tx, ownerID, prefix string) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, `
	  SELECT COALESCE(MAX(CAST(substr(order_number, -4) AS INTEGER)), 0) FROM orders
	  WHERE owner_id = ? AND order_number LIKE ?
	`, ownerID, prefix+"%")
	return n, err
}

func (r *OrderRepo) Insert(ctx context.Context, tx *sqlx.Tx, o domain.Order) error {
	_, err := tx.ExecContext(ctx, `
	  INSERT INTO orders(id, owner_id, order_number, customer_id, status, notes, order_date, total_cents)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.OwnerID, o.OrderNumber, o.CustomerID, o.Status, o.Notes, o.OrderDate, o.TotalCents)
	return err
}

func (r *OrderRepo) InsertItem(ctx context.Context, tx *sqlx.Tx, it domain.OrderItem) error {
	_, err := tx.ExecContext(ctx, `
	  INSERT INTO order_items(id, order_id, product_id, quantity, price_cents)
	  VALUES (?, ?, ?, ?, ?)
	`, it.ID, it.OrderID, it.ProductID, it.Quantity, it.PriceCents)
	return err
}

// RecomputeTotal derives the order total from its items table, so the stored
// value can never drift from the lines.
func (r *OrderRepo) RecomputeTotal(ctx context.Context, tx *sqlx.Tx, orderID string) error {
	_, err := tx.ExecContext(ctx, `
	  UPDATE orders
	  SET total_cents = (
	    SELECT COALESCE(SUM(price_cents * quantity), 0)
	    FROM order_items WHERE order_id = ?
	  )
	  WHERE id = ?
	`, orderID, orderID)
	return err
}

// Get returns the order fully hydrated (customer + items) or nil when absent
// or owned by another tenant.
func (r *OrderRepo) Get(ctx context.Context, q sqlx.ExtContext, ownerID, id string) (*domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, q, &o, q.Rebind(`
	  SELECT `+orderCols+` FROM orders WHERE owner_id = ? AND id = ?
	`), ownerID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var c domain.Customer
	err = sqlx.GetContext(ctx, q, &c, q.Rebind(`
	  SELECT id, owner_id, email, name, phone, created_at
	  FROM customers WHERE id = ?
	`), o.CustomerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		o.Customer = &c
	}

	items, err := r.Items(ctx, q, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *OrderRepo) Items(ctx context.Context, q sqlx.ExtContext, orderID string) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := sqlx.SelectContext(ctx, q, &items, q.Rebind(`
	  SELECT oi.id, oi.order_id, oi.product_id, p.title, oi.quantity, oi.price_cents
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY p.title
	`), orderID)
	return items, err
}

// Status reads just the status column, owner-scoped. sql.ErrNoRows means the
// order is absent or belongs to another tenant.
func (r *OrderRepo) Status(ctx context.Context, q sqlx.ExtContext, ownerID, id string) (string, error) {
	var s string
	err := sqlx.GetContext(ctx, q, &s, q.Rebind(`
	  SELECT status FROM orders WHERE owner_id = ? AND id = ?
	`), ownerID, id)
	return s, err
}

// Number reads the order number for error messages.
func (r *OrderRepo) Number(ctx context.Context, q sqlx.ExtContext, ownerID, id string) (string, error) {
	var n string
	err := sqlx.GetContext(ctx, q, &n, q.Rebind(`
	  SELECT order_number FROM orders WHERE owner_id = ? AND id = ?
	`), ownerID, id)
	return n, err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, tx *sqlx.Tx, ownerID, id, status string) error {
	res, err := tx.ExecContext(ctx, `
	  UPDATE orders SET status = ? WHERE owner_id = ? AND id = ?
	`, status, ownerID, id)
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

// Delete removes the order and its items. Items are deleted explicitly so the
// cascade does not depend on the connection's foreign_keys pragma.
func (r *OrderRepo) Delete(ctx context.Context, tx *sqlx.Tx, ownerID, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE owner_id = ? AND id = ?`, ownerID, id)
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

// ---------- Listing ----------

type ListOptions struct {
	Q          string // free-text: order number, customer name/email/phone, notes
	CustomerID string
	SortBy     string
	SortDir    string // asc | desc
	Page       int
	Limit      int
}

type ListResult struct {
	Data       []domain.Order `json:"data"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Limit      int            `json:"limit"`
}

// Whitelisted sort columns; anything else falls back to order_date.
var sortCols = map[string]string{
	"order_number": "o.order_number",
	"order_date":   "o.order_date",
	"status":       "o.status",
	"total":        "o.total_cents",
	"customer_id":  "o.customer_id",
}

func (r *OrderRepo) List(ctx context.Context, ownerID string, opts ListOptions) (ListResult, error) {
	where := `o.owner_id = ?`
	args := []any{ownerID}

	if opts.Q != "" {
		like := "%" + strings.ToLower(opts.Q) + "%"
		where += ` AND (LOWER(o.order_number) LIKE ? OR LOWER(c.name) LIKE ?
		  OR LOWER(c.email) LIKE ? OR LOWER(c.phone) LIKE ? OR LOWER(o.notes) LIKE ?)`
		args = append(args, like, like, like, like, like)
	}
	if opts.CustomerID != "" {
		where += ` AND o.customer_id = ?`
		args = append(args, opts.CustomerID)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `
	  SELECT COUNT(*)
	  FROM orders o JOIN customers c ON c.id = o.customer_id
	  WHERE `+where, args...); err != nil {
		return ListResult{}, err
	}

	col, ok := sortCols[opts.SortBy]
	if !ok {
		col = "o.order_date"
	}
	dir := "DESC"
	if strings.EqualFold(opts.SortDir, "asc") {
		dir = "ASC"
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 20
	}

	var data []domain.Order
	query := `
	  SELECT o.id, o.owner_id, o.order_number, o.customer_id, o.status, o.notes, o.order_date, o.total_cents
	  FROM orders o JOIN customers c ON c.id = o.customer_id
	  WHERE ` + where + `
	  ORDER BY ` + col + ` ` + dir + `, o.id ` + dir + `
	  LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)
	if err := r.db.SelectContext(ctx, &data, query, args...); err != nil {
		return ListResult{}, err
	}

	totalPages := (total + limit - 1) / limit
	return ListResult{Data: data, Total: total, Page: page, TotalPages: totalPages, Limit: limit}, nil
}

// ---------- Stats ----------

type Stats struct {
	TotalOrders       int            `json:"total_orders"`
	TotalRevenueCents int64          `json:"total_revenue_cents"`
	ByStatus          map[string]int `json:"by_status"`
	Recent            []domain.Order `json:"recent"`
}

// Recognized stats periods mapped to SQLite datetime modifiers.
var periodModifiers = map[string]string{
	"day":   "-1 day",
	"week":  "-7 days",
	"month": "-1 month",
	"year":  "-1 year",
}

func ValidPeriod(p string) bool { _, ok := periodModifiers[p]; return ok }

// StatsFor aggregates the owner's orders within the lookback window. Revenue
// excludes CANCELLED by status predicate, not merely by date.
func (r *OrderRepo) StatsFor(ctx context.Context, ownerID, period string) (Stats, error) {
	mod, ok := periodModifiers[period]
	if !ok {
		return Stats{}, errors.New("unknown period: " + period)
	}

	out := Stats{ByStatus: map[string]int{}}

	if err := r.db.GetContext(ctx, &out.TotalOrders, `
	  SELECT COUNT(*) FROM orders
	  WHERE owner_id = ? AND datetime(order_date) >= datetime('now', ?)
	`, ownerID, mod); err != nil {
		return Stats{}, err
	}

	if err := r.db.GetContext(ctx, &out.TotalRevenueCents, `
	  SELECT COALESCE(SUM(total_cents), 0) FROM orders
	  WHERE owner_id = ? AND status != 'CANCELLED'
	    AND datetime(order_date) >= datetime('now', ?)
	`, ownerID, mod); err != nil {
		return Stats{}, err
	}

	rows, err := r.db.QueryxContext(ctx, `
	  SELECT status, COUNT(*) AS n FROM orders
	  WHERE owner_id = ? AND datetime(order_date) >= datetime('now', ?)
	  GROUP BY status
	`, ownerID, mod)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return Stats{}, err
		}
		out.ByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	if err := r.db.SelectContext(ctx, &out.Recent, `
	  SELECT `+orderCols+` FROM orders
	  WHERE owner_id = ?
	  ORDER BY datetime(order_date) DESC, id DESC
	  LIMIT 5
	`, ownerID); err != nil {
		return Stats{}, err
	}

	return out, nil
}
