package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"orderdesk/internal/domain"
	"orderdesk/internal/repos"
	"orderdesk/internal/services"
)

func memdbNumbers(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	schema := `
	CREATE TABLE orders(id TEXT PRIMARY KEY, owner_id TEXT, order_number TEXT, customer_id TEXT,
	  status TEXT DEFAULT 'PENDING', notes TEXT DEFAULT '', order_date TEXT DEFAULT CURRENT_TIMESTAMP,
	  total_cents INTEGER DEFAULT 0);
	CREATE UNIQUE INDEX idx_orders_owner_number ON orders(owner_id, order_number);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func nextNumber(t *testing.T, db *sqlx.DB, gen *services.OrderNumberGenerator, ownerID string, date time.Time) (string, error) {
	t.Helper()
	tx, err := db.Beginx()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tx.Rollback() }()
	return gen.Next(context.Background(), tx, ownerID, date)
}

func TestOrderNumber_FormatAndSequence(t *testing.T) {
	db := memdbNumbers(t)
	gen := &services.OrderNumberGenerator{Orders: repos.NewOrderRepo(db)}
	date := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	num, err := nextNumber(t, db, gen, "own-1", date)
	if err != nil {
		t.Fatal(err)
	}
	if num != "ORD-20260828-0001" {
		t.Fatalf("want ORD-20260828-0001, got %s", num)
	}

	// existing orders push the counter forward
	for i := 1; i <= 3; i++ {
		db.MustExec(`INSERT INTO orders(id, owner_id, order_number, customer_id) VALUES (?, 'own-1', ?, 'c')`,
			fmt.Sprintf("o-%d", i), fmt.Sprintf("ORD-20260828-%04d", i))
	}
	num, err = nextNumber(t, db, gen, "own-1", date)
	if err != nil {
		t.Fatal(err)
	}
	if num != "ORD-20260828-0004" {
		t.Fatalf("want ORD-20260828-0004, got %s", num)
	}
}

func TestOrderNumber_PerOwnerAndPerDay(t *testing.T) {
	db := memdbNumbers(t)
	gen := &services.OrderNumberGenerator{Orders: repos.NewOrderRepo(db)}

	db.MustExec(`INSERT INTO orders(id, owner_id, order_number, customer_id) VALUES
	  ('o-1', 'own-1', 'ORD-20260828-0001', 'c'),
	  ('o-2', 'own-1', 'ORD-20260827-0001', 'c')`)

	// another owner's counter starts fresh
	num, err := nextNumber(t, db, gen, "own-2", time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if num != "ORD-20260828-0001" {
		t.Fatalf("counter leaked across owners: %s", num)
	}

	// yesterday's orders don't count toward today
	num, err = nextNumber(t, db, gen, "own-1", time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if num != "ORD-20260828-0002" {
		t.Fatalf("want ORD-20260828-0002, got %s", num)
	}
}

func TestOrderNumber_NoReuseAfterDelete(t *testing.T) {
	db := memdbNumbers(t)
	gen := &services.OrderNumberGenerator{Orders: repos.NewOrderRepo(db)}
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	db.MustExec(`INSERT INTO orders(id, owner_id, order_number, customer_id) VALUES
	  ('o-1', 'own-1', 'ORD-20260828-0001', 'c'),
	  ('o-2', 'own-1', 'ORD-20260828-0002', 'c')`)
	db.MustExec(`DELETE FROM orders WHERE id = 'o-1'`)

	// the gap left by the delete must not be refilled: 0002 still exists and
	// a count-based counter would re-mint it
	num, err := nextNumber(t, db, gen, "own-1", date)
	if err != nil {
		t.Fatal(err)
	}
	if num != "ORD-20260828-0003" {
		t.Fatalf("want ORD-20260828-0003, got %s", num)
	}
}

func TestOrderNumber_CapacityExceeded(t *testing.T) {
	db := memdbNumbers(t)
	gen := &services.OrderNumberGenerator{Orders: repos.NewOrderRepo(db)}
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	db.MustExec(`
	  WITH RECURSIVE seq(n) AS (SELECT 1 UNION ALL SELECT n+1 FROM seq WHERE n < 9999)
	  INSERT INTO orders(id, owner_id, order_number, customer_id)
	  SELECT 'o-'||n, 'own-1', 'ORD-20260828-'||printf('%04d', n), 'c' FROM seq
	`)

	_, err := nextNumber(t, db, gen, "own-1", date)
	var de *domain.Error
	if !errors.As(err, &de) || de.Code != domain.CodeCapacityExceeded {
		t.Fatalf("want CAPACITY_EXCEEDED, got %v", err)
	}
}
