package services_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"orderdesk/internal/domain"
	"orderdesk/internal/repos"
	"orderdesk/internal/services"
)

func memdbCustomers(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	schema := `
	CREATE TABLE customers(id TEXT PRIMARY KEY, owner_id TEXT, email TEXT, name TEXT,
	  phone TEXT DEFAULT '', created_at TEXT DEFAULT CURRENT_TIMESTAMP);
	CREATE TABLE orders(id TEXT PRIMARY KEY, owner_id TEXT, order_number TEXT, customer_id TEXT,
	  status TEXT DEFAULT 'PENDING', notes TEXT DEFAULT '', order_date TEXT DEFAULT CURRENT_TIMESTAMP,
	  total_cents INTEGER DEFAULT 0);
	INSERT INTO customers(id,owner_id,email,name) VALUES
	  ('c-1','own-1','ada@example.com','Ada'),
	  ('c-2','own-1','alan@example.com','Alan');
	INSERT INTO orders(id,owner_id,order_number,customer_id) VALUES
	  ('o-1','own-1','ORD-20260828-0001','c-1');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestCustomerDelete_BlockedWhileOrdersExist(t *testing.T) {
	db := memdbCustomers(t)
	svc := services.NewCustomerService(repos.NewCustomerRepo(db))
	ctx := context.Background()

	err := svc.Delete(ctx, "own-1", "c-1")
	var de *domain.Error
	if !asErr(err, &de) || de.Code != domain.CodeInvalidState {
		t.Fatalf("delete with orders must fail, got %v", err)
	}

	// no orders: delete goes through
	if err := svc.Delete(ctx, "own-1", "c-2"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, "own-1", "c-2"); err == nil {
		t.Fatal("customer still present after delete")
	}
}

func TestCustomerCreate_Validation(t *testing.T) {
	db := memdbCustomers(t)
	svc := services.NewCustomerService(repos.NewCustomerRepo(db))
	ctx := context.Background()

	var de *domain.Error
	if _, err := svc.Create(ctx, "own-1", services.CustomerInput{Email: "not-an-email", Name: "X"}); !asErr(err, &de) || de.Code != domain.CodeValidation {
		t.Fatalf("bad email accepted: %v", err)
	}
	if _, err := svc.Create(ctx, "own-1", services.CustomerInput{Email: "x@example.com", Name: ""}); !asErr(err, &de) || de.Code != domain.CodeValidation {
		t.Fatalf("empty name accepted: %v", err)
	}

	c, err := svc.Create(ctx, "own-1", services.CustomerInput{Email: "x@example.com", Name: "Xavier", Phone: "+1 555 0102"})
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == "" || c.OwnerID != "own-1" {
		t.Fatalf("bad customer: %+v", c)
	}
}

func TestCustomerGet_OwnerScoped(t *testing.T) {
	db := memdbCustomers(t)
	svc := services.NewCustomerService(repos.NewCustomerRepo(db))

	var de *domain.Error
	if _, err := svc.Get(context.Background(), "own-2", "c-1"); !asErr(err, &de) || de.Code != domain.CodeNotFound {
		t.Fatalf("foreign customer visible: %v", err)
	}
}
