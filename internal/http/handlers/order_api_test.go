package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"orderdesk/internal/config"
	"orderdesk/internal/http/handlers"
)

// Minimal app with a seeded tenant and a live session token.
func newAPIApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	schema := `
	CREATE TABLE owners(id TEXT PRIMARY KEY, email TEXT, name TEXT, password_hash TEXT,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP);
	CREATE TABLE sessions(token TEXT PRIMARY KEY, owner_id TEXT,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, last_seen TEXT);
	CREATE TABLE products(id TEXT PRIMARY KEY, owner_id TEXT, title TEXT, sku TEXT,
	  price_cents INTEGER, stock INTEGER, created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE UNIQUE INDEX idx_products_owner_sku ON products(owner_id, LOWER(sku));
	CREATE TABLE customers(id TEXT PRIMARY KEY, owner_id TEXT, email TEXT, name TEXT,
	  phone TEXT DEFAULT '', created_at TEXT DEFAULT CURRENT_TIMESTAMP);
	CREATE TABLE orders(id TEXT PRIMARY KEY, owner_id TEXT, order_number TEXT, customer_id TEXT,
	  status TEXT DEFAULT 'PENDING', notes TEXT DEFAULT '', order_date TEXT DEFAULT CURRENT_TIMESTAMP,
	  total_cents INTEGER DEFAULT 0);
	CREATE UNIQUE INDEX idx_orders_owner_number ON orders(owner_id, order_number);
	CREATE TABLE order_items(id TEXT PRIMARY KEY, order_id TEXT, product_id TEXT,
	  quantity INTEGER, price_cents INTEGER);

	INSERT INTO owners(id,email,name,password_hash) VALUES ('own-1','demo@orderdesk.test','Demo','x');
	INSERT INTO sessions(token,owner_id) VALUES ('tok-test','own-1');
	INSERT INTO products(id,owner_id,title,sku,price_cents,stock) VALUES
	  ('prod-kb','own-1','Mechanical Keyboard','KB-87',12999,5);
	INSERT INTO customers(id,owner_id,email,name,phone) VALUES
	  ('cust-ada','own-1','ada@example.com','Ada Lovelace','+1 555 0100');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}

	deps := handlers.NewDeps(db, config.Config{CacheTTL: time.Minute})
	app := fiber.New()
	app.Use(requestid.New())

	api := app.Group("/api/v1", handlers.RequireOwner(deps.Auth))
	api.Post("/orders", deps.OrderHandler.Create)
	api.Get("/orders", deps.OrderHandler.List)
	api.Get("/orders/stats", deps.OrderHandler.Stats)
	api.Get("/orders/:id", deps.OrderHandler.Get)
	api.Post("/orders/:id/cancel", deps.OrderHandler.Cancel)
	api.Get("/products/:key", deps.ProductHandler.Get)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func TestAPI_RequiresAuth(t *testing.T) {
	app, _ := newAPIApp(t)
	resp, _ := doJSON(t, app, "GET", "/api/v1/orders", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "GET", "/api/v1/orders", "tok-bogus", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("want 401 for bogus token, got %d", resp.StatusCode)
	}
}

func TestAPI_OrderLifecycle(t *testing.T) {
	app, db := newAPIApp(t)

	resp, body := doJSON(t, app, "POST", "/api/v1/orders", "tok-test",
		`{"customer_id":"cust-ada","items":[{"product_id":"prod-kb","quantity":3}],"notes":"ring twice"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d: %v", resp.StatusCode, body)
	}
	orderID, _ := body["id"].(string)
	number, _ := body["order_number"].(string)
	if orderID == "" || !strings.HasPrefix(number, "ORD-") {
		t.Fatalf("bad create response: %v", body)
	}
	if body["total_cents"].(float64) != 3*12999 {
		t.Fatalf("bad total: %v", body["total_cents"])
	}

	var stock int
	if err := db.Get(&stock, `SELECT stock FROM products WHERE id='prod-kb'`); err != nil {
		t.Fatal(err)
	}
	if stock != 2 {
		t.Fatalf("want stock 2 after create, got %d", stock)
	}

	// shortfall comes back itemized as a 409
	resp, body = doJSON(t, app, "POST", "/api/v1/orders", "tok-test",
		`{"customer_id":"cust-ada","items":[{"product_id":"prod-kb","quantity":99}]}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("want 409, got %d: %v", resp.StatusCode, body)
	}
	apiErr, _ := body["error"].(map[string]any)
	if apiErr["code"] != "OUT_OF_STOCK" {
		t.Fatalf("want OUT_OF_STOCK, got %v", apiErr)
	}
	if sf, _ := apiErr["shortfalls"].([]any); len(sf) != 1 {
		t.Fatalf("shortfalls not itemized: %v", apiErr)
	}

	resp, body = doJSON(t, app, "GET", "/api/v1/orders/"+orderID, "tok-test", "")
	if resp.StatusCode != http.StatusOK || body["status"] != "PENDING" {
		t.Fatalf("get order: %d %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, "POST", "/api/v1/orders/"+orderID+"/cancel", "tok-test", "")
	if resp.StatusCode != http.StatusOK || body["status"] != "CANCELLED" {
		t.Fatalf("cancel: %d %v", resp.StatusCode, body)
	}
	if err := db.Get(&stock, `SELECT stock FROM products WHERE id='prod-kb'`); err != nil {
		t.Fatal(err)
	}
	if stock != 5 {
		t.Fatalf("stock not restored after cancel, got %d", stock)
	}

	// second cancel is a conflict
	resp, body = doJSON(t, app, "POST", "/api/v1/orders/"+orderID+"/cancel", "tok-test", "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("want 409 for re-cancel, got %d: %v", resp.StatusCode, body)
	}
}

func TestAPI_ListAndStats(t *testing.T) {
	app, _ := newAPIApp(t)

	if resp, body := doJSON(t, app, "POST", "/api/v1/orders", "tok-test",
		`{"customer_id":"cust-ada","items":[{"product_id":"prod-kb","quantity":1}]}`); resp.StatusCode != http.StatusCreated {
		t.Fatalf("seed order failed: %v", body)
	}

	resp, body := doJSON(t, app, "GET", "/api/v1/orders?q=lovelace&page=1&limit=10", "tok-test", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: %d", resp.StatusCode)
	}
	if body["total"].(float64) != 1 {
		t.Fatalf("search miss: %v", body)
	}

	resp, body = doJSON(t, app, "GET", "/api/v1/orders/stats?period=month", "tok-test", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: %d", resp.StatusCode)
	}
	if body["total_orders"].(float64) != 1 || body["total_revenue_cents"].(float64) != 12999 {
		t.Fatalf("bad stats: %v", body)
	}

	// unknown period is a 400
	resp, _ = doJSON(t, app, "GET", "/api/v1/orders/stats?period=decade", "tok-test", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 for bad period, got %d", resp.StatusCode)
	}
}

func TestAPI_ProductLookup(t *testing.T) {
	app, _ := newAPIApp(t)

	resp, body := doJSON(t, app, "GET", "/api/v1/products/KB-87", "tok-test", "")
	if resp.StatusCode != http.StatusOK || body["id"] != "prod-kb" {
		t.Fatalf("lookup by sku: %d %v", resp.StatusCode, body)
	}
	resp, _ = doJSON(t, app, "GET", "/api/v1/products/nope", "tok-test", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}
