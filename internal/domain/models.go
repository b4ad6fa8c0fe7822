package domain

// Order status literals. CANCELLED and COMPLETED are terminal.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// ValidStatus reports whether s is a recognized order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transitions are permitted.
func Terminal(s string) bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Product struct {
	ID         string `db:"id" json:"id"`
	OwnerID    string `db:"owner_id" json:"-"`
	Title      string `db:"title" json:"title"`
	SKU        string `db:"sku" json:"sku"`
	PriceCents int64  `db:"price_cents" json:"price_cents"`
	Stock      int    `db:"stock" json:"stock"`
	CreatedAt  string `db:"created_at" json:"created_at"`
	UpdatedAt  string `db:"updated_at" json:"updated_at,omitempty"`
}

type Customer struct {
	ID        string `db:"id" json:"id"`
	OwnerID   string `db:"owner_id" json:"-"`
	Email     string `db:"email" json:"email"`
	Name      string `db:"name" json:"name"`
	Phone     string `db:"phone" json:"phone,omitempty"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type Order struct {
	ID          string `db:"id" json:"id"`
	OwnerID     string `db:"owner_id" json:"-"`
	OrderNumber string `db:"order_number" json:"order_number"`
	CustomerID  string `db:"customer_id" json:"customer_id"`
	Status      string `db:"status" json:"status"`
	Notes       string `db:"notes" json:"notes,omitempty"`
	OrderDate   string `db:"order_date" json:"order_date"`
	TotalCents  int64  `db:"total_cents" json:"total_cents"`

	// Hydrated on reads; not columns of the orders row.
	Customer *Customer   `db:"-" json:"customer,omitempty"`
	Items    []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem is one line of an order. PriceCents is the unit price captured
// at creation time; it never tracks later product price changes.
type OrderItem struct {
	ID         string `db:"id" json:"id"`
	OrderID    string `db:"order_id" json:"-"`
	ProductID  string `db:"product_id" json:"product_id"`
	Title      string `db:"title" json:"title,omitempty"`
	Quantity   int    `db:"quantity" json:"quantity"`
	PriceCents int64  `db:"price_cents" json:"price_cents"`
}

// Subtotal is quantity times the captured unit price.
func (i OrderItem) Subtotal() int64 { return int64(i.Quantity) * i.PriceCents }

type Owner struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	Name      string `db:"name" json:"name"`
	Hash      string `db:"password_hash" json:"-"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
