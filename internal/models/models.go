package models

import "time"

// User represents a registered account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Address      string    `db:"address" json:"address,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Product represents a product in the catalog. Price is in cents.
type Product struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Price     int64     `db:"price" json:"price"`
	Category  string    `db:"category" json:"category"`
	Quantity  int       `db:"quantity" json:"quantity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Product categories
var ProductCategories = []string{
	"electronics",
	"clothing",
	"books",
	"home",
	"toys",
	"other",
}

// ValidCategory reports whether c is one of the known product categories.
func ValidCategory(c string) bool {
	for _, cat := range ProductCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// Order represents a customer order. TotalAmount is in cents and is written
// once at creation; it is never recomputed from current catalog prices.
type Order struct {
	ID          int64       `db:"id" json:"id"`
	UserID      int64       `db:"user_id" json:"user_id"`
	TotalAmount int64       `db:"total_amount" json:"total_amount"`
	Status      string      `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
	Items       []OrderItem `db:"-" json:"items"`
}

// OrderItem represents one line of an order. UnitPrice is the price snapshot
// captured when the order was placed.
type OrderItem struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"order_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
	UnitPrice int64 `db:"unit_price" json:"unit_price"`
}

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusSuccessful = "successful"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s belongs to the closed status set.
func ValidOrderStatus(s string) bool {
	return s == OrderStatusPending || s == OrderStatusSuccessful || s == OrderStatusCancelled
}

// OrderAudit records a consumed order event, keyed by event id for
// consumer idempotency.
type OrderAudit struct {
	EventID    string    `db:"event_id"`
	OrderID    int64     `db:"order_id"`
	EventType  string    `db:"event_type"`
	RecordedAt time.Time `db:"recorded_at"`
}
