package model

import "time"

type Product struct {
	ID        string `gorm:"primaryKey;size:64;not null"` // product sku
	Name      string `gorm:"size:128;not null"`
	Price     int64  `gorm:"not null"` // smallest currency unit
	Currency  string `gorm:"size:8;not null"`
	Stock     int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is one buyer/product line; unique per (buyer, product).
// Price is never stored here, it is resolved from Product at checkout time.
type CartItem struct {
	BuyerID   string `gorm:"primaryKey;size:64;not null"`
	ProductID string `gorm:"primaryKey;size:64;index;not null"`
	Quantity  int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	OrderID   string      `gorm:"primaryKey;size:64;not null"`
	BuyerID   string      `gorm:"size:64;index;not null"`
	Status    OrderStatus `gorm:"size:32;index;not null"`
	Total     int64       `gorm:"not null"` // sum of item quantity × unit price
	Currency  string      `gorm:"size:8;not null"`
	PaymentID string      `gorm:"size:64;index"` // set when created via payment confirmation
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem snapshots quantity and unit price at purchase time; historical
// orders stay intact when the product price changes later.
type OrderItem struct {
	ID uint `gorm:"primaryKey"`
	// FK → order.order_id
	OrderID string `gorm:"size:64;index;not null"`
	// FK → product.id
	ProductID string `gorm:"size:64;index;not null"`
	Quantity  int64  `gorm:"not null"`
	UnitPrice int64  `gorm:"not null"`
	Currency  string `gorm:"size:8;not null"`

	CreatedAt time.Time
}

type PaymentSession struct {
	PaymentID string        `gorm:"primaryKey;size:64;not null"`
	BuyerID   string        `gorm:"size:64;index;not null"`
	Amount    int64         `gorm:"not null"`
	Currency  string        `gorm:"size:8;not null"`
	Status    PaymentStatus `gorm:"size:32;index;not null"`
	Method    string        `gorm:"size:32"`
	ExpiresAt time.Time     `gorm:"not null"`
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentItem is the line snapshot fixed when the session is created; the
// order produced by confirmation is built from these, not from the live cart.
type PaymentItem struct {
	ID uint `gorm:"primaryKey"`
	// FK → payment_session.payment_id
	PaymentID string `gorm:"size:64;index;not null"`
	ProductID string `gorm:"size:64;index;not null"`
	Quantity  int64  `gorm:"not null"`
	UnitPrice int64  `gorm:"not null"`
	Currency  string `gorm:"size:8;not null"`

	CreatedAt time.Time
}
