package dto

import "time"

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Subtotal  int64  `json:"subtotal"`
}

type CartResponse struct {
	Items []*CartLine `json:"items"`
	Total int64       `json:"total"`
}

type CheckoutResponse struct {
	OrderID string `json:"order_id"`
}

type InitiatePaymentResponse struct {
	PaymentID string    `json:"payment_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ConfirmPaymentRequest struct {
	Method string `json:"method"`
}

type ConfirmPaymentResponse struct {
	OrderID string `json:"order_id"`
}

type PaymentResponse struct {
	PaymentID string     `json:"payment_id"`
	Amount    int64      `json:"amount"`
	Currency  string     `json:"currency"`
	Status    string     `json:"status"`
	Method    string     `json:"method,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Currency  string `json:"currency"`
}

type OrderDetail struct {
	OrderID   string       `json:"order_id"`
	BuyerID   string       `json:"buyer_id"`
	Status    string       `json:"status"`
	Total     int64        `json:"total"`
	Currency  string       `json:"currency"`
	PaymentID string       `json:"payment_id,omitempty"`
	Items     []*OrderLine `json:"items"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type BulkStatusRequest struct {
	OrderIDs []string `json:"order_ids"`
	Status   string   `json:"status"`
}

type BulkStatusResponse struct {
	Updated int64 `json:"updated"`
}
