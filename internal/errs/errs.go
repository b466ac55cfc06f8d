// Package errs carries the error taxonomy the engine reports to callers.
// Every failure surfaces with a Kind so HTTP (and any other) surfaces can map
// it to a status code and clients can branch on the code, not the message.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindExpired    Kind = "expired"
	KindTransient  Kind = "transient"
)

type Error struct {
	Kind Kind
	// Code is a stable machine-readable identifier, e.g. "insufficient_stock".
	Code string
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// KindOf extracts the taxonomy kind from an error chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// CodeOf extracts the machine code from an error chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func EmptyCart() error {
	return &Error{Kind: KindValidation, Code: "empty_cart", msg: "cart is empty, nothing to checkout"}
}

func BadStatus(status string) error {
	return &Error{Kind: KindValidation, Code: "bad_status", msg: fmt.Sprintf("unknown order status %q", status)}
}

func MissingField(name string) error {
	return &Error{Kind: KindValidation, Code: "missing_field", msg: fmt.Sprintf("%s is required", name)}
}

func BadQuantity() error {
	return &Error{Kind: KindValidation, Code: "bad_quantity", msg: "item quantity must be positive"}
}

func MixedCurrency() error {
	return &Error{Kind: KindValidation, Code: "mixed_currency", msg: "cart mixes currencies, checkout needs a single-currency cart"}
}

func InsufficientStock(productName string) error {
	return &Error{Kind: KindConflict, Code: "insufficient_stock", msg: fmt.Sprintf("insufficient stock for %s", productName)}
}

func InvalidTransition(from, to string) error {
	return &Error{Kind: KindConflict, Code: "invalid_transition", msg: fmt.Sprintf("order status cannot move from %s to %s", from, to)}
}

// CartChanged means the cart the caller snapshotted is not the cart anymore:
// a concurrent submission consumed or altered it. The transaction that
// detected this rolled back whole.
func CartChanged() error {
	return &Error{Kind: KindConflict, Code: "cart_changed", msg: "cart changed while the purchase was being committed"}
}

func OrderNotFound(orderID string) error {
	return &Error{Kind: KindNotFound, Code: "order_not_found", msg: fmt.Sprintf("order %s not found", orderID)}
}

func PaymentNotFound(paymentID string) error {
	return &Error{Kind: KindNotFound, Code: "payment_not_found", msg: fmt.Sprintf("no pending payment %s", paymentID)}
}

func ProductNotFound(productID string) error {
	return &Error{Kind: KindNotFound, Code: "product_not_found", msg: fmt.Sprintf("product %s not found", productID)}
}

func CartLineNotFound(productID string) error {
	return &Error{Kind: KindNotFound, Code: "cart_line_not_found", msg: fmt.Sprintf("no cart line for product %s", productID)}
}

func PaymentExpired(paymentID string) error {
	return &Error{Kind: KindExpired, Code: "payment_expired", msg: fmt.Sprintf("payment %s has expired", paymentID)}
}

// CheckoutFailed marks a commit-time failure as retryable: the transaction
// rolled back whole, so the caller may simply run checkout again.
func CheckoutFailed(err error) error {
	return &Error{Kind: KindTransient, Code: "checkout_failed", msg: "checkout did not commit", err: err}
}
