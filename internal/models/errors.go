package models

import "errors"

// Business-rule failures. All of these are recoverable by the caller;
// anything else coming out of the store is a persistence failure and
// is surfaced as a plain wrapped error.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrDuplicateID       = errors.New("duplicate product id")
	ErrInactiveProduct   = errors.New("product is inactive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyRedeemed   = errors.New("ticket already redeemed")
	ErrAlreadyRefunded   = errors.New("ticket already refunded")
)
