package service

import "errors"

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotFound          = errors.New("not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrSessionBusy       = errors.New("session is busy")
)
