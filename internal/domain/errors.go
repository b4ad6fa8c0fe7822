package domain

import (
	"fmt"
	"strings"
)

// Machine-readable error codes surfaced to callers.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeOutOfStock       = "OUT_OF_STOCK"
	CodeInvalidState     = "INVALID_STATE"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodeConflict         = "CONFLICT"
)

// StockShortfall describes one product that could not cover a reservation.
type StockShortfall struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// Error is a coded domain error. Shortfalls is populated only for
// OUT_OF_STOCK; Missing only for NOT_FOUND raised over unknown product ids.
type Error struct {
	Code       string           `json:"code"`
	Message    string           `json:"message"`
	Shortfalls []StockShortfall `json:"shortfalls,omitempty"`
	Missing    []string         `json:"missing,omitempty"`
}

func (e *Error) Error() string { return e.Message }

func NotFound(what string) *Error {
	return &Error{Code: CodeNotFound, Message: what + " not found"}
}

func ProductsNotFound(ids []string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: "products not found: " + strings.Join(ids, ", "),
		Missing: ids,
	}
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

func InvalidState(msg string) *Error {
	return &Error{Code: CodeInvalidState, Message: msg}
}

func AlreadyCancelled(orderNumber string) *Error {
	return &Error{Code: CodeInvalidState, Message: "order " + orderNumber + " is already cancelled"}
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func CapacityExceeded(msg string) *Error {
	return &Error{Code: CodeCapacityExceeded, Message: msg}
}

func OutOfStock(shortfalls []StockShortfall) *Error {
	parts := make([]string, 0, len(shortfalls))
	for _, s := range shortfalls {
		parts = append(parts, fmt.Sprintf("%s (requested %d, available %d)", s.Title, s.Requested, s.Available))
	}
	return &Error{
		Code:       CodeOutOfStock,
		Message:    "insufficient stock: " + strings.Join(parts, "; "),
		Shortfalls: shortfalls,
	}
}
