package customerrors

import (
	"errors"
	"fmt"
)

// Validation failures are rejected before any external call is made
var (
	ErrEmptyDraft        = errors.New("draft has no lines")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidWeight     = errors.New("weight must be positive")
	ErrInvalidDiscount   = errors.New("discount exceeds order total")
	ErrProductNotFound   = errors.New("product or variant not found")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
)

// ErrIncompleteAddress means the customer profile is missing address, city or
// province; the user has to fix the profile before checkout can proceed
var ErrIncompleteAddress = errors.New("customer address is incomplete")

// ErrShippingUnavailable means the rate API failed or timed out.
// It is never silently turned into a zero shipping cost
var ErrShippingUnavailable = errors.New("shipping rates unavailable")

// ErrTransactionNotFound describes an error when the storage was successfully
// checked but no transaction with given order id was found
var ErrTransactionNotFound = errors.New("transaction not found")

// ErrCustomerNotFound means the checkout referenced a customer that doesn't exist
var ErrCustomerNotFound = errors.New("customer not found")

// ErrDuplicateOrderID means a transaction with the same order id already exists
var ErrDuplicateOrderID = errors.New("order id already used")

// ErrVerificationFailed means a webhook signature didn't match the one
// recomputed from merchant credentials. The notification must be dropped
var ErrVerificationFailed = errors.New("notification signature verification failed")

// ErrStaleTransition means a notification tried to move an already terminal
// transaction to a different terminal status. Applying it would corrupt a
// settled order, so it is logged and rejected
var ErrStaleTransition = errors.New("stale transition for settled transaction")

// GatewayErrorKind is the closed set of payment gateway failure categories.
// Raw provider error bodies are never forwarded to clients
type GatewayErrorKind string

const (
	GatewayInvalidRequest       GatewayErrorKind = "INVALID_REQUEST"
	GatewayAuthenticationFailed GatewayErrorKind = "AUTHENTICATION_FAILED"
	GatewayChannelUnavailable   GatewayErrorKind = "CHANNEL_UNAVAILABLE"
	GatewayRateLimited          GatewayErrorKind = "RATE_LIMITED"
	GatewayUnknown              GatewayErrorKind = "UNKNOWN"
)

// GatewayError wraps a payment gateway failure with its mapped category
type GatewayError struct {
	Kind GatewayErrorKind
	Err  error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment gateway error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("payment gateway error (%s)", e.Kind)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the same request after backoff
func (e *GatewayError) Retryable() bool {
	return e.Kind == GatewayRateLimited
}

// NewGatewayError builds a GatewayError of given kind around cause
func NewGatewayError(kind GatewayErrorKind, cause error) *GatewayError {
	return &GatewayError{Kind: kind, Err: cause}
}

// IsValidation reports whether err belongs to the pre-flight validation family
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyDraft) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidWeight) ||
		errors.Is(err, ErrInvalidDiscount) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInsufficientStock)
}
