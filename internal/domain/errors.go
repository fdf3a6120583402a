package domain

import "errors"

var (
	// ErrSubscriptionFailed is returned when subscription to events fails
	ErrSubscriptionFailed = errors.New("subscription failed")

	// ErrVaultNotFound is returned when a vault row does not exist
	ErrVaultNotFound = errors.New("vault not found")

	// ErrBalanceNotFound is returned when debiting a holder that has no balance row
	ErrBalanceNotFound = errors.New("balance not found")

	// ErrNegativeBalance is returned when a balance or the total supply would go below zero
	ErrNegativeBalance = errors.New("balance would become negative")

	// ErrConversionFailed is returned when the share to asset conversion cannot be obtained
	ErrConversionFailed = errors.New("share to asset conversion failed")

	// ErrEventAlreadyApplied is returned when a log has already been reconciled
	ErrEventAlreadyApplied = errors.New("event already applied")

	// ErrUnsupportedEvent is returned when no reconciler handles an event
	ErrUnsupportedEvent = errors.New("unsupported event")

	// ErrInvalidEvent is returned when an event is malformed
	ErrInvalidEvent = errors.New("invalid event")
)
