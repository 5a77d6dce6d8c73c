package card

import "errors"

var (
	// ErrNotFound indicates the referenced card does not exist.
	ErrNotFound = errors.New("card not found")

	// ErrInvalidTransfer covers transfers that are malformed before any
	// balance is consulted: same source and destination, or a non-positive
	// amount.
	ErrInvalidTransfer = errors.New("invalid transfer")

	// ErrPermissionDenied indicates the caller does not own the card.
	ErrPermissionDenied = errors.New("card does not belong to caller")

	// ErrInactiveCard indicates a transfer touched a card that is not active.
	ErrInactiveCard = errors.New("card is not active")

	// ErrInsufficientFunds indicates the source card cannot cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidUpdate indicates an administrative update violating the
	// extension-only expiration or non-decreasing balance rules.
	ErrInvalidUpdate = errors.New("invalid card update")

	// ErrNumberExhausted indicates the issuance loop could not allocate a
	// unique card number within its retry ceiling. That points at a broken
	// generator or a saturated number space, not at bad caller input.
	ErrNumberExhausted = errors.New("could not allocate a unique card number")
)
