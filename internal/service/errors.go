package service

import "errors"

var (
	// ErrNotFound covers both rows that do not exist and rows that belong
	// to another dealership.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks bad input from the caller.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden marks an operation the caller's role does not allow.
	ErrForbidden = errors.New("forbidden")

	// ErrExpired marks an approval link past its expiry window.
	ErrExpired = errors.New("approval link expired")

	// ErrAlreadyProcessed marks an approval link whose decision was already
	// recorded.
	ErrAlreadyProcessed = errors.New("approval already processed")

	// ErrConflict marks a state conflict, such as an illegal lifecycle
	// transition or a duplicate email.
	ErrConflict = errors.New("conflict")

	// ErrUpstream marks a failure in an external dependency such as the
	// SMS or email provider.
	ErrUpstream = errors.New("upstream failure")
)
