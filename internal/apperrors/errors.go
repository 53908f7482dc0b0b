package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting user is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrCurrencyMismatch indicates an arithmetic operation across two different currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrInsufficientBalance indicates an FX consumption request beyond the available lot balance.
var ErrInsufficientBalance = errors.New("insufficient foreign currency balance")

// ErrInvalidTransition indicates a voucher action attempted from a status that does not permit it.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConcurrencyConflict indicates an optimistic-concurrency violation that persisted
// after the bounded retry loop was exhausted.
var ErrConcurrencyConflict = errors.New("concurrent modification conflict")

// ErrConflict indicates a single optimistic-concurrency miss (stale version).
// Repositories return it so callers can decide whether to retry.
var ErrConflict = errors.New("version conflict")
