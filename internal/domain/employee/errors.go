package employee

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrEmployeeInactive    = errors.New("employee is not active")
	ErrInsufficientBalance = errors.New("insufficient vacation balance")
	ErrInvalidDebit        = errors.New("debit must not be negative")
)
