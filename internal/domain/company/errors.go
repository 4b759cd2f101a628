package company

import "errors"

var (
	ErrCompanyNotFound     = errors.New("company not found")
	ErrInvalidCompanyName  = errors.New("company name cannot be empty")
	ErrInvalidVacationType = errors.New("vacation type must be business_days or calendar_days")
)
