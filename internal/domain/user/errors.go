package user

import "errors"

var (
	ErrEmployeeIDRequired = errors.New("employee ID is required")
	ErrCompanyIDRequired  = errors.New("company ID is required")
)
