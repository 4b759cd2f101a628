package absence

import (
	"errors"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
)

var (
	ErrAbsenceRequestNotFound = errors.New("absence request not found")
	ErrAbsenceTypeNotFound    = errors.New("absence type not found")
	ErrAbsenceNotFound        = errors.New("absence not found")

	ErrNoticePeriodViolation    = errors.New("vacation longer than one day must start at least 24 hours from now")
	ErrConsecutiveDaysViolation = errors.New("vacation under a calendar-day policy must cover at least 7 consecutive days")
	ErrInsufficientBalance      = employee.ErrInsufficientBalance
	ErrEmptyAbsenceRange        = errors.New("date range contains no days counted by the company calendar policy")

	ErrInvalidStateTransition  = errors.New("absence request is no longer pending")
	ErrAbsenceManagedByRequest = errors.New("absence belongs to a request and cannot be changed on its own")
	ErrRequestIDUnassigned     = errors.New("absence request has no id")
)
