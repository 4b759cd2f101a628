package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/access"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/company"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/worklog"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Access errors
	case errors.Is(err, access.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrEmployeeIDRequired), errors.Is(err, user.ErrCompanyIDRequired):
		Forbidden(w, err.Error())

	// Absence business rules
	case errors.Is(err, absence.ErrNoticePeriodViolation):
		BusinessRuleViolation(w, "NOTICE_PERIOD_VIOLATION", err.Error())
	case errors.Is(err, absence.ErrConsecutiveDaysViolation):
		BusinessRuleViolation(w, "CONSECUTIVE_DAYS_VIOLATION", err.Error())
	case errors.Is(err, absence.ErrInsufficientBalance):
		BusinessRuleViolation(w, "INSUFFICIENT_BALANCE", err.Error())
	case errors.Is(err, absence.ErrEmptyAbsenceRange):
		BusinessRuleViolation(w, "EMPTY_ABSENCE_RANGE", err.Error())
	case errors.Is(err, employee.ErrEmployeeInactive):
		BusinessRuleViolation(w, "EMPLOYEE_INACTIVE", err.Error())
	case errors.Is(err, absence.ErrInvalidStateTransition):
		ConflictWithCode(w, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, absence.ErrAbsenceManagedByRequest):
		ConflictWithCode(w, "ABSENCE_MANAGED_BY_REQUEST", err.Error())

	// Work log errors
	case errors.Is(err, worklog.ErrAlreadyClockedIn):
		Conflict(w, err.Error())
	case errors.Is(err, worklog.ErrNotClockedIn):
		Conflict(w, err.Error())
	case errors.Is(err, worklog.ErrOnFullDayAbsence):
		BusinessRuleViolation(w, "ON_FULL_DAY_ABSENCE", err.Error())
	case errors.Is(err, worklog.ErrInvalidDateFilter):
		BadRequest(w, err.Error(), nil)

	// Not found
	case errors.Is(err, absence.ErrAbsenceRequestNotFound):
		NotFound(w, "Absence request not found")
	case errors.Is(err, absence.ErrAbsenceTypeNotFound):
		NotFound(w, "Absence type not found")
	case errors.Is(err, absence.ErrAbsenceNotFound):
		NotFound(w, "Absence not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, worklog.ErrWorkLogNotFound):
		NotFound(w, "Work log not found")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
