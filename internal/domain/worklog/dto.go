package worklog

import (
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/pkg/validator"
)

type ClockInRequest struct {
	EmployeeID string  `json:"-"`
	Notes      *string `json:"notes,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Notes != nil && len(*r.Notes) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type WorkLogFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
}

func (f WorkLogFilter) Validate() error {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return ErrInvalidDateFilter
	}
	return nil
}

type WorkLogResponse struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employee_id"`
	Date        string     `json:"date"`
	ClockIn     time.Time  `json:"clock_in"`
	ClockOut    *time.Time `json:"clock_out,omitempty"`
	WorkedHours string     `json:"worked_hours"`
	Notes       *string    `json:"notes,omitempty"`
}

func NewWorkLogResponse(w WorkLog) WorkLogResponse {
	return WorkLogResponse{
		ID:          w.ID,
		EmployeeID:  w.EmployeeID,
		Date:        w.Date.Format("2006-01-02"),
		ClockIn:     w.ClockIn,
		ClockOut:    w.ClockOut,
		WorkedHours: w.WorkedHours().StringFixed(2),
		Notes:       w.Notes,
	}
}
