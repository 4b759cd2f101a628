package absence

import (
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/pkg/validator"
)

type CreateAbsenceRequestRequest struct {
	EmployeeID    string  `json:"employee_id"`
	AbsenceTypeID string  `json:"absence_type_id"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	IsPartial     bool    `json:"is_partial"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func (r *CreateAbsenceRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateID("employee_id", r.EmployeeID)...)
	errs = append(errs, validateID("absence_type_id", r.AbsenceTypeID)...)

	errs = append(errs, validateDateRange(r.StartDate, r.EndDate)...)
	errs = append(errs, validatePartialTimes(r.IsPartial, r.StartTime, r.EndTime)...)

	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateAbsenceRequestRequest struct {
	ID        string  `json:"-"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	IsPartial *bool   `json:"is_partial,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (r *UpdateAbsenceRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.StartDate == nil && r.EndDate == nil && r.IsPartial == nil &&
		r.StartTime == nil && r.EndTime == nil && r.Notes == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "body",
			Message: "at least one field must be provided",
		})
	}

	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	// A single moved date is checked against the stored one by the lifecycle
	if r.StartDate != nil && r.EndDate != nil {
		start, startOK := validator.IsValidDate(*r.StartDate)
		end, endOK := validator.IsValidDate(*r.EndDate)
		if startOK && endOK {
			errs = append(errs, validateSpan(start, end)...)
		}
	}

	if r.StartTime != nil && !validator.IsValidTimeOfDay(*r.StartTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time must be in HH:MM format",
		})
	}

	if r.EndTime != nil && !validator.IsValidTimeOfDay(*r.EndTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be in HH:MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectAbsenceRequestRequest struct {
	RequestID  string  `json:"-"`
	ReviewerID string  `json:"-"`
	Reason     *string `json:"reason,omitempty"`
}

func (r *RejectAbsenceRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}

	if validator.IsEmpty(r.ReviewerID) {
		errs = append(errs, validator.ValidationError{
			Field:   "reviewer_id",
			Message: "reviewer_id is required",
		})
	}

	if r.Reason != nil && len(*r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CreateDirectAbsenceRequest struct {
	EmployeeID    string  `json:"employee_id"`
	AbsenceTypeID string  `json:"absence_type_id"`
	Date          string  `json:"date"`
	IsPartial     bool    `json:"is_partial"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func (r *CreateDirectAbsenceRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validateID("employee_id", r.EmployeeID)...)
	errs = append(errs, validateID("absence_type_id", r.AbsenceTypeID)...)

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	errs = append(errs, validatePartialTimes(r.IsPartial, r.StartTime, r.EndTime)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validateID(field, id string) validator.ValidationErrors {
	if validator.IsEmpty(id) {
		return validator.ValidationErrors{{Field: field, Message: field + " is required"}}
	}
	if !validator.IsValidUUID(id) {
		return validator.ValidationErrors{{Field: field, Message: field + " must be a valid UUID"}}
	}
	return nil
}

func validateDateRange(start, end string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	startDate, startOK := validator.IsValidDate(start)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	endDate, endOK := validator.IsValidDate(end)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK {
		errs = append(errs, validateSpan(startDate, endDate)...)
	}

	return errs
}

func validatePartialTimes(isPartial bool, startTime, endTime *string) validator.ValidationErrors {
	if !isPartial {
		return nil
	}

	var errs validator.ValidationErrors

	if startTime == nil || !validator.IsValidTimeOfDay(*startTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_time",
			Message: "start_time is required in HH:MM format when is_partial is true",
		})
	}

	if endTime == nil || !validator.IsValidTimeOfDay(*endTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time is required in HH:MM format when is_partial is true",
		})
	}

	if len(errs) == 0 && !validator.TimeOfDayBefore(*startTime, *endTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_time",
			Message: "end_time must be after start_time",
		})
	}

	return errs
}

type AbsenceRequestFilter struct {
	CompanyID  *string
	EmployeeID *string
	Status     *RequestStatus
	Page       int
	Limit      int
}

type AbsenceFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
	RequestID  *string
}

type AbsenceTypeResponse struct {
	ID                     string `json:"id"`
	Code                   string `json:"code"`
	Name                   string `json:"name"`
	RequiresApproval       bool   `json:"requires_approval"`
	AffectsVacationBalance bool   `json:"affects_vacation_balance"`
	IsPaid                 bool   `json:"is_paid"`
}

func NewAbsenceTypeResponse(t AbsenceType) AbsenceTypeResponse {
	return AbsenceTypeResponse{
		ID:                     t.ID,
		Code:                   t.Code,
		Name:                   t.Name,
		RequiresApproval:       t.RequiresApproval,
		AffectsVacationBalance: t.AffectsVacationBalance,
		IsPaid:                 t.IsPaid,
	}
}

type AbsenceRequestResponse struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	AbsenceTypeID   string     `json:"absence_type_id"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	IsPartial       bool       `json:"is_partial"`
	StartTime       *string    `json:"start_time,omitempty"`
	EndTime         *string    `json:"end_time,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Status          string     `json:"status"`
	ReviewedBy      *string    `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewAbsenceRequestResponse(r AbsenceRequest) AbsenceRequestResponse {
	return AbsenceRequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		AbsenceTypeID:   r.AbsenceTypeID,
		StartDate:       r.StartDate.Format("2006-01-02"),
		EndDate:         r.EndDate.Format("2006-01-02"),
		IsPartial:       r.IsPartial,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Notes:           r.Notes,
		Status:          string(r.Status),
		ReviewedBy:      r.ReviewedBy,
		ReviewedAt:      r.ReviewedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type ListAbsenceRequestResponse struct {
	Requests   []AbsenceRequestResponse `json:"requests"`
	TotalCount int64                    `json:"total_count"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
}

type AbsenceResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	AbsenceTypeID string  `json:"absence_type_id"`
	RequestID     *string `json:"request_id"`
	Date          string  `json:"date"`
	IsPartial     bool    `json:"is_partial"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func NewAbsenceResponse(a Absence) AbsenceResponse {
	return AbsenceResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		AbsenceTypeID: a.AbsenceTypeID,
		RequestID:     a.RequestID,
		Date:          a.Date.Format("2006-01-02"),
		IsPartial:     a.IsPartial,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Notes:         a.Notes,
	}
}

// BalanceResponse summarizes an employee's vacation balance for one year.
type BalanceResponse struct {
	EmployeeID            string `json:"employee_id"`
	Year                  int    `json:"year"`
	RemainingVacationDays int    `json:"remaining_vacation_days"`
	MaxVacationDays       int    `json:"max_vacation_days"`
	VacationType          string `json:"vacation_type"`
	PendingRequests       int    `json:"pending_requests"`
	PendingDays           int    `json:"pending_days"`
	AbsenceDays           int    `json:"absence_days"`
	PartialHours          string `json:"partial_hours"`
}
