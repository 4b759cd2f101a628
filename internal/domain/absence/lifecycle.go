package absence

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/validator"
)

// MaxRequestSpanDays bounds how far end_date may lie after start_date.
const MaxRequestSpanDays = 366

// Effects lists every write a lifecycle step needs. A storage adapter applies
// all of them in one transaction or none of them.
type Effects struct {
	Request  AbsenceRequest
	Absences []Absence
	Debit    *employee.Debit
}

// Lifecycle plans transitions of an absence request. It never touches storage.
type Lifecycle struct {
	// RejectEmptyRange refuses requests whose range has no counted days
	// instead of accepting them with zero absences.
	RejectEmptyRange bool
}

// Changes holds the editable fields of a pending request. Nil means unchanged.
type Changes struct {
	StartDate *time.Time
	EndDate   *time.Time
	IsPartial *bool
	StartTime *string
	EndTime   *string
	Notes     *string
}

func (c Changes) touchesDates() bool {
	return c.StartDate != nil || c.EndDate != nil
}

// ValidateRequest checks the shape invariants every stored request holds.
func ValidateRequest(r AbsenceRequest) error {
	var errs validator.ValidationErrors

	errs = append(errs, validateSpan(r.StartDate, r.EndDate)...)

	if r.IsPartial {
		if r.StartTime == nil || !validator.IsValidTimeOfDay(*r.StartTime) {
			errs = append(errs, validator.ValidationError{
				Field:   "start_time",
				Message: "start_time is required in HH:MM format for a partial absence",
			})
		}
		if r.EndTime == nil || !validator.IsValidTimeOfDay(*r.EndTime) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_time",
				Message: "end_time is required in HH:MM format for a partial absence",
			})
		}
		if len(errs) == 0 && !validator.TimeOfDayBefore(*r.StartTime, *r.EndTime) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_time",
				Message: "end_time must be after start_time",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateSpan(start, end time.Time) validator.ValidationErrors {
	if end.Before(start) {
		return validator.ValidationErrors{{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		}}
	}
	if calendar.DaysBetween(start, end) > MaxRequestSpanDays {
		return validator.ValidationErrors{{
			Field:   "end_date",
			Message: "end_date must be at most 366 days after start_date",
		}}
	}
	return nil
}

// Create plans the creation of c.Request. Types that need no approval are
// approved on the spot and carry the approval effects along.
func (l Lifecycle) Create(c Candidate, now time.Time) (Effects, error) {
	if c.Request.ID == "" {
		return Effects{}, ErrRequestIDUnassigned
	}

	req := normalize(c.Request)
	req.Status = RequestStatusPending
	req.ReviewedBy = nil
	req.ReviewedAt = nil
	req.RejectionReason = nil
	c.Request = req

	if err := l.admit(c, now); err != nil {
		return Effects{}, err
	}

	if c.Type.RequiresApproval {
		return Effects{Request: req}, nil
	}

	return approve(c, nil, now)
}

// Approve plans the pending → approved transition.
func (l Lifecycle) Approve(c Candidate, reviewerID string, now time.Time) (Effects, error) {
	if !c.Request.IsPending() {
		return Effects{}, ErrInvalidStateTransition
	}
	return approve(c, &reviewerID, now)
}

func approve(c Candidate, reviewerID *string, now time.Time) (Effects, error) {
	req := c.Request
	reviewedAt := now
	req.Status = RequestStatusApproved
	req.ReviewedBy = reviewerID
	req.ReviewedAt = &reviewedAt

	effects := Effects{
		Request:  req,
		Absences: Expand(req, c.Company.VacationType),
	}

	if c.Type.AffectsVacationBalance {
		days := c.DayCount()
		if !c.Employee.CanDebit(days) {
			return Effects{}, ErrInsufficientBalance
		}
		effects.Debit = &employee.Debit{EmployeeID: req.EmployeeID, Days: days}
	}

	return effects, nil
}

// Reject plans the pending → rejected transition. A missing reason is
// replaced by DefaultRejectionReason.
func (l Lifecycle) Reject(req AbsenceRequest, reviewerID string, reason *string, now time.Time) (AbsenceRequest, error) {
	if !req.IsPending() {
		return AbsenceRequest{}, ErrInvalidStateTransition
	}

	text := DefaultRejectionReason
	if reason != nil && strings.TrimSpace(*reason) != "" {
		text = strings.TrimSpace(*reason)
	}

	reviewedAt := now
	req.Status = RequestStatusRejected
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &reviewedAt
	req.RejectionReason = &text
	return req, nil
}

// Update applies changes to a pending request. Moving the dates runs the
// eligibility rules again against the new range.
func (l Lifecycle) Update(c Candidate, changes Changes, now time.Time) (AbsenceRequest, error) {
	if !c.Request.IsPending() {
		return AbsenceRequest{}, ErrInvalidStateTransition
	}

	req := c.Request
	if changes.StartDate != nil {
		req.StartDate = *changes.StartDate
	}
	if changes.EndDate != nil {
		req.EndDate = *changes.EndDate
	}
	if changes.IsPartial != nil {
		req.IsPartial = *changes.IsPartial
	}
	if changes.StartTime != nil {
		req.StartTime = changes.StartTime
	}
	if changes.EndTime != nil {
		req.EndTime = changes.EndTime
	}
	if changes.Notes != nil {
		req.Notes = changes.Notes
	}
	req = normalize(req)
	c.Request = req

	if err := ValidateRequest(req); err != nil {
		return AbsenceRequest{}, err
	}

	if changes.touchesDates() {
		if err := l.checkRange(c, now); err != nil {
			return AbsenceRequest{}, err
		}
	}

	return req, nil
}

// CheckDeletable allows deleting pending requests only.
func CheckDeletable(req AbsenceRequest) error {
	if !req.IsPending() {
		return ErrInvalidStateTransition
	}
	return nil
}

func (l Lifecycle) admit(c Candidate, now time.Time) error {
	if err := ValidateRequest(c.Request); err != nil {
		return err
	}
	if !c.Employee.Active {
		return employee.ErrEmployeeInactive
	}
	return l.checkRange(c, now)
}

func (l Lifecycle) checkRange(c Candidate, now time.Time) error {
	if l.RejectEmptyRange && c.DayCount() == 0 {
		return ErrEmptyAbsenceRange
	}
	return CheckEligibility(c, now)
}

// normalize drops times on full-day requests.
func normalize(r AbsenceRequest) AbsenceRequest {
	if !r.IsPartial {
		r.StartTime = nil
		r.EndTime = nil
	}
	return r
}
