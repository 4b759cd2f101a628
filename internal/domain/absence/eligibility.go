package absence

import (
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/company"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/calendar"
)

const (
	MinimumNotice               = 24 * time.Hour
	MinimumCalendarVacationDays = 7
)

// Candidate is a request together with the records the business rules read.
// The request may or may not be persisted yet.
type Candidate struct {
	Request  AbsenceRequest
	Employee employee.Employee
	Company  company.Company
	Type     AbsenceType
}

func (c Candidate) DayCount() int {
	return calendar.DayCount(c.Request.StartDate, c.Request.EndDate, c.Company.VacationType)
}

func (c Candidate) isVacation() bool {
	return c.Type.Code == CodeVacation
}

// NeedsMinimumNotice reports whether the request must start at least
// MinimumNotice after it is made.
func NeedsMinimumNotice(c Candidate) bool {
	return c.isVacation() && c.DayCount() > 1
}

func MeetsMinimumNotice(c Candidate, now time.Time) bool {
	if !NeedsMinimumNotice(c) {
		return true
	}
	return !c.Request.StartDate.Before(now.Add(MinimumNotice))
}

func MeetsConsecutiveDaysRequirement(c Candidate) bool {
	if c.Company.VacationType != calendar.CalendarDays || !c.isVacation() {
		return true
	}
	return c.DayCount() >= MinimumCalendarVacationDays
}

func HasEnoughVacationDays(c Candidate) bool {
	if !c.Type.AffectsVacationBalance {
		return true
	}
	return c.DayCount() <= c.Employee.RemainingVacationDays
}

// CheckEligibility evaluates notice, consecutive days and balance in that
// order and returns the first rule that fails.
func CheckEligibility(c Candidate, now time.Time) error {
	if !MeetsMinimumNotice(c, now) {
		return ErrNoticePeriodViolation
	}
	if !MeetsConsecutiveDaysRequirement(c) {
		return ErrConsecutiveDaysViolation
	}
	if !HasEnoughVacationDays(c) {
		return ErrInsufficientBalance
	}
	return nil
}
