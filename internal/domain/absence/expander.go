package absence

import "github.com/cmlabs-hris/absence-ledger/internal/pkg/calendar"

// Expand materializes one Absence per day the policy counts in the request's
// range. Times are only carried over for partial requests.
func Expand(req AbsenceRequest, policy calendar.Policy) []Absence {
	requestID := req.ID

	var absences []Absence
	for day := range calendar.ExpandDays(req.StartDate, req.EndDate, policy) {
		a := Absence{
			EmployeeID:    req.EmployeeID,
			AbsenceTypeID: req.AbsenceTypeID,
			RequestID:     &requestID,
			Date:          day,
			IsPartial:     req.IsPartial,
			Notes:         req.Notes,
		}
		if req.IsPartial {
			a.StartTime = req.StartTime
			a.EndTime = req.EndTime
		}
		absences = append(absences, a)
	}
	return absences
}
