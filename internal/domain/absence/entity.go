package absence

import "time"

// Well-known absence type codes.
const (
	CodeVacation  = "vacation"
	CodeSickLeave = "sick_leave"
)

// AbsenceType entity
type AbsenceType struct {
	ID   string
	Code string
	Name string

	// Policy Rules
	RequiresApproval       bool
	AffectsVacationBalance bool
	IsPaid                 bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	return s == RequestStatusPending || s == RequestStatusApproved || s == RequestStatusRejected
}

// DefaultRejectionReason is stored when a reviewer rejects without a reason.
const DefaultRejectionReason = "No reason provided"

// AbsenceRequest entity
type AbsenceRequest struct {
	ID            string
	EmployeeID    string
	AbsenceTypeID string

	StartDate time.Time
	EndDate   time.Time

	// StartTime and EndTime are "HH:MM" and only set when IsPartial.
	IsPartial bool
	StartTime *string
	EndTime   *string
	Notes     *string

	Status          RequestStatus
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r AbsenceRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// Absence is a single day away from work. RequestID is nil for direct
// absences entered without a request.
type Absence struct {
	ID            string
	EmployeeID    string
	AbsenceTypeID string
	RequestID     *string

	Date      time.Time
	IsPartial bool
	StartTime *string
	EndTime   *string
	Notes     *string

	CreatedAt time.Time
}

func (a Absence) IsDirect() bool {
	return a.RequestID == nil
}
