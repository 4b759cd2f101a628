package employee

import "time"

type Employee struct {
	ID        string
	CompanyID string
	UserID    *string
	FullName  string

	// RemainingVacationDays is only ever decreased through the ledger.
	RemainingVacationDays int
	Active                bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
