package company

import (
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/pkg/calendar"
)

type Company struct {
	ID   string
	Name string

	// VacationType is fixed once the company is created.
	VacationType    calendar.Policy
	MaxVacationDays int

	CreatedAt time.Time
	UpdatedAt time.Time
}
