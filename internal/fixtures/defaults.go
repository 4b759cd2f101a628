package fixtures

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/company"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/calendar"
)

// ==========================================
// SEEDED DATA RESULT
// ==========================================

// SeededDataIDs holds IDs of all seeded data
type SeededDataIDs struct {
	// Absence type IDs by code
	AbsenceTypeIDs map[string]string // e.g., "vacation" -> "uuid"

	// Company IDs by vacation policy
	CompanyIDs map[calendar.Policy]string

	// Employee IDs by full name
	EmployeeIDs map[string]string
}

// NewSeededDataIDs creates a new SeededDataIDs with initialized maps
func NewSeededDataIDs() *SeededDataIDs {
	return &SeededDataIDs{
		AbsenceTypeIDs: make(map[string]string),
		CompanyIDs:     make(map[calendar.Policy]string),
		EmployeeIDs:    make(map[string]string),
	}
}

// ==========================================
// DEFAULT ABSENCE TYPES
// ==========================================

// GetDefaultAbsenceTypes returns the absence types every installation needs
func GetDefaultAbsenceTypes() []absence.AbsenceType {
	return []absence.AbsenceType{
		// Vacation - reviewed, paid from the vacation balance
		{
			Code:                   absence.CodeVacation,
			Name:                   "Vacation",
			RequiresApproval:       true,
			AffectsVacationBalance: true,
			IsPaid:                 true,
		},

		// Sick leave - recorded immediately
		{
			Code:                   absence.CodeSickLeave,
			Name:                   "Sick Leave",
			RequiresApproval:       false,
			AffectsVacationBalance: false,
			IsPaid:                 true,
		},

		// Unpaid leave - reviewed, no balance effect
		{
			Code:                   "unpaid_leave",
			Name:                   "Unpaid Leave",
			RequiresApproval:       true,
			AffectsVacationBalance: false,
			IsPaid:                 false,
		},

		// Doctor appointment - usually a partial day
		{
			Code:                   "doctor_appointment",
			Name:                   "Doctor Appointment",
			RequiresApproval:       false,
			AffectsVacationBalance: false,
			IsPaid:                 true,
		},
	}
}

// SeedAbsenceTypes creates the default absence types that do not exist yet.
// Types are matched by code, so running it twice is harmless.
func SeedAbsenceTypes(ctx context.Context, repo absence.AbsenceTypeRepository, ids *SeededDataIDs) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list absence types: %w", err)
	}
	for _, t := range existing {
		ids.AbsenceTypeIDs[t.Code] = t.ID
	}

	for _, t := range GetDefaultAbsenceTypes() {
		if _, ok := ids.AbsenceTypeIDs[t.Code]; ok {
			continue
		}
		created, err := repo.Create(ctx, t)
		if err != nil {
			return fmt.Errorf("failed to seed absence type %s: %w", t.Code, err)
		}
		ids.AbsenceTypeIDs[created.Code] = created.ID
	}
	return nil
}

// ==========================================
// DEMO DATA
// ==========================================

type demoEmployee struct {
	name   string
	policy calendar.Policy
	days   int
}

var demoEmployees = []demoEmployee{
	{name: "Ada Owner", policy: calendar.BusinessDays, days: 25},
	{name: "Ben Manager", policy: calendar.BusinessDays, days: 25},
	{name: "Cleo Employee", policy: calendar.BusinessDays, days: 10},
	{name: "Dara Employee", policy: calendar.CalendarDays, days: 30},
}

// SeedDemo creates two companies, one per vacation policy, with a handful of
// employees. Meant for the memory store only.
func SeedDemo(ctx context.Context, companyRepo company.CompanyRepository, employeeRepo employee.EmployeeRepository, typeRepo absence.AbsenceTypeRepository) (*SeededDataIDs, error) {
	ids := NewSeededDataIDs()

	if err := SeedAbsenceTypes(ctx, typeRepo, ids); err != nil {
		return nil, err
	}

	companies := []company.Company{
		{Name: "Acme Business Days", VacationType: calendar.BusinessDays, MaxVacationDays: 25},
		{Name: "Globex Calendar Days", VacationType: calendar.CalendarDays, MaxVacationDays: 30},
	}
	for _, c := range companies {
		created, err := companyRepo.Create(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to seed company %s: %w", c.Name, err)
		}
		ids.CompanyIDs[created.VacationType] = created.ID
	}

	for _, e := range demoEmployees {
		created, err := employeeRepo.Create(ctx, employee.Employee{
			CompanyID:             ids.CompanyIDs[e.policy],
			FullName:              e.name,
			RemainingVacationDays: e.days,
			Active:                true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed employee %s: %w", e.name, err)
		}
		ids.EmployeeIDs[created.FullName] = created.ID
	}

	return ids, nil
}
