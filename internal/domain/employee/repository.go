package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByIDForUpdate locks the employee row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	// DebitVacationDays decrements the balance only when it covers days,
	// otherwise it returns ErrInsufficientBalance and changes nothing.
	DebitVacationDays(ctx context.Context, id string, days int) (Employee, error)
}
