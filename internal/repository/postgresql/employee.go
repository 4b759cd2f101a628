package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, company_id, user_id, full_name, remaining_vacation_days, active, created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.UserID, &e.FullName,
		&e.RemainingVacationDays, &e.Active, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.get(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
}

// GetByIDForUpdate implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return r.get(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1 FOR UPDATE`, id)
}

func (r *employeeRepositoryImpl) get(ctx context.Context, query, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return e, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if newEmployee.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return employee.Employee{}, fmt.Errorf("failed to generate employee id: %w", err)
		}
		newEmployee.ID = id.String()
	}

	query := `
		INSERT INTO employees (id, company_id, user_id, full_name, remaining_vacation_days, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.CompanyID, newEmployee.UserID, newEmployee.FullName,
		newEmployee.RemainingVacationDays, newEmployee.Active,
	).Scan(&newEmployee.CreatedAt, &newEmployee.UpdatedAt)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return newEmployee, nil
}

// DebitVacationDays implements employee.EmployeeRepository. The balance check
// and the decrement are one statement, so concurrent debits cannot overdraw.
func (r *employeeRepositoryImpl) DebitVacationDays(ctx context.Context, id string, days int) (employee.Employee, error) {
	if days < 0 {
		return employee.Employee{}, employee.ErrInvalidDebit
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employees
		SET remaining_vacation_days = remaining_vacation_days - $1, updated_at = NOW()
		WHERE id = $2 AND remaining_vacation_days >= $1
		RETURNING ` + employeeColumns

	e, err := scanEmployee(q.QueryRow(ctx, query, days, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return employee.Employee{}, getErr
			}
			return employee.Employee{}, fmt.Errorf("%w: %d requested", employee.ErrInsufficientBalance, days)
		}
		return employee.Employee{}, fmt.Errorf("failed to debit vacation days for employee %s: %w", id, err)
	}

	return e, nil
}
