package memory

import (
	"context"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
)

type employeeRepository struct {
	store *Store
}

func NewEmployeeRepository(s *Store) employee.EmployeeRepository {
	return &employeeRepository{store: s}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	var (
		e  employee.Employee
		ok bool
	)
	r.store.read(ctx, func() { e, ok = r.store.employees[id] })
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// GetByIDForUpdate is a plain read; transactions are already serialized.
func (r *employeeRepository) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return r.GetByID(ctx, id)
}

func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	err := r.store.write(ctx, func() error {
		if newEmployee.ID == "" {
			id, err := r.store.newID()
			if err != nil {
				return err
			}
			newEmployee.ID = id
		}
		now := r.store.clock.Now()
		newEmployee.CreatedAt = now
		newEmployee.UpdatedAt = now
		r.store.employees[newEmployee.ID] = newEmployee
		return nil
	})
	if err != nil {
		return employee.Employee{}, err
	}
	return newEmployee, nil
}

func (r *employeeRepository) DebitVacationDays(ctx context.Context, id string, days int) (employee.Employee, error) {
	var updated employee.Employee
	err := r.store.write(ctx, func() error {
		e, ok := r.store.employees[id]
		if !ok {
			return employee.ErrEmployeeNotFound
		}
		if err := e.ApplyDebit(days); err != nil {
			return err
		}
		e.UpdatedAt = r.store.clock.Now()
		r.store.employees[id] = e
		updated = e
		return nil
	})
	if err != nil {
		return employee.Employee{}, err
	}
	return updated, nil
}
