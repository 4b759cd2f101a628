package employee

import "fmt"

// Debit is a pending decrement of an employee's vacation balance.
type Debit struct {
	EmployeeID string
	Days       int
}

// CanDebit reports whether the balance covers days.
func (e Employee) CanDebit(days int) bool {
	return days >= 0 && e.RemainingVacationDays >= days
}

// ApplyDebit decrements the balance by days. On failure the employee is left
// untouched. There is no matching credit operation.
func (e *Employee) ApplyDebit(days int) error {
	if days < 0 {
		return ErrInvalidDebit
	}
	if !e.CanDebit(days) {
		return fmt.Errorf("%w: %d requested, %d remaining", ErrInsufficientBalance, days, e.RemainingVacationDays)
	}
	e.RemainingVacationDays -= days
	return nil
}
