package access

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
)

var ErrForbidden = errors.New("you are not allowed to perform this action")

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       user.Role
}

// Checker answers capability questions about an actor and a target employee.
// The lifecycle itself never decides who may act; callers ask a Checker first.
type Checker interface {
	CanCreateFor(ctx context.Context, actor Actor, employeeID string) (bool, error)
	CanReview(ctx context.Context, actor Actor, employeeID string) (bool, error)
	CanView(ctx context.Context, actor Actor, employeeID string) (bool, error)
	CanManageDirect(ctx context.Context, actor Actor, employeeID string) (bool, error)
}
