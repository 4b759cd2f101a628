package access

import (
	"context"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/access"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
)

// RoleChecker grants capabilities from the actor's role and limits them to
// employees of the actor's own company.
type RoleChecker struct {
	employee.EmployeeRepository
}

func NewRoleChecker(employeeRepo employee.EmployeeRepository) access.Checker {
	return &RoleChecker{EmployeeRepository: employeeRepo}
}

// CanCreateFor implements access.Checker.
func (c *RoleChecker) CanCreateFor(ctx context.Context, actor access.Actor, employeeID string) (bool, error) {
	if actor.EmployeeID == employeeID {
		return user.HasPermission(actor.Role, user.PermissionAbsenceCreate), nil
	}
	if !user.HasPermission(actor.Role, user.PermissionAbsenceDirect) {
		return false, nil
	}
	return c.sameCompany(ctx, actor, employeeID)
}

// CanReview implements access.Checker. Only owners review their own requests.
func (c *RoleChecker) CanReview(ctx context.Context, actor access.Actor, employeeID string) (bool, error) {
	if !user.HasPermission(actor.Role, user.PermissionAbsenceReview) {
		return false, nil
	}
	if actor.EmployeeID == employeeID && actor.Role != user.RoleOwner {
		return false, nil
	}
	return c.sameCompany(ctx, actor, employeeID)
}

// CanView implements access.Checker.
func (c *RoleChecker) CanView(ctx context.Context, actor access.Actor, employeeID string) (bool, error) {
	if actor.EmployeeID == employeeID {
		return user.HasPermission(actor.Role, user.PermissionAbsenceViewOwn), nil
	}
	if !user.HasPermission(actor.Role, user.PermissionAbsenceViewAll) {
		return false, nil
	}
	return c.sameCompany(ctx, actor, employeeID)
}

// CanManageDirect implements access.Checker.
func (c *RoleChecker) CanManageDirect(ctx context.Context, actor access.Actor, employeeID string) (bool, error) {
	if !user.HasPermission(actor.Role, user.PermissionAbsenceDirect) {
		return false, nil
	}
	return c.sameCompany(ctx, actor, employeeID)
}

func (c *RoleChecker) sameCompany(ctx context.Context, actor access.Actor, employeeID string) (bool, error) {
	emp, err := c.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return false, err
	}
	return emp.CompanyID == actor.CompanyID, nil
}
