package access

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/access"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-ledger/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type people struct {
	checker  access.Checker
	owner    access.Actor
	manager  access.Actor
	staff    access.Actor
	stranger access.Actor
}

func setup(t *testing.T) people {
	t.Helper()
	ctx := context.Background()
	employees := memory.NewEmployeeRepository(memory.NewStore(clock.System()))

	hire := func(companyID string) employee.Employee {
		e, err := employees.Create(ctx, employee.Employee{CompanyID: companyID, Active: true})
		require.NoError(t, err)
		return e
	}
	owner, manager, staff, stranger := hire("acme"), hire("acme"), hire("acme"), hire("globex")

	return people{
		checker:  NewRoleChecker(employees),
		owner:    access.Actor{EmployeeID: owner.ID, CompanyID: "acme", Role: user.RoleOwner},
		manager:  access.Actor{EmployeeID: manager.ID, CompanyID: "acme", Role: user.RoleManager},
		staff:    access.Actor{EmployeeID: staff.ID, CompanyID: "acme", Role: user.RoleEmployee},
		stranger: access.Actor{EmployeeID: stranger.ID, CompanyID: "globex", Role: user.RoleManager},
	}
}

func TestCanCreateFor(t *testing.T) {
	p := setup(t)
	ctx := context.Background()

	ok, err := p.checker.CanCreateFor(ctx, p.staff, p.staff.EmployeeID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.checker.CanCreateFor(ctx, p.staff, p.manager.EmployeeID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.checker.CanCreateFor(ctx, p.manager, p.staff.EmployeeID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.checker.CanCreateFor(ctx, p.stranger, p.staff.EmployeeID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanReview(t *testing.T) {
	p := setup(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		actor    access.Actor
		employee string
		want     bool
	}{
		{"manager reviews staff", p.manager, p.staff.EmployeeID, true},
		{"manager cannot review self", p.manager, p.manager.EmployeeID, false},
		{"owner reviews self", p.owner, p.owner.EmployeeID, true},
		{"staff cannot review", p.staff, p.manager.EmployeeID, false},
		{"other company manager", p.stranger, p.staff.EmployeeID, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ok, err := p.checker.CanReview(ctx, c.actor, c.employee)
			require.NoError(t, err)
			assert.Equal(t, c.want, ok)
		})
	}
}

func TestCanView(t *testing.T) {
	p := setup(t)
	ctx := context.Background()

	ok, err := p.checker.CanView(ctx, p.staff, p.staff.EmployeeID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.checker.CanView(ctx, p.staff, p.owner.EmployeeID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.checker.CanView(ctx, p.owner, p.staff.EmployeeID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = p.checker.CanView(ctx, p.owner, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestCanManageDirect(t *testing.T) {
	p := setup(t)
	ctx := context.Background()

	ok, err := p.checker.CanManageDirect(ctx, p.manager, p.staff.EmployeeID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.checker.CanManageDirect(ctx, p.staff, p.staff.EmployeeID)
	require.NoError(t, err)
	assert.False(t, ok)
}
