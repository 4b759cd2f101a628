package user

type Permission string

const (
	// Absence Management
	PermissionAbsenceViewOwn Permission = "absence.view_own"
	PermissionAbsenceCreate  Permission = "absence.create"
	PermissionAbsenceViewAll Permission = "absence.view_all"
	PermissionAbsenceReview  Permission = "absence.review"
	PermissionAbsenceDirect  Permission = "absence.manage_direct"

	// Work Logs
	PermissionWorkLogOwn     Permission = "worklog.own"
	PermissionWorkLogViewAll Permission = "worklog.view_all"

	// Balances
	PermissionBalanceViewAll Permission = "balance.view_all"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionAbsenceViewOwn,
		PermissionAbsenceCreate,
		PermissionAbsenceViewAll,
		PermissionAbsenceReview,
		PermissionAbsenceDirect,
		PermissionWorkLogOwn,
		PermissionWorkLogViewAll,
		PermissionBalanceViewAll,
	},
	RoleManager: {
		// Manager can review and view team data
		PermissionAbsenceViewOwn,
		PermissionAbsenceCreate,
		PermissionAbsenceViewAll,
		PermissionAbsenceReview,
		PermissionAbsenceDirect,
		PermissionWorkLogOwn,
		PermissionWorkLogViewAll,
		PermissionBalanceViewAll,
	},
	RoleEmployee: {
		// Employee has basic access
		PermissionAbsenceViewOwn,
		PermissionAbsenceCreate,
		PermissionWorkLogOwn,
	},
	RolePending: {
		// Pending role has no permissions
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
