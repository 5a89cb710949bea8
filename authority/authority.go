package authority

import "archon/bizerror"

const (
	RoleCeo        = "ceo"
	RoleFinance    = "finance"
	RoleOperations = "operations"
	RoleWorker     = "worker"
)

var AllRoles = []string{RoleCeo, RoleFinance, RoleOperations, RoleWorker}

// AssignableRoles are the roles the ceo may hand out. The ceo role itself
// is seeded at bootstrap and never assigned through the API.
var AssignableRoles = []string{RoleFinance, RoleOperations, RoleWorker}

type Action string

const (
	ActionCreateContract      = Action("contract.create")
	ActionAllocateFinance     = Action("contract.allocate-finance")
	ActionConfigureOperations = Action("contract.configure-operations")
	ActionAssignStaff         = Action("contract.assign-staff")

	ActionAssignRole       = Action("user.assign-role")
	ActionToggleUserStatus = Action("user.toggle-status")
	ActionCreateUser       = Action("user.create")

	ActionManageTask = Action("task.manage")

	ActionViewTeamPerformance = Action("dashboard.team-performance")

	ActionRebuildIndex = Action("indices.rebuild")
)

// permissions is the static workflow authorization table: which roles may
// perform which action. Ownership scoping of worker tasks is a caller
// concern (query filters), not part of this table.
var permissions = map[Action][]string{
	ActionCreateContract:      {RoleCeo, RoleFinance},
	ActionAllocateFinance:     {RoleCeo, RoleFinance},
	ActionConfigureOperations: {RoleCeo, RoleOperations},
	ActionAssignStaff:         {RoleCeo, RoleOperations},

	ActionAssignRole:       {RoleCeo},
	ActionToggleUserStatus: {RoleCeo},
	ActionCreateUser:       {RoleCeo, RoleOperations},

	ActionManageTask: {RoleCeo, RoleFinance, RoleOperations, RoleWorker},

	ActionViewTeamPerformance: {RoleCeo, RoleOperations},

	ActionRebuildIndex: {RoleCeo},
}

func CanRole(role string, action Action) bool {
	for _, r := range permissions[action] {
		if r == role {
			return true
		}
	}
	return false
}

// CheckRole returns ErrForbidden when the role may not perform the action.
// A denied action must have no side effect, so call this before any write.
func CheckRole(role string, action Action) error {
	if !CanRole(role, action) {
		return bizerror.ErrForbidden
	}
	return nil
}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsAssignableRole(role string) bool {
	for _, r := range AssignableRoles {
		if r == role {
			return true
		}
	}
	return false
}
