// Package permissions models the community role hierarchy as a plain
// enumeration with a single pure comparison, independent of any transport.
package permissions

// Role is a community role name as stored on the user record.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMod    Role = "MOD"
	RoleVIP    Role = "VIP"
	RoleMember Role = "MEMBER"
)

// Higher number = higher privilege. Unknown roles rank below MEMBER.
var roleLevels = map[Role]int{
	RoleOwner:  100,
	RoleAdmin:  80,
	RoleMod:    60,
	RoleVIP:    40,
	RoleMember: 20,
}

// Level returns the numeric privilege of a role, 0 for unknown roles.
func Level(r Role) int {
	return roleLevels[r]
}

// HasAtLeast reports whether role carries at least the privilege of required.
func HasAtLeast(role, required Role) bool {
	return Level(role) >= Level(required)
}
