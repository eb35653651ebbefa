package auth

// UserRole is the user's role
type UserRole string

const (
	// RoleAdmin administers the whole platform
	RoleAdmin UserRole = "admin"
	// RoleCoach manages squads and sessions
	RoleCoach UserRole = "coach"
	// RolePlayer is a registered player
	RolePlayer UserRole = "player"
	// RoleScout evaluates players
	RoleScout UserRole = "scout"
	// RoleParent is a guardian linked to one or more players
	RoleParent UserRole = "parent"
)

// IdentityKind discriminates the two principal types sharing the auth flows.
type IdentityKind = string

const (
	// KindUser is an individual account with a role
	KindUser IdentityKind = "user"
	// KindAcademy is an organization account, no role
	KindAcademy IdentityKind = "academy"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RolePlayer, RoleScout, RoleParent:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleAdmin,
		RoleCoach,
		RolePlayer,
		RoleScout,
		RoleParent,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// ParseKind safely parses a string into an IdentityKind, defaulting to user.
func ParseKind(kindStr string) (IdentityKind, bool) {
	switch kindStr {
	case "", KindUser:
		return KindUser, true
	case KindAcademy:
		return KindAcademy, true
	default:
		return "", false
	}
}

// roleRank orders roles for minimum-role checks. Players and parents share
// the lowest rank; staff roles outrank them.
var roleRank = map[UserRole]int{
	RolePlayer: 1,
	RoleParent: 1,
	RoleScout:  2,
	RoleCoach:  3,
	RoleAdmin:  4,
}

// RoleAtLeast reports whether role ranks at or above min. Unknown roles
// never pass.
func RoleAtLeast(role, min UserRole) bool {
	r, ok := roleRank[role]
	if !ok {
		return false
	}
	m, ok := roleRank[min]
	if !ok {
		return false
	}
	return r >= m
}

// RoleSatisfies reports whether role grants access to a resource restricted
// to the allowed set. An empty set means any authenticated identity passes.
// Admins satisfy every set unless adminOverride is disabled for the route.
func RoleSatisfies(role UserRole, allowed []UserRole, adminOverride bool) bool {
	if len(allowed) == 0 {
		return true
	}

	if adminOverride && role == RoleAdmin {
		return true
	}

	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}

	return false
}
