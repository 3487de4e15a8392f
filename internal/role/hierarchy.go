package role

// Built-in role names. The seed set is fixed; changes are administrative.
const (
	SuperAdmin = "SuperAdmin"
	Admin      = "Admin"
	Manager    = "Manager"
	Editor     = "Editor"
	User       = "User"
	Viewer     = "Viewer"
)

// hierarchy ranks roles by privilege; a lower rank outranks a higher one.
// Loaded once, never mutated at runtime.
var hierarchy = map[string]int{
	SuperAdmin: 1,
	Admin:      2,
	Manager:    3,
	Editor:     4,
	User:       5,
	Viewer:     6,
}

// Rank returns the privilege rank for a role name. ok is false for names
// outside the seed set.
func Rank(name string) (int, bool) {
	r, ok := hierarchy[name]
	return r, ok
}

// CanChangeRole decides whether a user holding actingRole may move a target
// user from targetCurrentRole to requestedNewRole.
//
// Rules, in order:
//  1. SuperAdmin may change any role.
//  2. Admin may change any role except a SuperAdmin target.
//  3. Otherwise the actor must outrank the target and may not promote the
//     target above the actor's own rank.
//
// Unknown role names deny. The function is pure; self-change and
// SuperAdmin-target guards are the caller's responsibility.
func CanChangeRole(actingRole, targetCurrentRole, requestedNewRole string) bool {
	if actingRole == SuperAdmin {
		return true
	}

	if actingRole == Admin && targetCurrentRole != SuperAdmin {
		return true
	}

	actingRank, ok := Rank(actingRole)
	if !ok {
		return false
	}
	targetRank, ok := Rank(targetCurrentRole)
	if !ok {
		return false
	}
	newRank, ok := Rank(requestedNewRole)
	if !ok {
		return false
	}

	return actingRank < targetRank && newRank >= actingRank
}
