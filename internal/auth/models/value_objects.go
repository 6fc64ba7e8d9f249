package models

import "strings"

// Role is the authorization level of a portal user.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleTenantMember Role = "tenant-member"
)

// legacyMemberRole is the role name used by accounts provisioned before the
// tenant-member rename.
const legacyMemberRole = "mandant"

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleTenantMember
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts the canonical role names and the legacy member name.
// Unknown values yield false.
func ParseRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleAdmin):
		return RoleAdmin, true
	case string(RoleTenantMember), legacyMemberRole:
		return RoleTenantMember, true
	default:
		return "", false
	}
}
