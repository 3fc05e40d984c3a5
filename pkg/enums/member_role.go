package enums

import "fmt"

// MemberRole represents a company-level permissions role.
type MemberRole string

const (
	MemberRoleAdmin    MemberRole = "admin"
	MemberRoleHR       MemberRole = "hr"
	MemberRoleManager  MemberRole = "manager"
	MemberRoleEmployee MemberRole = "employee"
)

var validMemberRoles = []MemberRole{
	MemberRoleAdmin,
	MemberRoleHR,
	MemberRoleManager,
	MemberRoleEmployee,
}

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsAdminLike reports whether the role may manage jobs, rates, assignments
// and billing reports.
func (m MemberRole) IsAdminLike() bool {
	switch m {
	case MemberRoleAdmin, MemberRoleHR, MemberRoleManager:
		return true
	}
	return false
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
