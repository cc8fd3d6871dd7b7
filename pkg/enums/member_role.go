package enums

// MemberRole is the coarse role carried inside access tokens.
type MemberRole string

const (
	MemberRoleShopper MemberRole = "shopper"
	MemberRoleManager MemberRole = "manager"
	MemberRoleAdmin   MemberRole = "admin"
)

// String implements fmt.Stringer.
func (m MemberRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MemberRole.
func (m MemberRole) IsValid() bool {
	switch m {
	case MemberRoleShopper, MemberRoleManager, MemberRoleAdmin:
		return true
	default:
		return false
	}
}
