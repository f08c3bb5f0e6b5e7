package enums

import "slices"

// Role is carried in token claims to tell admin and customer tokens apart.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

var roles = []Role{RoleAdmin, RoleCustomer}

func (r Role) String() string { return string(r) }
func (r Role) IsValid() bool  { return slices.Contains(roles, r) }

func ParseRole(value string) (Role, error) {
	return parse("role", roles, value)
}
