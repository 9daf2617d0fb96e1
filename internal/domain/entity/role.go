package entity

// Role names carried in access tokens
const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
	RoleStaff    = "staff"
	RoleEngineer = "engineer"
	RoleAdmin    = "admin"
)

// IsValidRole reports whether role is one of the known role names
func IsValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleAgent, RoleStaff, RoleEngineer, RoleAdmin:
		return true
	}
	return false
}
