package internal

// Role is the closed set of privilege tiers. The legacy role table stored
// free-form names; "User" is still accepted on input as an alias for Employee.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

func ParseRole(name string) (Role, *AppError) {
	switch name {
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleManager):
		return RoleManager, nil
	case string(RoleEmployee), "User":
		return RoleEmployee, nil
	}
	return "", NewValidationError("unknown role: "+name, ErrCodeInvalidRole)
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleEmployee
}

func (r Role) String() string { return string(r) }
