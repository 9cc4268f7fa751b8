package entity

// Role IDs carried in JWT claims by the identity service.
const (
	RoleIDAdmin  = 1
	RoleIDStaff  = 2
	RoleIDClient = 3
)
