package models

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleCandidate UserRole = "candidate"
)

// Identity is the authenticated caller as reported by the auth provider.
type Identity struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
