package domain

import "time"

// Role determines what a user may do.
type Role string

const (
	RoleConsumer Role = "CONSUMER"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
)

// IsValid checks if the role is a known value.
func (r Role) IsValid() bool {
	return r == RoleConsumer || r == RoleProvider || r == RoleAdmin
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal has the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccessProject reports whether the principal owns the project or is an admin.
func (p Principal) CanAccessProject(project *Project) bool {
	return project != nil && (project.UserID == p.UserID || p.IsAdmin())
}
