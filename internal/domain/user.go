package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Identity is the caller identity verified once at the transport boundary
// and passed explicitly into every core operation.
type Identity struct {
	UserID string
	Role   Role
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// CanPublishEvents reports whether the identity may create events.
func (id Identity) CanPublishEvents() bool {
	return id.Role == RoleOrganizer || id.Role == RoleAdmin
}
