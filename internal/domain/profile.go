package domain

import "time"

// Role names are static reference data seeded by migrations.
const (
	RoleManager    = "manager"
	RoleTeamMember = "team_member"
)

type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Profile is a registered user together with their role reference.
type Profile struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	RoleID       int        `json:"role_id"`
	PasswordHash string     `json:"-"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// Session is the per-request identity resolved once by the route guard.
type Session struct {
	ProfileID string `json:"profile_id"`
	Email     string `json:"email"`
	RoleName  string `json:"role"`
}

func (s *Session) IsManager() bool {
	return s != nil && s.RoleName == RoleManager
}
