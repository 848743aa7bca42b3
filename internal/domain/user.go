package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ValidRole reports whether the value is a known role.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleUser
}

// SocialLinks holds optional profile links.
type SocialLinks struct {
	Linkedin string
	Github   string
	Leetcode string
	Website  string
}

// User represents an account in the system. PasswordHash is internal state
// and must never reach a serialized representation.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	AvatarURL    string
	Social       SocialLinks
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
