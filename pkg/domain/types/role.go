package types

// Role identifies the speaker of a session turn
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAI
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}
