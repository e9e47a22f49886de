package types

import "github.com/m-mizutani/goerr/v2"

// Role identifies which side of the conversation produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Validate checks if the Role is valid
func (x Role) Validate() error {
	switch x {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return goerr.New("invalid role", goerr.V("role", x))
	}
}

// String returns the string representation of Role
func (x Role) String() string {
	return string(x)
}
