// Package message provides the per-session, append-only turn log.
package message

import (
	"fmt"
	"time"
)

// Role represents the role of a turn's author.
type Role string

// Role constants. The set is closed; see Valid.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// ParseRole converts a stored role string back into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Turn is one utterance in a session's history.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// NewTurn creates a turn stamped with the current time.
func NewTurn(role Role, content string) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// IsConversational reports whether the turn was authored by the user or the
// assistant, as opposed to a system instruction.
func (t Turn) IsConversational() bool {
	switch t.Role {
	case RoleUser, RoleAssistant:
		return true
	case RoleSystem:
		return false
	default:
		return false
	}
}
