package models

import (
	"fmt"
	"strings"
)

// Role is a collaborator's capability level on a project
type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleEditor   Role = "EDITOR"
	RoleReviewer Role = "REVIEWER"
	RoleViewer   Role = "VIEWER"
)

// ParseRole accepts a role name in any case
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleOwner, RoleEditor, RoleReviewer, RoleViewer:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// RoleSet is the set of roles an operation accepts
type RoleSet []Role

// Contains reports whether r is in the set
func (s RoleSet) Contains(r Role) bool {
	for _, candidate := range s {
		if candidate == r {
			return true
		}
	}
	return false
}

func (s RoleSet) String() string {
	names := make([]string, len(s))
	for i, r := range s {
		names[i] = string(r)
	}
	return strings.Join(names, "|")
}

// Collaborator links a user to a project with a role
type Collaborator struct {
	ProjectID string `json:"project_id" db:"project_id"`
	UserID    string `json:"user_id" db:"user_id"`
	Role      Role   `json:"role" db:"role"`
}
