package domain

import "strings"

// Role indica si la cuenta quiere contratar o trabajar.
type Role string

const (
	RoleHire Role = "hire"
	RoleWork Role = "work"
)

// ParseRole acepta "hire"/"work" sin distinguir mayusculas.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleHire:
		return RoleHire, true
	case RoleWork:
		return RoleWork, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	return r == RoleHire || r == RoleWork
}
