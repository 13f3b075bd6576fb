package domain

import "time"

// OperatorRole determines dashboard visibility.
type OperatorRole string

const (
	OperatorRoleAdmin OperatorRole = "ADMIN"
	OperatorRoleAgent OperatorRole = "AGENT"
)

// Valid reports whether the role is known.
func (r OperatorRole) Valid() bool {
	return r == OperatorRoleAdmin || r == OperatorRoleAgent
}

// Operator is a CRM staff member allowed to use the dashboard. Name matches
// the owner name carried on lead records.
type Operator struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         OperatorRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
