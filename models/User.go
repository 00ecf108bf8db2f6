package models

import (
	"gorm.io/gorm"
)

// Role is the closed set of account roles. ADMIN passes every role check,
// so guards compare through Satisfies instead of raw string equality.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Satisfies reports whether a caller holding role r may pass a guard that
// requires the given role. ADMIN is a superset of every role.
func (r Role) Satisfies(required Role) bool {
	return r == required || r == RoleAdmin
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	gorm.Model
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Password  string `json:"-"`
	Role      Role   `json:"role" gorm:"type:varchar(20);default:USER;index"`
}
