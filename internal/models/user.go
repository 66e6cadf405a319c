package models

import "github.com/jinzhu/gorm"

// User represents a staff member who can sign in to the system
type User struct {
	gorm.Model
	Email        string `gorm:"unique_index"`
	FullName     string
	Role         string `gorm:"default:'staff'"`
	PasswordHash string `json:"-"`
	IsActive     bool   `gorm:"default:true"`
}

// Role represents the access level of a user
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// roleRank orders roles by privilege for AtLeast checks
var roleRank = map[Role]int{
	RoleStaff:   1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// AtLeast reports whether the role carries at least the privilege of min
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

// ValidRole reports whether the string names a known role
func ValidRole(s string) bool {
	_, ok := roleRank[Role(s)]
	return ok
}
