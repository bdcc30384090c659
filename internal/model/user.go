package model

import (
	"strings"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleOwner    UserRole = "owner"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	gorm.Model
	Email    string   `gorm:"uniqueIndex;not null"`
	Password string   `gorm:"not null"`
	Username string   `gorm:"uniqueIndex;not null"`
	Role     UserRole `json:"role" gorm:"default:'customer'"`

	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Avatar      string `json:"avatar"`

	IsVerified bool `json:"is_verified" gorm:"default:false"`

	Owner *Owner `json:"-" gorm:"foreignKey:UserID"`
}

func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"username":     u.Username,
		"role":         u.Role,
		"full_name":    u.GetFullName(),
		"phone_number": u.PhoneNumber,
		"avatar":       u.Avatar,
		"is_verified":  u.IsVerified,
	}
}
