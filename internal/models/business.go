package models

import (
	"time"

	"gorm.io/gorm"
)

// Business-level membership roles, closed set ordered by privilege.
const (
	MembershipRoleBusinessAdmin = "business_admin"
	MembershipRoleStaff         = "staff"
	MembershipRoleViewer        = "viewer"
)

// rolePrecedence orders every recognized role. Higher wins.
var rolePrecedence = map[string]int{
	RoleSuperAdmin:              4,
	MembershipRoleBusinessAdmin: 3,
	MembershipRoleStaff:         2,
	MembershipRoleViewer:        1,
}

// RoleAtLeast reports whether role meets or exceeds required privilege.
// Unknown roles rank below viewer.
func RoleAtLeast(role, required string) bool {
	return rolePrecedence[role] >= rolePrecedence[required]
}

// Business is a tenant. Every financial record belongs to exactly one business.
type Business struct {
	gorm.Model
	LegalName          string `gorm:"not null"`
	OwnerID            uint   `gorm:"not null;index"`
	Owner              *User  `gorm:"foreignKey:OwnerID"`
	RegistrationNumber string
	KRAPin             string
	Phone              string
	Email              string
	Address            string
	Status             string `gorm:"default:'active'"`
}

// Membership ties a user to a business with a role. Multiple rows per
// (user, business) are tolerated; permission checks only ask whether an
// active row with a given role exists.
type Membership struct {
	gorm.Model
	UserID     uint      `gorm:"not null;index:idx_membership_user_business"`
	BusinessID uint      `gorm:"not null;index:idx_membership_user_business"`
	User       *User     `gorm:"foreignKey:UserID"`
	Business   *Business `gorm:"foreignKey:BusinessID"`
	Role       string    `gorm:"not null;default:'staff'"`
	IsActive   bool      `gorm:"default:true"`
	InvitedBy  *uint
	JoinedAt   time.Time
}
