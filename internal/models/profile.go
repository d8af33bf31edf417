package models

import (
	"time"

	"github.com/ylvish/torque/internal/utils"
)

// Role defines account roles. Buyers and sellers browse the public site;
// employees and the CEO see the staff dashboard.
type Role string

const (
	RoleBuyer    Role = "BUYER"
	RoleSeller   Role = "SELLER"
	RoleEmployee Role = "EMPLOYEE"
	RoleCEO      Role = "CEO"
)

// ValidRole reports whether r is one of the defined roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleEmployee, RoleCEO:
		return true
	}
	return false
}

// IsStaff reports whether the role grants dashboard access.
func (r Role) IsStaff() bool {
	return r == RoleEmployee || r == RoleCEO
}

// IsCEO reports whether the role grants the employee roster.
func (r Role) IsCEO() bool {
	return r == RoleCEO
}

// Profile represents an account record.
type Profile struct {
	Base         `bson:",inline"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         Role      `bson:"role" json:"role"`
	AvatarURL    string    `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	PasswordHash string    `bson:"password" json:"-"` // Store hash, not plaintext. Never serialized.
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// ProfileSummary is the slim shape embedded in lead listings (assignee join).
type ProfileSummary struct {
	ID    utils.SixID `bson:"_id" json:"id"`
	Name  string      `bson:"name" json:"name"`
	Email string      `bson:"email" json:"email"`
}
