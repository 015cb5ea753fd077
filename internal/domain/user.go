package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleUser    Role = "user"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

// AccessStatus is the gym access gate an admin can flip to suspend a member.
type AccessStatus string

const (
	AccessGreen AccessStatus = "green"
	AccessRed   AccessStatus = "red"
)

// Toggled returns the opposite status.
func (s AccessStatus) Toggled() AccessStatus {
	if s == AccessRed {
		return AccessGreen
	}
	return AccessRed
}

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// User represents a gym member, trainer or administrator.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`

	Credits      int          `bson:"credits" json:"credits"`
	AccessStatus AccessStatus `bson:"accessStatus" json:"accessStatus"`

	// --- Physical attributes, filled during onboarding ---
	Height   float64    `bson:"height,omitempty" json:"height,omitempty"` // cm
	Weight   float64    `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	Birthday *time.Time `bson:"birthday,omitempty" json:"birthday,omitempty"`
	Sex      Sex        `bson:"sex,omitempty" json:"sex,omitempty"`

	Observations string `bson:"observations,omitempty" json:"observations,omitempty"` // Free text, admin only

	MemberSince time.Time  `bson:"memberSince" json:"memberSince"`
	LastActive  *time.Time `bson:"lastActive,omitempty" json:"lastActive,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleTrainer
}

// HasAccess reports whether the member may enter the gym or book sessions.
func (u *User) HasAccess() bool {
	return u.AccessStatus != AccessRed
}
