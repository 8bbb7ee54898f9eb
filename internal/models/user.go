package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

const (
	RoleVolunteer = "volunteer"
	RoleNGO       = "ngo"
)

// DefaultAvatarURL is used when a user has not uploaded an avatar.
const DefaultAvatarURL = "https://res.cloudinary.com/df7lfelei/image/upload/v1762706749/346569_qv3txb.png"

type User struct {
	gorm.Model  `json:"-"`
	ID          uint     `json:"id" gorm:"primaryKey"`
	Name        string   `json:"name"`
	Email       string   `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password    string   `json:"-"`                        // Store hashed password, ignore for JSON serialization
	Role        string   `json:"role" gorm:"size:20;index"` // volunteer or ngo
	Location    string   `json:"location,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	AvatarURL   string   `json:"avatarUrl"`
	Skills      []string `json:"skills" gorm:"serializer:json"`
	// Link to Firebase User UID. Not uniquely indexed: password-only
	// accounts all leave it empty.
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"index"`

	// NGO-only fields
	OrganizationName        string `json:"organization_name,omitempty"`
	OrganizationDescription string `json:"organization_description,omitempty"`
	WebsiteURL              string `json:"website_url,omitempty"`
}

// UserSummary is the lightweight shape embedded in populated messages,
// conversation lists and opportunity listings.
type UserSummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatarUrl"`
}

// ToSummary converts a full user record into its display-ready summary.
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}

type RegisterRequest struct {
	Name     string   `json:"name" validate:"required,min=2,max=50"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     string   `json:"role" validate:"required,oneof=volunteer ngo"`
	Location string   `json:"location,omitempty"`
	Bio      string   `json:"bio,omitempty"`
	Skills   []string `json:"skills,omitempty"`

	OrganizationName        string `json:"organization_name,omitempty"`
	OrganizationDescription string `json:"organization_description,omitempty"`
	WebsiteURL              string `json:"website_url,omitempty" validate:"omitempty,url"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name      string   `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Location  string   `json:"location,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	AvatarURL string   `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Skills    []string `json:"skills,omitempty"`

	OrganizationName        string `json:"organization_name,omitempty"`
	OrganizationDescription string `json:"organization_description,omitempty"`
	WebsiteURL              string `json:"website_url,omitempty" validate:"omitempty,url"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
