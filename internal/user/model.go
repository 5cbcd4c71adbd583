package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser    Role = "USER"
	RoleArtisan Role = "ARTISAN"
	RoleAdmin   Role = "ADMIN"
)

type User struct {
	ID        uint
	Email     string
	Password  string
	Role      Role
	ArtisanID *string
	CreatedAt time.Time
}

type Profile struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uint       `json:"userId"`
	FullName  string     `json:"fullName"`
	Phone     *string    `json:"phone,omitempty"`
	AvatarURL *string    `json:"avatarUrl,omitempty"`
	Bio       *string    `json:"bio,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ProfileFields are collected at sign-up.
type ProfileFields struct {
	FullName string  `json:"fullName" validate:"required,max=120"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	ProfileFields
}

type UpdateProfileParams struct {
	UserID    uint    `json:"-"`
	FullName  *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=120"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

func (p UpdateProfileParams) HasChanges() bool {
	return p.FullName != nil || p.Phone != nil || p.AvatarURL != nil || p.Bio != nil
}
