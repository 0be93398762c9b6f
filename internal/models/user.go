package models

import "time"

// User roles. Stored as a text column; the JWT carries the role so that
// middleware can authorize without a database round trip.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Account tiers.
const (
	TierStandard = "standard"
	TierPremium  = "premium"
)

// User is the aggregate root. It owns the address, payment method and
// wishlist collections; deleting a user removes all of them.
type User struct {
	ID             string    `json:"id" db:"id"` // UUID string from DB
	Nickname       string    `json:"nickname,omitempty" db:"nickname"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	FirstName      string    `json:"first_name,omitempty" db:"first_name"`
	LastName       string    `json:"last_name,omitempty" db:"last_name"`
	Phone          string    `json:"phone,omitempty" db:"phone"`
	AvatarURL      string    `json:"avatar_url,omitempty" db:"avatar_url"`
	Role           string    `json:"role" db:"role"`
	Tier           string    `json:"tier" db:"tier"`
	AuthProvider   string    `json:"auth_provider" db:"auth_provider"`
	AuthProviderID string    `json:"-" db:"auth_provider_id"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	IsVerified     bool      `json:"is_verified" db:"is_verified"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type SignupRequest struct {
	Nickname string `json:"nickname" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ActivationRequest struct {
	Token string `json:"token" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

// UserUpdateData defines the fields a user may change on their own profile.
// Pointers distinguish "not supplied" from an explicit zero value.
type UserUpdateData struct {
	Nickname  *string `json:"nickname,omitempty" validate:"omitempty,min=1,max=100"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,e164"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// ResendActivationRequest defines the body for the resend activation email request.
type ResendActivationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestPasswordResetRequest defines the body for the request password reset endpoint.
type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest defines the body for completing the password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
