// internal/auth/models.go

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is the account record behind a profile. Profile attributes live in the
// profiles table; this carries only credentials and role.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Claims are the JWT claims carried by access and refresh tokens.
type Claims struct {
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	Type    string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,e164"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	DisplayName string  `json:"display_name" validate:"required,min=1,max=100"`
	Age         int     `json:"age" validate:"required,gte=18,lte=100"`
	Gender      string  `json:"gender" validate:"required,oneof=male female"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
