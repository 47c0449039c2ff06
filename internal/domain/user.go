package domain

import (
	"time"
)

// User represents an application user account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserProfile represents profile information extracted from a verified
// Google token
type UserProfile struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture,omitempty"`
}

// AuthClaims represents the claims carried by an app-issued session token
type AuthClaims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin reports whether the claims belong to an admin account
func (c *AuthClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// AuthResponse is returned after a successful sign-in
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// GoogleSignInRequest carries either an OAuth authorization code or an
// already-obtained access token
type GoogleSignInRequest struct {
	Code        string `json:"code,omitempty"`
	RedirectURI string `json:"redirect_uri,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}
