package domain

import "time"

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by a successful login.
// Token is the only required field.
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType,omitempty"`
	ID        int64  `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	Role      string `json:"role,omitempty"`
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	ProgramType string `json:"programType,omitempty"`
}

// RegistrationResult is whatever the server echoes back after registering.
type RegistrationResult struct {
	ID       int64  `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     string `json:"role,omitempty"`
	Message  string `json:"message,omitempty"`
}

// User is the identity the dashboard shows for the current session.
type User struct {
	ID       int64  `json:"id,omitempty"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// UserProfile is returned by GET /api/users/me.
type UserProfile struct {
	ID          int64      `json:"id"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	IsActive    bool       `json:"isActive"`
	Permissions []string   `json:"permissions,omitempty"`
}

// User converts the profile into the session's user view.
func (p UserProfile) User() User {
	return User{
		ID:       p.ID,
		Email:    p.Email,
		FullName: p.FullName,
		Role:     NormalizeRole(p.Role),
	}
}

// SessionData is returned to callers of a successful login.
type SessionData struct {
	Token string
	User  User
}
