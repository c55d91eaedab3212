package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// ParseRole accepts any casing ("Student", "teacher", ...) and reports
// whether the value names a known role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleTeacher:
		return RoleTeacher, true
	default:
		return "", false
	}
}

// Claim is the role string the upstream API puts in login responses and tokens.
func (r Role) Claim() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleTeacher:
		return "Teacher"
	default:
		return string(r)
	}
}

// DashboardPath is the landing page for a logged-in role.
func (r Role) DashboardPath() string {
	switch r {
	case RoleStudent:
		return "/student"
	case RoleTeacher:
		return "/teacher"
	default:
		return "/login"
	}
}

// Matches compares the role against a server-provided role claim, ignoring case.
func (r Role) Matches(claim string) bool {
	return r != "" && strings.EqualFold(strings.TrimSpace(claim), r.Claim())
}

type Credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"oneof=student teacher"`
}

// LoginRequest is the JSON body sent to the upstream login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the decoded 2xx login body. The upstream API has shipped the
// bearer token under several field names, so all of them are kept.
type AuthResponse struct {
	Role        string            `json:"role"`
	Token       string            `json:"token,omitempty"`
	AccessToken string            `json:"accessToken,omitempty"`
	Data        *AuthResponseData `json:"data,omitempty"`
}

type AuthResponseData struct {
	Token string `json:"token,omitempty"`
}

type Session struct {
	ID         string    `json:"-"`
	IsLoggedIn bool      `json:"is_logged_in"`
	UserType   Role      `json:"user_type,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	Restored   bool      `json:"restored,omitempty"`
}

type Identity struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
