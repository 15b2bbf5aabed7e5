package models

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT claim set the federation gateway forwards to subgraphs.
type Claims struct {
	jwt.RegisteredClaims          // sub, iss, aud, exp, iat, ...
	Email                string   `json:"email"`
	Name                 string   `json:"name"`
	Roles                []string `json:"roles"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// User is the authenticated caller of one request.
type User struct {
	ID    string
	Email string
	Roles []string
}

// NewUserFromClaims maps verified claims to a request user.
func NewUserFromClaims(c *Claims) *User {
	return &User{
		ID:    c.GetUserID(),
		Email: c.Email,
		Roles: c.Roles,
	}
}

// HasAnyRole reports whether the user holds at least one of roles.
func (u *User) HasAnyRole(roles []string) bool {
	for _, r := range roles {
		if slices.Contains(u.Roles, r) {
			return true
		}
	}
	return false
}
