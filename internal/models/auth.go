package models

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the dashboard roles known to the auth provider.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleParent  UserRole = "parent"
	RoleStudent UserRole = "student"
)

// AppMetadata is the provider-managed metadata block embedded in access tokens.
type AppMetadata struct {
	Role UserRole `json:"role"`
}

// JWTClaims represents the access token payload issued by the hosted auth provider.
type JWTClaims struct {
	Email       string      `json:"email"`
	UserRole    UserRole    `json:"user_role,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

// UserID returns the authenticated user's id (the token subject).
func (c *JWTClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// Role prefers the explicit user_role claim and falls back to app_metadata.role.
func (c *JWTClaims) Role() UserRole {
	if c == nil {
		return ""
	}
	role := c.UserRole
	if role == "" {
		role = c.AppMetadata.Role
	}
	return UserRole(strings.ToLower(string(role)))
}
