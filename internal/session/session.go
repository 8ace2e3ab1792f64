// Package session holds the operator's tab-scoped authentication state.
// A Session carries the bearer token and user metadata from a successful
// login until logout; it is the only mutable state shared across views.
// Nothing here touches the network and nothing survives the process.
package session

import (
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the access level attached to an authenticated session.
type Role string

const (
	RoleSuperAdmin    Role = "SUPERADMIN"
	RoleHospitalStaff Role = "HOSPITAL_STAFF"
	RoleDoctor        Role = "DOCTOR"
)

// UserMeta is the user metadata delivered alongside the token on login.
type UserMeta struct {
	DisplayName string
	Role        Role
}

// Session is the tab-scoped authentication state. The zero value is an
// anonymous session. All methods are safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	token       string
	displayName string
	role        Role
}

// Set stores the token and user metadata and marks the session
// authenticated. When the login payload omits the display name or role,
// Set falls back to the token's JWT claims; the claims are read without
// signature verification since the console never holds the signing key;
// the upstream API remains the authority on whether the token is valid.
func (s *Session) Set(token string, meta UserMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.displayName = meta.DisplayName
	s.role = meta.Role

	if s.displayName == "" || s.role == "" {
		if claims, ok := claimsFromToken(token); ok {
			if s.displayName == "" {
				s.displayName = claims.Name
			}
			if s.role == "" {
				s.role = Role(claims.Role)
			}
		}
	}
}

// Clear removes all session fields, returning the session to anonymous.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.displayName = ""
	s.role = ""
}

// Token returns the current bearer token, or "" for an anonymous session.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a token is present. No expiry tracking
// happens here; an expired token is discovered only when the upstream API
// rejects it.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Role returns the session's role, or "" when anonymous or unknown.
func (s *Session) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// DisplayName returns the authenticated user's display name.
func (s *Session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName
}

type tokenClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func claimsFromToken(token string) (*tokenClaims, bool) {
	claims := &tokenClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, false
	}
	return claims, true
}
