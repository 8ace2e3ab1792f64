// Package guard decides, per navigation, whether a view may render or
// whether the visitor is bounced to the login view. The decision is pure
// and synchronous; the echo middleware translates it into a redirect.
package guard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbitcare/console/internal/session"
)

// LoginPath is where blocked navigations are sent.
const LoginPath = "/"

// Decision is the outcome of a guard check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
)

// Rule describes the access requirements of a route.
type Rule struct {
	RequireAuth bool
	// RequiredRole, when set, further restricts the route to sessions
	// holding that role. A mismatch redirects to login the same way an
	// anonymous visit does; there is no separate forbidden state.
	RequiredRole session.Role
}

// Check evaluates rule against the session. A nil session is anonymous.
func Check(rule Rule, s *session.Session) Decision {
	if !rule.RequireAuth {
		return Allow
	}
	if s == nil || !s.IsAuthenticated() {
		return RedirectToLogin
	}
	if rule.RequiredRole != "" && s.Role() != rule.RequiredRole {
		return RedirectToLogin
	}
	return Allow
}

// SessionResolver extracts the visitor's session from the request context.
type SessionResolver func(c echo.Context) *session.Session

// Middleware returns echo middleware enforcing rule. Blocked requests get
// a 302 to the login view and the protected handler never runs, so no
// state of the blocked view is retained.
func Middleware(rule Rule, resolve SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Check(rule, resolve(c)) == RedirectToLogin {
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return next(c)
		}
	}
}
