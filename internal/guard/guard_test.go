package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/orbitcare/console/internal/session"
)

func authenticated(role session.Role) *session.Session {
	s := &session.Session{}
	s.Set("tok", session.UserMeta{DisplayName: "op", Role: role})
	return s
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		sess *session.Session
		want Decision
	}{
		{"public route, anonymous", Rule{}, nil, Allow},
		{"protected route, nil session", Rule{RequireAuth: true}, nil, RedirectToLogin},
		{"protected route, anonymous", Rule{RequireAuth: true}, &session.Session{}, RedirectToLogin},
		{"protected route, authenticated", Rule{RequireAuth: true}, authenticated(session.RoleDoctor), Allow},
		{
			"role-gated route, matching role",
			Rule{RequireAuth: true, RequiredRole: session.RoleSuperAdmin},
			authenticated(session.RoleSuperAdmin),
			Allow,
		},
		{
			"role-gated route, wrong role",
			Rule{RequireAuth: true, RequiredRole: session.RoleSuperAdmin},
			authenticated(session.RoleDoctor),
			RedirectToLogin,
		},
		{
			"role-gated route, anonymous",
			Rule{RequireAuth: true, RequiredRole: session.RoleSuperAdmin},
			nil,
			RedirectToLogin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Check(tt.rule, tt.sess); got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMiddleware_RedirectsAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Middleware(Rule{RequireAuth: true}, func(echo.Context) *session.Session { return nil })
	handlerRan := false
	h := mw(func(c echo.Context) error {
		handlerRan = true
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handlerRan {
		t.Error("protected handler must not run for anonymous visitors")
	}
	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != LoginPath {
		t.Errorf("Location = %q, want %q", loc, LoginPath)
	}
}

func TestMiddleware_AllowsAuthenticated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sess := authenticated(session.RoleSuperAdmin)
	mw := Middleware(Rule{RequireAuth: true}, func(echo.Context) *session.Session { return sess })
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
