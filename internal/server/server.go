// Package server wires the console's client-facing routes onto echo: the
// public login view, the guarded dashboard, hospital and patient listing
// views, and the add/edit hospital form endpoints. Every view renders as
// a JSON payload; navigation denials are 302s to the login view.
package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/orbitcare/console/internal/config"
	"github.com/orbitcare/console/internal/gateway"
	"github.com/orbitcare/console/internal/guard"
	"github.com/orbitcare/console/internal/platform/blobstore"
	"github.com/orbitcare/console/internal/platform/middleware"
	"github.com/orbitcare/console/internal/session"
)

const (
	ctxKeySession   = "console_session"
	ctxKeySessionID = "console_session_id"
)

// Server is the console HTTP server.
type Server struct {
	echo     *echo.Echo
	cfg      *config.Config
	logger   zerolog.Logger
	sessions *session.Store
	logos    blobstore.ObjectStore
	upstream *http.Client

	mu    sync.Mutex
	lists map[string]*hospitalList
}

// New assembles the server. logos may be nil; hospital submissions with
// a logo then fail with a descriptive error.
func New(cfg *config.Config, logger zerolog.Logger, logos blobstore.ObjectStore) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		sessions: session.NewStore(),
		logos:    logos,
		upstream: &http.Client{Timeout: cfg.HTTPTimeout()},
		lists:    make(map[string]*hospitalList),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("64K", "8M"))
	e.Use(s.withSession)

	s.echo = e
	s.routes()
	return s
}

// Echo exposes the underlying echo instance, mainly for tests.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start begins serving on addr.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains and stops the server, and stops every per-session
// search debouncer.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, l := range s.lists {
		l.stop()
	}
	s.mu.Unlock()
	return s.echo.Shutdown(ctx)
}

func (s *Server) routes() {
	e := s.echo

	authed := guard.Middleware(guard.Rule{RequireAuth: true}, sessionFrom)
	superadmin := guard.Middleware(
		guard.Rule{RequireAuth: true, RequiredRole: session.RoleSuperAdmin},
		sessionFrom,
	)

	e.GET("/", s.handleLoginView)
	e.POST("/login", s.handleLogin,
		middleware.RateLimit(middleware.DefaultLoginRateLimit()))
	e.POST("/logout", s.handleLogout)

	e.GET("/dashboard", s.handleDashboard, authed)
	e.GET("/patient", s.handlePatientList, authed)
	e.GET("/settings", s.handleSettings, authed)

	e.GET("/hospital", s.handleHospitalList, superadmin)
	e.POST("/hospital/action", s.handleHospitalAction, superadmin)
	e.GET("/addhospital", s.handleAddHospitalView, superadmin)
	e.POST("/addhospital", s.handleAddHospital, superadmin)
	e.GET("/edithospital/:id", s.handleEditHospitalView, superadmin)
	e.POST("/edithospital/:id", s.handleEditHospital, superadmin)

	e.RouteNotFound("/*", s.handleNotFound)
}

// withSession resolves the visitor's tab session from the cookie,
// creating a fresh anonymous one when absent.
func (s *Server) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var id string
		if cookie, err := c.Cookie(s.cfg.SessionCookie); err == nil {
			id = cookie.Value
		}

		resolvedID, sess := s.sessions.GetOrCreate(id)
		if resolvedID != id {
			c.SetCookie(&http.Cookie{
				Name:     s.cfg.SessionCookie,
				Value:    resolvedID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		c.Set(ctxKeySession, sess)
		c.Set(ctxKeySessionID, resolvedID)
		return next(c)
	}
}

func sessionFrom(c echo.Context) *session.Session {
	sess, _ := c.Get(ctxKeySession).(*session.Session)
	return sess
}

func sessionIDFrom(c echo.Context) string {
	id, _ := c.Get(ctxKeySessionID).(string)
	return id
}

// gatewayFor builds a gateway client bound to the visitor's session,
// sharing one upstream HTTP client across all sessions.
func (s *Server) gatewayFor(sess *session.Session) *gateway.Client {
	return gateway.New(s.cfg.APIBaseURL, sess,
		gateway.WithHTTPClient(s.upstream),
		gateway.WithLogger(s.logger),
	)
}

// listFor returns the per-session hospital list controller, creating it
// on first use.
func (s *Server) listFor(c echo.Context) *hospitalList {
	id := sessionIDFrom(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lists[id]; ok {
		return l
	}
	l := newHospitalList(s.gatewayFor(sessionFrom(c)), s.cfg)
	s.lists[id] = l
	return l
}

// dropList discards the per-session list controller on logout.
func (s *Server) dropList(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lists[id]; ok {
		l.stop()
		delete(s.lists, id)
	}
}
