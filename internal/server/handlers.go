package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/orbitcare/console/internal/forms"
	"github.com/orbitcare/console/internal/gateway"
	"github.com/orbitcare/console/internal/table"
)

const brandName = "Orbit Care"

// handleLoginView serves the login page. A visitor who already holds a
// token is sent straight to the dashboard.
func (s *Server) handleLoginView(c echo.Context) error {
	sess := sessionFrom(c)
	if sess.IsAuthenticated() {
		return c.Redirect(http.StatusFound, "/dashboard")
	}
	return c.JSON(http.StatusOK, loginView{View: "login", Brand: brandName})
}

func (s *Server) handleLogin(c echo.Context) error {
	var form forms.LoginForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, loginView{
			View:  "login",
			Brand: brandName,
			Error: "Could not read the submitted form",
		})
	}

	sess := sessionFrom(c)
	flow := forms.NewLoginFlow(s.gatewayFor(sess))
	fieldErrs, err := flow.Submit(c.Request().Context(), form, sess)
	if fieldErrs.Any() {
		return c.JSON(http.StatusUnprocessableEntity, loginView{
			View:   "login",
			Brand:  brandName,
			Errors: fieldErrs,
		})
	}
	if err != nil {
		status := http.StatusUnauthorized
		var gwErr *gateway.Error
		if errors.As(err, &gwErr) && gwErr.Kind == gateway.KindNetwork {
			status = http.StatusBadGateway
		}
		return c.JSON(status, loginView{
			View:  "login",
			Brand: brandName,
			Error: gateway.UserMessage(err),
		})
	}

	// Any view state accumulated before this login is stale.
	s.dropList(sessionIDFrom(c))
	return c.JSON(http.StatusOK, submitResult{Success: true, Redirect: "/dashboard"})
}

// handleLogout clears the visitor's session and per-session view state.
func (s *Server) handleLogout(c echo.Context) error {
	id := sessionIDFrom(c)
	s.dropList(id)
	s.sessions.Destroy(id)
	c.SetCookie(&http.Cookie{
		Name:     s.cfg.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleDashboard(c echo.Context) error {
	sess := sessionFrom(c)
	view := dashboardView{View: "dashboard", DisplayName: sess.DisplayName()}

	hospitals, _, err := s.gatewayFor(sess).ListHospitals(c.Request().Context())
	if err != nil {
		if done, redirect := redirectUnauthenticated(c, err); done {
			return redirect
		}
		view.Error = gateway.UserMessage(err)
		view.Retry = true
		return c.JSON(http.StatusOK, view)
	}

	view.TotalHospitals = len(hospitals)
	for _, h := range hospitals {
		if h.Suspended {
			view.SuspendedHospitals++
		} else {
			view.ActiveHospitals++
		}
		view.TotalDoctors += h.DoctorCount
	}
	return c.JSON(http.StatusOK, view)
}

var patientColumns = []table.Column{
	{Key: "opid", Label: "OPID"},
	{Key: "name", Label: "Patient Name"},
	{Key: "age", Label: "Age"},
	{Key: "gender", Label: "Gender"},
	{Key: "phone", Label: "Phone"},
	{Key: "lastVisit", Label: "Last Visit"},
	{Key: "healthIssue", Label: "Health Issue"},
	{Key: "appointments", Label: "Appointments"},
}

// handlePatientList serves the patient grid. Filtering here is a plain
// substring match over the fetched rows, not a remote search.
func (s *Server) handlePatientList(c echo.Context) error {
	sess := sessionFrom(c)
	patients, err := s.gatewayFor(sess).ListPatients(c.Request().Context())
	if err != nil {
		if done, redirect := redirectUnauthenticated(c, err); done {
			return redirect
		}
		return c.JSON(http.StatusOK, patientListView{
			View:  "patients",
			Error: gateway.UserMessage(err),
			Retry: true,
		})
	}

	q := strings.TrimSpace(c.QueryParam("q"))
	rows := make([]table.Row, 0, len(patients))
	for _, p := range patients {
		row := patientRow(p)
		if q == "" || rowMatches(row, q) {
			rows = append(rows, row)
		}
	}

	st := table.New(patientColumns,
		table.WithActions([]table.Action{{Label: "View Details", Icon: "eye"}}),
		table.WithRowsPerPage(s.cfg.RowsPerPage),
	)
	st.SetRows(rows)
	if page := pageParam(c); page > 0 {
		st.GoToPage(page)
	}

	return c.JSON(http.StatusOK, patientListView{
		View:  "patients",
		Table: renderTable(st),
		Query: q,
	})
}

// rowMatches reports whether any string cell contains q,
// case-insensitively.
func rowMatches(row table.Row, q string) bool {
	q = strings.ToLower(q)
	for _, v := range row {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

func (s *Server) handleSettings(c echo.Context) error {
	sess := sessionFrom(c)
	return c.JSON(http.StatusOK, settingsView{
		View:        "settings",
		DisplayName: sess.DisplayName(),
		Role:        string(sess.Role()),
	})
}

func (s *Server) handleNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]any{
		"view":  "notfound",
		"error": "Page not found",
	})
}
