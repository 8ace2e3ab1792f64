package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/orbitcare/console/internal/forms"
	"github.com/orbitcare/console/internal/gateway"
	"github.com/orbitcare/console/internal/guard"
	"github.com/orbitcare/console/internal/table"
)

// tableView is the serialized shape of a paginated grid.
type tableView struct {
	Columns      []table.Column `json:"columns"`
	Rows         []table.Row    `json:"rows"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"totalPages"`
	TotalRows    int            `json:"totalRows"`
	HasPrev      bool           `json:"hasPrev"`
	HasNext      bool           `json:"hasNext"`
	PageNumbers  []int          `json:"pageNumbers"`
	Actions      []string       `json:"actions,omitempty"`
	Empty        bool           `json:"empty"`
	EmptyMessage string         `json:"emptyMessage,omitempty"`
	EmptyColspan int            `json:"emptyColspan,omitempty"`
}

func renderTable(st *table.State) tableView {
	v := tableView{
		Columns:     st.Columns(),
		Rows:        st.VisibleRows(),
		Page:        st.Page(),
		TotalPages:  st.TotalPages(),
		TotalRows:   st.TotalRows(),
		HasPrev:     st.HasPrev(),
		HasNext:     st.HasNext(),
		PageNumbers: st.PageNumbers(),
		Actions:     st.ActionLabels(),
		Empty:       st.Empty(),
	}
	if v.Empty {
		v.EmptyMessage = "No data found"
		v.EmptyColspan = st.EmptyColspan()
	}
	return v
}

type loginView struct {
	View   string            `json:"view"`
	Brand  string            `json:"brand"`
	Errors forms.FieldErrors `json:"fieldErrors,omitempty"`
	Error  string            `json:"error,omitempty"`
}

type dashboardView struct {
	View               string `json:"view"`
	DisplayName        string `json:"displayName"`
	TotalHospitals     int    `json:"totalHospitals"`
	ActiveHospitals    int    `json:"activeHospitals"`
	SuspendedHospitals int    `json:"suspendedHospitals"`
	TotalDoctors       int    `json:"totalDoctors"`
	Error              string `json:"error,omitempty"`
	Retry              bool   `json:"retry,omitempty"`
}

type hospitalListView struct {
	View    string    `json:"view"`
	Table   tableView `json:"table"`
	Query   string    `json:"query"`
	City    string    `json:"city"`
	Cities  []string  `json:"cities"`
	Loading bool      `json:"loading"`
	Error   string    `json:"error,omitempty"`
	Retry   bool      `json:"retry,omitempty"`
}

type patientListView struct {
	View  string    `json:"view"`
	Table tableView `json:"table"`
	Query string    `json:"query"`
	Error string    `json:"error,omitempty"`
	Retry bool      `json:"retry,omitempty"`
}

type settingsView struct {
	View        string `json:"view"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type hospitalFormView struct {
	View        string               `json:"view"`
	Departments []gateway.Department `json:"departments"`
	Form        any                  `json:"form"`
	Errors      forms.FieldErrors    `json:"fieldErrors,omitempty"`
	Error       string               `json:"error,omitempty"`
	Retry       bool                 `json:"retry,omitempty"`
}

type submitResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// hospitalRow flattens a hospital into the grid's row shape.
func hospitalRow(h gateway.Hospital) table.Row {
	status := "Active"
	if h.Suspended {
		status = "Suspended"
	}
	onboarded := ""
	if h.CreatedAt != nil {
		onboarded = h.CreatedAt.Format("02 January 2006")
	}
	return table.Row{
		"id":        h.ID,
		"ohid":      h.OHID,
		"name":      h.Name,
		"logo":      h.LogoURL,
		"city":      h.Address.City,
		"state":     h.Address.State,
		"status":    status,
		"doctors":   h.DoctorCount,
		"onboarded": onboarded,
		"editUrl":   "/edithospital/" + h.ID,
	}
}

func patientRow(p gateway.Patient) table.Row {
	return table.Row{
		"id":           p.ID,
		"opid":         p.OPID,
		"name":         p.FirstName + " " + p.LastName,
		"age":          p.Age,
		"gender":       p.Gender,
		"phone":        p.Phone,
		"lastVisit":    p.LastVisit,
		"healthIssue":  p.PrimaryHealthIssue,
		"appointments": p.TotalAppointments,
	}
}

// pageParam parses the ?page= query parameter; zero means absent.
func pageParam(c echo.Context) int {
	raw := c.QueryParam("page")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// redirectUnauthenticated funnels an expired upstream session into the
// same redirect the route guard issues. Returns false when the error is
// something else.
func redirectUnauthenticated(c echo.Context, err error) (bool, error) {
	if errors.Is(err, gateway.ErrUnauthenticated) {
		return true, c.Redirect(http.StatusFound, guard.LoginPath)
	}
	return false, nil
}

func errorIsUnauthenticated(err error) bool {
	return errors.Is(err, gateway.ErrUnauthenticated)
}

// formFailure renders a non-validation submission failure.
func formFailure(c echo.Context, err error) error {
	if done, redirect := redirectUnauthenticated(c, err); done {
		return redirect
	}
	status := http.StatusBadGateway
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Kind == gateway.KindBusiness {
		status = http.StatusBadRequest
	}
	return c.JSON(status, map[string]any{
		"success": false,
		"error":   gateway.UserMessage(err),
	})
}

// confirmed reports whether the submission carried the confirmation
// acknowledgement from the review step.
func confirmed(c echo.Context) bool {
	return c.FormValue("confirmed") == "true"
}

func confirmationRequired(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]any{
		"success":         false,
		"confirmRequired": true,
		"error":           "Please confirm the submission",
	})
}
