package server

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/orbitcare/console/internal/config"
	"github.com/orbitcare/console/internal/gateway"
	"github.com/orbitcare/console/internal/search"
	"github.com/orbitcare/console/internal/table"
)

// cityAll is the sentinel filter value that disables city filtering.
const cityAll = "All"

var hospitalColumns = []table.Column{
	{Key: "name", Label: "Hospital Name"},
	{Key: "ohid", Label: "OHID"},
	{Key: "city", Label: "City"},
	{Key: "state", Label: "State"},
	{Key: "doctors", Label: "Doctors"},
	{Key: "onboarded", Label: "Onboarded On"},
	{Key: "status", Label: "Status"},
}

const (
	actionEdit    = "Edit"
	actionSuspend = "Suspend"
)

// hospitalList holds the hospital grid's per-session state: the current
// result set from the upstream, the debounced search pipeline feeding
// it, and the city filter applied on top.
type hospitalList struct {
	mu    sync.Mutex
	table *table.State
	deb   *search.Debouncer

	base    []table.Row
	query   string
	city    string
	lastErr error
	loaded  bool
	nav     string
}

func newHospitalList(gw *gateway.Client, cfg *config.Config) *hospitalList {
	l := &hospitalList{city: cityAll}

	actions := []table.Action{
		{Label: actionEdit, Icon: "pencil", OnClick: func(row table.Row) {
			if target, ok := row["editUrl"].(string); ok {
				l.nav = target
			}
		}},
		// Suspension toggles through the edit form; the row action is a
		// shortcut to the same place.
		{Label: actionSuspend, Icon: "ban", OnClick: func(row table.Row) {
			if target, ok := row["editUrl"].(string); ok {
				l.nav = target
			}
		}},
	}
	l.table = table.New(hospitalColumns,
		table.WithActions(actions),
		table.WithRowsPerPage(cfg.RowsPerPage),
	)

	src := search.SourceFuncs{
		ListAllFunc: func(ctx context.Context) ([]table.Row, error) {
			hs, _, err := gw.ListHospitals(ctx)
			return hospitalRows(hs), err
		},
		SearchFunc: func(ctx context.Context, query string) ([]table.Row, error) {
			hs, err := gw.SearchHospitalsByName(ctx, query)
			return hospitalRows(hs), err
		},
	}
	l.deb = search.New(src, l.apply, search.WithInterval(cfg.SearchDebounce()))
	return l
}

func hospitalRows(hs []gateway.Hospital) []table.Row {
	rows := make([]table.Row, 0, len(hs))
	for _, h := range hs {
		rows = append(rows, hospitalRow(h))
	}
	return rows
}

// apply receives a winning search result and rebuilds the grid.
func (l *hospitalList) apply(res search.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastErr = res.Err
	if res.Err != nil {
		return
	}
	l.base = res.Rows
	l.refilterLocked()
}

// refilterLocked reapplies the city filter over the base rows. Must be
// called with l.mu held.
func (l *hospitalList) refilterLocked() {
	if l.city == cityAll || l.city == "" {
		l.table.SetRows(l.base)
		return
	}
	filtered := make([]table.Row, 0, len(l.base))
	for _, row := range l.base {
		if city, _ := row["city"].(string); city == l.city {
			filtered = append(filtered, row)
		}
	}
	l.table.SetRows(filtered)
}

// setQuery routes a keystroke into the debouncer.
func (l *hospitalList) setQuery(q string) {
	l.mu.Lock()
	l.query = q
	l.loaded = true
	l.mu.Unlock()
	l.deb.Input(q)
}

// reload bypasses the debounce interval, for the first render and the
// retry affordance.
func (l *hospitalList) reload() {
	l.mu.Lock()
	q := l.query
	l.loaded = true
	l.mu.Unlock()
	l.deb.Reload(q)
}

func (l *hospitalList) setCity(city string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.city = city
	l.refilterLocked()
}

func (l *hospitalList) goToPage(page int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.table.GoToPage(page)
}

// activate dispatches a row action and returns the navigation target it
// selected, if any. index is relative to the current page.
func (l *hospitalList) activate(label string, index int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nav = ""
	if err := l.table.Activate(label, index); err != nil {
		return "", err
	}
	return l.nav, nil
}

// cities lists the distinct cities present in the current result set,
// headed by the catch-all option.
func (l *hospitalList) citiesLocked() []string {
	seen := make(map[string]struct{})
	for _, row := range l.base {
		if city, _ := row["city"].(string); city != "" {
			seen[city] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen)+1)
	for city := range seen {
		out = append(out, city)
	}
	sort.Strings(out)
	return append([]string{cityAll}, out...)
}

// snapshot renders the current grid state.
func (l *hospitalList) snapshot() hospitalListView {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := hospitalListView{
		View:    "hospitals",
		Table:   renderTable(l.table),
		Query:   l.query,
		City:    l.city,
		Cities:  l.citiesLocked(),
		Loading: l.deb.Loading(),
	}
	if l.lastErr != nil {
		v.Error = gateway.UserMessage(l.lastErr)
		v.Retry = true
	}
	return v
}

func (l *hospitalList) stop() {
	if l.deb != nil {
		l.deb.Stop()
	}
}

func (l *hospitalList) sessionExpired() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr != nil && errorIsUnauthenticated(l.lastErr)
}

// handleHospitalList serves the hospital grid. Query parameters steer
// the per-session controller: q feeds the debounced search, city the
// local filter, page the pager, and reload forces an immediate fetch.
func (s *Server) handleHospitalList(c echo.Context) error {
	l := s.listFor(c)

	if l.sessionExpired() {
		return c.Redirect(http.StatusFound, "/")
	}

	if city := c.QueryParam("city"); city != "" {
		l.setCity(city)
	}

	q, hasQuery := queryParamPresent(c, "q")
	switch {
	case c.QueryParam("reload") == "true":
		l.reload()
	case hasQuery:
		l.setQuery(q)
	default:
		l.mu.Lock()
		needsLoad := !l.loaded
		l.mu.Unlock()
		if needsLoad {
			l.reload()
		}
	}

	if page := pageParam(c); page > 0 {
		l.goToPage(page)
	}

	return c.JSON(http.StatusOK, l.snapshot())
}

// handleHospitalAction dispatches a row action click: action names the
// action, index the row within the current page. Navigation actions
// answer with the redirect target.
func (s *Server) handleHospitalAction(c echo.Context) error {
	l := s.listFor(c)

	index, err := strconv.Atoi(c.FormValue("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid row index",
		})
	}

	target, err := l.activate(c.FormValue("action"), index)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Unknown action or row",
		})
	}
	return c.JSON(http.StatusOK, submitResult{Success: true, Redirect: target})
}

func queryParamPresent(c echo.Context, name string) (string, bool) {
	values := c.QueryParams()
	if _, ok := values[name]; !ok {
		return "", false
	}
	return values.Get(name), true
}
