// Package table is the generic paginated list model behind every listing
// view. It slices a row collection into fixed-size pages, exposes the
// page-control state the view renders, and invokes caller-supplied row
// actions. The table has no opinion about what a row means or what an
// action does.
package table

import (
	"errors"
	"fmt"
)

// DefaultRowsPerPage is the page size every listing view uses.
const DefaultRowsPerPage = 10

// ErrUnknownAction is returned when an action label matches nothing.
var ErrUnknownAction = errors.New("unknown table action")

// Column describes one rendered column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Class string `json:"class,omitempty"`
}

// Row is one record; views read cells by column key.
type Row map[string]any

// Action is a caller-supplied per-row control.
type Action struct {
	Label   string
	Icon    string
	OnClick func(Row)
}

// State is the per-view table state. It is not safe for concurrent use;
// the owning view serializes access.
type State struct {
	columns     []Column
	actions     []Action
	rows        []Row
	page        int
	rowsPerPage int
}

// Option configures a new State.
type Option func(*State)

// WithActions attaches row actions.
func WithActions(actions []Action) Option {
	return func(s *State) { s.actions = actions }
}

// WithRowsPerPage overrides the default page size. Values < 1 are ignored.
func WithRowsPerPage(n int) Option {
	return func(s *State) {
		if n >= 1 {
			s.rowsPerPage = n
		}
	}
}

// New builds an empty table over the given columns.
func New(columns []Column, opts ...Option) *State {
	s := &State{
		columns:     columns,
		page:        1,
		rowsPerPage: DefaultRowsPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRows replaces the row collection. If the current page falls beyond
// the new page count (a search just shrank the results, say), the page is
// clamped to the last valid page rather than left dangling on an empty
// out-of-range slice.
func (s *State) SetRows(rows []Row) {
	s.rows = rows
	s.clampPage()
}

// SetRowsPerPage changes the page size, clamping the current page the
// same way SetRows does. Values < 1 are ignored.
func (s *State) SetRowsPerPage(n int) {
	if n < 1 {
		return
	}
	s.rowsPerPage = n
	s.clampPage()
}

func (s *State) clampPage() {
	if total := s.TotalPages(); s.page > total {
		s.page = total
	}
	if s.page < 1 {
		s.page = 1
	}
}

// GoToPage selects page n. Out-of-range requests are ignored, never an
// error.
func (s *State) GoToPage(n int) {
	if n < 1 || n > s.TotalPages() {
		return
	}
	s.page = n
}

// NextPage advances one page when possible.
func (s *State) NextPage() { s.GoToPage(s.page + 1) }

// PrevPage steps back one page when possible.
func (s *State) PrevPage() { s.GoToPage(s.page - 1) }

// Page returns the current 1-based page number.
func (s *State) Page() int { return s.page }

// RowsPerPage returns the page size.
func (s *State) RowsPerPage() int { return s.rowsPerPage }

// TotalPages returns ceil(len(rows) / rowsPerPage); 0 when there are no
// rows.
func (s *State) TotalPages() int {
	return (len(s.rows) + s.rowsPerPage - 1) / s.rowsPerPage
}

// TotalRows returns the size of the full row collection.
func (s *State) TotalRows() int { return len(s.rows) }

// VisibleRows returns the slice of rows for the current page.
func (s *State) VisibleRows() []Row {
	start := (s.page - 1) * s.rowsPerPage
	if start >= len(s.rows) {
		return nil
	}
	end := start + s.rowsPerPage
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[start:end]
}

// Empty reports whether the view should render the placeholder row.
func (s *State) Empty() bool { return len(s.rows) == 0 }

// EmptyColspan is how many columns the "No data found" placeholder spans:
// every column, plus the actions column when actions are present.
func (s *State) EmptyColspan() int {
	n := len(s.columns)
	if len(s.actions) > 0 {
		n++
	}
	return n
}

// HasPrev reports whether the previous-page control is enabled.
func (s *State) HasPrev() bool { return s.page > 1 }

// HasNext reports whether the next-page control is enabled.
func (s *State) HasNext() bool { return s.page < s.TotalPages() }

// PageNumbers returns one entry per page for the page-number controls.
func (s *State) PageNumbers() []int {
	total := s.TotalPages()
	nums := make([]int, total)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// Columns returns the column descriptors.
func (s *State) Columns() []Column { return s.columns }

// ActionLabels returns the labels of the attached actions, in order.
func (s *State) ActionLabels() []string {
	labels := make([]string, len(s.actions))
	for i, a := range s.actions {
		labels[i] = a.Label
	}
	return labels
}

// Activate invokes the named action with the full row at index (relative
// to the current page's visible rows).
func (s *State) Activate(label string, index int) error {
	visible := s.VisibleRows()
	if index < 0 || index >= len(visible) {
		return fmt.Errorf("row index %d out of range", index)
	}
	for _, a := range s.actions {
		if a.Label == label {
			if a.OnClick != nil {
				a.OnClick(visible[index])
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, label)
}
