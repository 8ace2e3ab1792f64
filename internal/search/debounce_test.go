package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/orbitcare/console/internal/table"
)

const testInterval = 20 * time.Millisecond

// recordingSource counts calls and can block individual queries until
// released, to order responses out of issue order.
type recordingSource struct {
	mu       sync.Mutex
	listAll  int
	searches []string
	blocked  map[string]chan struct{}
}

func newRecordingSource() *recordingSource {
	return &recordingSource{blocked: make(map[string]chan struct{})}
}

func (s *recordingSource) block(query string) chan struct{} {
	ch := make(chan struct{})
	s.mu.Lock()
	s.blocked[query] = ch
	s.mu.Unlock()
	return ch
}

func (s *recordingSource) ListAll(context.Context) ([]table.Row, error) {
	s.mu.Lock()
	s.listAll++
	s.mu.Unlock()
	return []table.Row{{"name": "all"}}, nil
}

func (s *recordingSource) Search(_ context.Context, query string) ([]table.Row, error) {
	s.mu.Lock()
	s.searches = append(s.searches, query)
	gate := s.blocked[query]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return []table.Row{{"name": query}}, nil
}

func (s *recordingSource) counts() (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listAll, append([]string(nil), s.searches...)
}

func collect() (ApplyFunc, chan Result) {
	ch := make(chan Result, 16)
	return func(r Result) { ch <- r }, ch
}

func waitResult(t *testing.T, ch chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a result")
		return Result{}
	}
}

func assertNoMoreResults(t *testing.T, ch chan Result) {
	t.Helper()
	select {
	case r := <-ch:
		t.Fatalf("unexpected extra result for query %q", r.Query)
	case <-time.After(4 * testInterval):
	}
}

func TestRapidKeystrokes_OneRequestForFinalQuery(t *testing.T) {
	src := newRecordingSource()
	apply, results := collect()
	d := New(src, apply, WithInterval(testInterval))
	defer d.Stop()

	d.Input("a")
	d.Input("ap")
	d.Input("apollo")

	r := waitResult(t, results)
	if r.Query != "apollo" {
		t.Errorf("applied query = %q, want apollo", r.Query)
	}

	listAll, searches := src.counts()
	if listAll != 0 {
		t.Errorf("ListAll called %d times, want 0", listAll)
	}
	if len(searches) != 1 || searches[0] != "apollo" {
		t.Errorf("searches = %v, want exactly [apollo]", searches)
	}
	assertNoMoreResults(t, results)
}

func TestFinalEmptyQuery_FallsBackToListing(t *testing.T) {
	src := newRecordingSource()
	apply, results := collect()
	d := New(src, apply, WithInterval(testInterval))
	defer d.Stop()

	d.Input("apo")
	d.Input("")

	r := waitResult(t, results)
	if r.Query != "" {
		t.Errorf("applied query = %q, want empty", r.Query)
	}

	listAll, searches := src.counts()
	if listAll != 1 {
		t.Errorf("ListAll called %d times, want 1", listAll)
	}
	if len(searches) != 0 {
		t.Errorf("searches = %v, want none for the superseded query", searches)
	}
}

func TestWhitespaceQuery_TreatedAsEmpty(t *testing.T) {
	src := newRecordingSource()
	apply, results := collect()
	d := New(src, apply, WithInterval(testInterval))
	defer d.Stop()

	d.Input("   ")

	r := waitResult(t, results)
	if r.Query != "" {
		t.Errorf("applied query = %q, want empty", r.Query)
	}
	listAll, _ := src.counts()
	if listAll != 1 {
		t.Errorf("ListAll called %d times, want 1", listAll)
	}
}

func TestStaleResponse_NeverOverwritesNewerResult(t *testing.T) {
	src := newRecordingSource()
	gate := src.block("old")
	apply, results := collect()
	d := New(src, apply, WithInterval(testInterval))
	defer d.Stop()

	d.Reload("old") // request 1, held in flight
	d.Reload("new") // request 2, returns immediately

	r := waitResult(t, results)
	if r.Query != "new" {
		t.Fatalf("first applied query = %q, want new", r.Query)
	}

	close(gate) // old response finally arrives, after new
	assertNoMoreResults(t, results)
}

func TestLoading_WhileRequestOutstanding(t *testing.T) {
	src := newRecordingSource()
	gate := src.block("slow")
	apply, results := collect()
	d := New(src, apply, WithInterval(testInterval))
	defer d.Stop()

	d.Reload("slow")

	deadline := time.Now().Add(time.Second)
	for !d.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("Loading never became true")
		}
		time.Sleep(time.Millisecond)
	}

	close(gate)
	waitResult(t, results)
	if d.Loading() {
		t.Error("Loading still true after the request settled")
	}
}

func TestSearchError_DeliveredToApply(t *testing.T) {
	wantErr := errors.New("upstream down")
	src := SourceFuncs{
		ListAllFunc: func(context.Context) ([]table.Row, error) { return nil, wantErr },
		SearchFunc:  func(context.Context, string) ([]table.Row, error) { return nil, wantErr },
	}
	apply, results := collect()
	d := New(src, apply, WithInterval(testInterval))
	defer d.Stop()

	d.Reload("")
	r := waitResult(t, results)
	if !errors.Is(r.Err, wantErr) {
		t.Errorf("result error = %v, want %v", r.Err, wantErr)
	}
}

func TestApply_MayCallBackIntoDebouncer(t *testing.T) {
	src := newRecordingSource()
	var d *Debouncer
	loadingDuringApply := make(chan bool, 1)
	d = New(src, func(Result) {
		loadingDuringApply <- d.Loading()
	}, WithInterval(testInterval))
	defer d.Stop()

	d.Reload("")

	select {
	case loading := <-loadingDuringApply:
		if loading {
			t.Error("Loading true while its own result is being applied")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("apply never ran; callback blocked on the debouncer lock")
	}
}

func TestSnapshotDuringDelivery_DoesNotDeadlock(t *testing.T) {
	// The hospital view applies results under its own lock and, on every
	// request, holds that lock while reading Loading. Delivery must not
	// hold the debouncer lock or the two orders deadlock.
	type view struct {
		mu   sync.Mutex
		rows []table.Row
	}
	v := &view{}
	src := newRecordingSource()
	gate := src.block("slow")

	var d *Debouncer
	applied := make(chan struct{})
	d = New(src, func(r Result) {
		v.mu.Lock()
		v.rows = r.Rows
		v.mu.Unlock()
		close(applied)
	}, WithInterval(testInterval))
	defer d.Stop()

	d.Reload("slow")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			v.mu.Lock()
			d.Loading()
			v.mu.Unlock()
			select {
			case <-applied:
				return
			default:
			}
		}
	}()

	close(gate)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot loop and result delivery deadlocked")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.rows) != 1 || v.rows[0]["name"] != "slow" {
		t.Errorf("rows = %v, want the slow query's result applied", v.rows)
	}
}

func TestStop_DiscardsPendingTimer(t *testing.T) {
	src := newRecordingSource()
	apply, results := collect()
	d := New(src, apply, WithInterval(testInterval))

	d.Input("abandoned")
	d.Stop()

	assertNoMoreResults(t, results)
	_, searches := src.counts()
	if len(searches) != 0 {
		t.Errorf("searches = %v, want none after Stop", searches)
	}
}
