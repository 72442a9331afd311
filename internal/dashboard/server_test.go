package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"collisions/internal/analytics"
)

// fakeStore returns a fixed overview and records the last filter.
type fakeStore struct {
	ov     analytics.Overview
	err    error
	lastF  analytics.Filter
	called int
}

func (f *fakeStore) Overview(_ context.Context, fl analytics.Filter) (analytics.Overview, error) {
	f.called++
	f.lastF = fl
	return f.ov, f.err
}

func sampleOverview() analytics.Overview {
	b := "BROOKLYN"
	return analytics.Overview{
		Totals: analytics.Totals{Collisions: 12, PersonsInjured: 5},
		Boroughs: []analytics.BoroughStat{
			{Borough: "BROOKLYN", Collisions: 8, Injured: 3},
			{Borough: "(unknown)", Collisions: 4, Injured: 2},
		},
		TopFactors: []analytics.FactorStat{{Factor: "Unsafe Speed", Collisions: 6}},
		Recent: []analytics.Crash{
			{CollisionID: 2, Borough: &b, Injured: 1},
		},
	}
}

func TestIndexRendersOverview(t *testing.T) {
	t.Parallel()

	store := &fakeStore{ov: sampleOverview()}
	srv := NewServer(Config{}, store)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"BROOKLYN", "Unsafe Speed", "(unknown)"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestIndexParsesFilterParams(t *testing.T) {
	t.Parallel()

	store := &fakeStore{ov: sampleOverview()}
	srv := NewServer(Config{}, store)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?from=2023-01-01&to=2023-12-31&borough=3", nil)
	srv.Handler().ServeHTTP(rr, req)

	f := store.lastF
	if f.From == nil || f.From.Format("2006-01-02") != "2023-01-01" {
		t.Errorf("From = %v", f.From)
	}
	if f.To == nil || f.To.Format("2006-01-02") != "2023-12-31" {
		t.Errorf("To = %v", f.To)
	}
	if f.BoroughID == nil || *f.BoroughID != 3 {
		t.Errorf("BoroughID = %v", f.BoroughID)
	}
}

func TestIndexIgnoresBadFilterParams(t *testing.T) {
	t.Parallel()

	store := &fakeStore{ov: sampleOverview()}
	srv := NewServer(Config{}, store)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?from=yesterday&borough=brooklyn", nil)
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if store.lastF.From != nil || store.lastF.BoroughID != nil {
		t.Errorf("bad params parsed: %+v", store.lastF)
	}
}

func TestAPIOverviewReturnsJSON(t *testing.T) {
	t.Parallel()

	store := &fakeStore{ov: sampleOverview()}
	srv := NewServer(Config{}, store)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/overview", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var ov analytics.Overview
	if err := json.NewDecoder(rr.Body).Decode(&ov); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ov.Totals.Collisions != 12 {
		t.Errorf("Collisions = %d", ov.Totals.Collisions)
	}
}

func TestOverviewErrorIs500(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: fmt.Errorf("db down")}
	srv := NewServer(Config{}, store)

	for _, path := range []string{"/", "/api/overview"} {
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("%s status = %d, want 500", path, rr.Code)
		}
	}
}

func TestUnknownPathIs404(t *testing.T) {
	t.Parallel()

	srv := NewServer(Config{}, &fakeStore{ov: sampleOverview()})
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}
