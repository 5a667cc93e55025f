package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/chartkit/config"
	"github.com/spektr-org/chartkit/engine"
)

const carsCSV = `make,body,price,horsepower
audi,sedan,13950.5,102
audi,sedan,17450.0,115
bmw,sedan,16430.0,101
bmw,wagon,?,121
`

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			MaxUploadBytes: 1 << 20,
			MaxDatasets:    4,
			RequestTimeout: 5 * time.Second,
		},
		Layout: config.LayoutConfig{
			Width: 800, Height: 500,
			MarginTop: 20, MarginRight: 30, MarginBottom: 50, MarginLeft: 60,
			Bins: 10, MaxBins: 1000, TickCount: 10,
		},
	}
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func upload(t *testing.T, s *Server) uploadResponse {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/datasets?name=cars", carsCSV)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, want %d (body %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var resp uploadResponse
	decode(t, rec, &resp)
	return resp
}

func TestHealth(t *testing.T) {
	s := New(testConfig(), nil)
	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestUploadDiscoversAndSanitizes(t *testing.T) {
	s := New(testConfig(), nil)
	resp := upload(t, s)

	if resp.Total != 4 || resp.Kept != 3 || resp.Dropped != 1 {
		t.Errorf("upload = %+v, want total 4 kept 3 dropped 1", resp)
	}

	rec := do(t, s, http.MethodGet, "/api/datasets/"+resp.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", rec.Code, http.StatusOK)
	}
	var ds datasetResponse
	decode(t, rec, &ds)
	if ds.Name != "cars" {
		t.Errorf("Name = %q, want %q", ds.Name, "cars")
	}
	if got := ds.Catalog.NumericFields(); len(got) != 2 {
		t.Errorf("NumericFields() = %v, want price and horsepower", got)
	}
	if got := ds.Categories["make"]; !reflect.DeepEqual(got, []string{"audi", "bmw"}) {
		t.Errorf("Categories[make] = %v, want [audi bmw]", got)
	}
	if got := ds.Categories["body"]; !reflect.DeepEqual(got, []string{"sedan"}) {
		t.Errorf("Categories[body] = %v, want [sedan] (the wagon row was dropped)", got)
	}
}

func TestUploadErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxUploadBytes = 64
	s := New(cfg, nil)

	rec := do(t, s, http.MethodPost, "/api/datasets", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var er ErrorResponse
	decode(t, rec, &er)
	if er.Code != "acquisition_failed" {
		t.Errorf("Code = %q, want %q", er.Code, "acquisition_failed")
	}

	rec = do(t, s, http.MethodPost, "/api/datasets", carsCSV)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestSceneRetainsPreviousOnError(t *testing.T) {
	s := New(testConfig(), nil)
	id := upload(t, s).ID.String()
	base := "/api/datasets/" + id

	rec := do(t, s, http.MethodGet, base+"/scene?kind=bar&x=make&y=price", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("scene status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var good engine.Scene
	decode(t, rec, &good)
	if len(good.Primitives) != 2 {
		t.Fatalf("bar primitives = %d, want 2", len(good.Primitives))
	}

	// Swapped fields: categorical y is an invalid bar selection.
	for i := 0; i < 2; i++ {
		rec = do(t, s, http.MethodGet, base+"/scene?kind=bar&x=price&y=make", "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("invalid scene status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
		}
		var er ErrorResponse
		decode(t, rec, &er)
		if er.Code != "invalid_selection" {
			t.Errorf("Code = %q, want %q", er.Code, "invalid_selection")
		}
		if er.Previous == nil || len(er.Previous.Primitives) != 2 {
			t.Errorf("Previous = %+v, want the last valid bar scene", er.Previous)
		}
	}

	// No valid box scene yet, so nothing to fall back on.
	rec = do(t, s, http.MethodGet, base+"/scene?kind=box&x=price&y=make", "")
	var er ErrorResponse
	decode(t, rec, &er)
	if er.Previous != nil {
		t.Errorf("box Previous = %+v, want nil", er.Previous)
	}
}

func TestSceneParameters(t *testing.T) {
	s := New(testConfig(), nil)
	base := "/api/datasets/" + upload(t, s).ID.String()

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"histogram with bins", "/scene?kind=histogram&x=horsepower&bins=2", http.StatusOK},
		{"filtered scatter", "/scene?kind=scatter&x=horsepower&y=price&filter[make]=audi", http.StatusOK},
		{"unknown kind", "/scene?kind=pie&x=make&y=price", http.StatusBadRequest},
		{"bad width", "/scene?kind=bar&x=make&y=price&width=wide", http.StatusBadRequest},
		{"zero bins", "/scene?kind=histogram&x=price&bins=0", http.StatusBadRequest},
		{"too many bins", "/scene?kind=histogram&x=price&bins=2000000000", http.StatusBadRequest},
		{"bins at max", "/scene?kind=histogram&x=price&bins=1000", http.StatusOK},
		{"no plot area", "/scene?kind=bar&x=make&y=price&width=50", http.StatusUnprocessableEntity},
		{"filter removes all rows", "/scene?kind=scatter&x=horsepower&y=price&filter[make]=volvo", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, base+tt.query, "")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestSceneSVGAndTable(t *testing.T) {
	s := New(testConfig(), nil)
	base := "/api/datasets/" + upload(t, s).ID.String()

	rec := do(t, s, http.MethodGet, base+"/scene.svg?kind=box&x=make&y=price", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("svg status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body has no <svg> element")
	}

	rec = do(t, s, http.MethodGet, base+"/table?kind=bar&x=make&y=price", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("table status = %d, want %d", rec.Code, http.StatusOK)
	}
	var table engine.TableData
	decode(t, rec, &table)
	if len(table.Rows) != 2 {
		t.Errorf("table rows = %d, want 2", len(table.Rows))
	}
}

func TestDatasetLifecycle(t *testing.T) {
	s := New(testConfig(), nil)
	id := upload(t, s).ID.String()

	if rec := do(t, s, http.MethodDelete, "/api/datasets/"+id, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec := do(t, s, http.MethodGet, "/api/datasets/"+id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if rec := do(t, s, http.MethodGet, "/api/datasets/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := do(t, s, http.MethodGet, "/api/catalog", ""); rec.Code != http.StatusNotFound {
		t.Errorf("catalog status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestStoreEvictsOldest(t *testing.T) {
	st := NewStore(2)
	first := st.Add(&Session{})
	st.Add(&Session{})
	st.Add(&Session{})

	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
	if _, ok := st.Get(first); ok {
		t.Error("oldest session still present after eviction")
	}
	if st.Delete(uuid.New()) {
		t.Error("Delete(unknown) = true, want false")
	}
}
