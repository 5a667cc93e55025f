package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spektr-org/chartkit/config"
	"github.com/spektr-org/chartkit/engine"
	"github.com/spektr-org/chartkit/logging"
	"github.com/spektr-org/chartkit/render"
	"github.com/spektr-org/chartkit/schema"
	"github.com/spektr-org/chartkit/source"
)

type uploadResponse struct {
	ID      uuid.UUID `json:"id"`
	Total   int       `json:"total"`
	Kept    int       `json:"kept"`
	Dropped int       `json:"dropped"`
}

type datasetResponse struct {
	ID         uuid.UUID            `json:"id"`
	Name       string               `json:"name,omitempty"`
	Created    time.Time            `json:"created"`
	Stats      engine.SanitizeStats `json:"stats"`
	Catalog    *schema.Config       `json:"catalog"`
	Categories map[string][]string  `json:"categories"` // kept values per dimension
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "datasets": s.store.Len()})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeJSONStatus(w, http.StatusNotFound, ErrorResponse{
			Error: "no catalog configured; each dataset carries a discovered catalog",
			Code:  "not_found",
		})
		return
	}
	writeJSON(w, s.catalog)
}

// ── Datasets ──────────────────────────────────────────────────────────────

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, r, fmt.Errorf("%w: body exceeds %d bytes", engine.ErrAcquisition, tooBig.Limit),
				http.StatusRequestEntityTooLarge, nil)
			return
		}
		respondError(w, r, fmt.Errorf("%w: read body: %v", engine.ErrAcquisition, err), http.StatusBadRequest, nil)
		return
	}

	records, keys, err := source.ReadCSV(bytes.NewReader(data))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest, nil)
		return
	}

	catalog := s.catalog
	if catalog == nil {
		catalog, err = schema.DiscoverFromCSV(data)
		if err != nil {
			respondError(w, r, fmt.Errorf("%w: %v", engine.ErrAcquisition, err), http.StatusBadRequest, nil)
			return
		}
	}
	if err := source.CheckColumns(keys, catalog); err != nil {
		respondError(w, r, err, http.StatusBadRequest, nil)
		return
	}

	ds, stats := source.Sanitize(records, catalog)
	id := s.store.Add(&Session{
		Name:    r.URL.Query().Get("name"),
		Catalog: catalog,
		Data:    ds,
		Stats:   stats,
	})

	logging.WithFields(r.Context(), "dataset", id).Info("dataset stored",
		"total", stats.Total, "kept", stats.Kept, "dropped", stats.Dropped)

	writeJSONStatus(w, http.StatusCreated, uploadResponse{
		ID:      id,
		Total:   stats.Total,
		Kept:    stats.Kept,
		Dropped: stats.Dropped,
	})
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	categories := make(map[string][]string, len(sess.Catalog.Dimensions))
	for _, dim := range sess.Catalog.CategoricalFields() {
		categories[dim] = engine.UniqueValues(sess.Data, dim)
	}
	writeJSON(w, datasetResponse{
		ID:         sess.ID,
		Name:       sess.Name,
		Created:    sess.Created,
		Stats:      sess.Stats,
		Catalog:    sess.Catalog,
		Categories: categories,
	})
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{Error: "invalid dataset id", Code: "bad_request"})
		return
	}
	if !s.store.Delete(id) {
		writeJSONStatus(w, http.StatusNotFound, ErrorResponse{Error: "dataset not found", Code: "not_found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the {id} URL parameter, writing 400/404 when it can't.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{Error: "invalid dataset id", Code: "bad_request"})
		return nil, false
	}
	sess, ok := s.store.Get(id)
	if !ok {
		writeJSONStatus(w, http.StatusNotFound, ErrorResponse{Error: "dataset not found", Code: "not_found"})
		return nil, false
	}
	return sess, true
}

// ── Scenes ────────────────────────────────────────────────────────────────

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	scene, ok := s.layout(w, r)
	if !ok {
		return
	}
	writeJSON(w, scene)
}

func (s *Server) handleSceneSVG(w http.ResponseWriter, r *http.Request) {
	scene, ok := s.layout(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.WriteSVG(w, scene); err != nil {
		logging.FromContext(r.Context()).Error("svg write failed", "error", err)
	}
}

// layout runs one layout pass. On failure it answers 422 with the last
// valid scene for that chart kind, which stays in place.
func (s *Server) layout(w http.ResponseWriter, r *http.Request) (*engine.Scene, bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return nil, false
	}
	req, err := parseSceneRequest(r, s.cfg.Layout, sess.Catalog)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest, nil)
		return nil, false
	}

	scene, err := engine.Layout(req.kind, sess.Data, req.sel, req.layout, req.opts...)
	if err != nil {
		respondError(w, r, err, http.StatusUnprocessableEntity, s.store.Previous(sess, req.kind))
		return nil, false
	}
	s.store.Remember(sess, req.kind, scene)
	return scene, true
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	req, err := parseSceneRequest(r, s.cfg.Layout, sess.Catalog)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest, nil)
		return
	}
	table, err := engine.BuildTable(req.kind, sess.Data, req.sel, req.opts...)
	if err != nil {
		respondError(w, r, err, http.StatusUnprocessableEntity, nil)
		return
	}
	writeJSON(w, table)
}

// ── Request parsing ───────────────────────────────────────────────────────

type sceneRequest struct {
	kind   engine.ChartKind
	sel    engine.Selection
	layout engine.LayoutConfig
	opts   []engine.Option
}

// parseSceneRequest reads kind, x, y, width, height, bins and filter[field]
// query parameters. Layout defaults come from the server config and titles
// from the dataset's catalog.
func parseSceneRequest(r *http.Request, defaults config.LayoutConfig, catalog *schema.Config) (*sceneRequest, error) {
	q := r.URL.Query()
	kind, err := engine.ParseChartKind(q.Get("kind"))
	if err != nil {
		return nil, err
	}

	req := &sceneRequest{
		kind:   kind,
		sel:    engine.Selection{X: schema.FieldKey(q.Get("x")), Y: schema.FieldKey(q.Get("y"))},
		layout: defaults.Engine(),
		opts: []engine.Option{
			engine.WithThresholds(defaults.Bins),
			engine.WithTickCount(defaults.TickCount),
			engine.WithLabels(catalog.DisplayName),
		},
	}

	if v := q.Get("width"); v != "" {
		if req.layout.Width, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%w: width %q", errBadParam, v)
		}
	}
	if v := q.Get("height"); v != "" {
		if req.layout.Height, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("%w: height %q", errBadParam, v)
		}
	}
	if v := q.Get("bins"); v != "" {
		bins, err := strconv.Atoi(v)
		if err != nil || bins < 1 || bins > defaults.MaxBins {
			return nil, fmt.Errorf("%w: bins %q must be 1-%d", errBadParam, v, defaults.MaxBins)
		}
		req.opts = append(req.opts, engine.WithThresholds(bins))
	}
	if f := parseFilters(r); !f.IsEmpty() {
		req.opts = append(req.opts, engine.WithFilters(f))
	}
	return req, nil
}

// parseFilters collects filter[field]=a,b query parameters.
func parseFilters(r *http.Request) engine.Filters {
	f := engine.Filters{Dimensions: make(map[string][]string)}
	for key, values := range r.URL.Query() {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		field := schema.FieldKey(key[7 : len(key)-1])
		if field == "" {
			continue
		}
		for _, v := range values {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					f.Dimensions[field] = append(f.Dimensions[field], part)
				}
			}
		}
	}
	return f
}
