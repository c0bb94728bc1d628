package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/callout/pkg/buildinfo"
	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/pipeline"
	"github.com/matzehuels/callout/pkg/placement"
	"github.com/matzehuels/callout/pkg/scene"
	"github.com/matzehuels/callout/pkg/store"
)

// DefaultListLimit caps GET /v1/scenes when no limit is given.
const DefaultListLimit = 50

// PlaceRequest is the body of POST /v1/place. At most one of Align and
// AlignPercent may be set; neither means centred.
type PlaceRequest struct {
	Target       geom.Rect  `json:"target"`
	Box          geom.Rect  `json:"box"`
	Arrow        geom.Rect  `json:"arrow"`
	Boundary     *geom.Rect `json:"boundary,omitempty"`
	Side         string     `json:"side"`
	Align        *float64   `json:"align,omitempty"`
	AlignPercent *float64   `json:"align_percent,omitempty"`
}

// Input converts the request to a placement input.
func (p PlaceRequest) Input() (placement.Input, error) {
	side, err := placement.ParseSide(p.Side)
	if err != nil {
		return placement.Input{}, err
	}
	if p.Align != nil && p.AlignPercent != nil {
		return placement.Input{}, errors.New(errors.ErrCodeInvalidAlign, "align and align_percent are mutually exclusive")
	}
	align := (scene.Callout{Align: p.Align, AlignPercent: p.AlignPercent}).Alignment()
	return placement.Input{
		Target:   p.Target,
		Box:      p.Box,
		Arrow:    p.Arrow,
		Boundary: p.Boundary,
		Side:     side,
		Align:    align,
	}, nil
}

// Place validates the request and computes the placement.
func (p PlaceRequest) Place() (*PlaceResponse, error) {
	in, err := p.Input()
	if err != nil {
		return nil, err
	}
	res, err := placement.Place(in)
	if err != nil {
		return nil, err
	}
	return &PlaceResponse{
		Result:    res,
		BoxRect:   res.BoxRect(in.Box),
		ArrowBase: res.ArrowBase(in.Box),
	}, nil
}

// PlaceResponse is the body returned by POST /v1/place.
type PlaceResponse struct {
	placement.Result
	BoxRect   geom.Rect  `json:"box_rect"`
	ArrowBase geom.Point `json:"arrow_base"`
}

// SceneResponse describes a stored scene.
type SceneResponse struct {
	ID        string       `json:"id"`
	Scene     *scene.Scene `json:"scene,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req PlaceRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := req.Place()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sc, err := s.decodeScene(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, sc)
}

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]SceneResponse, len(recs))
	for i, rec := range recs {
		out[i] = SceneResponse{ID: rec.ID, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	sc, err := s.decodeScene(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec := store.NewRecord(sc)
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("stored scene", "id", rec.ID, "name", sc.Name, "callouts", len(sc.Callouts))
	w.Header().Set("Location", "/v1/scenes/"+rec.ID)
	writeJSON(w, http.StatusCreated, sceneResponse(rec))
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sceneResponse(rec))
}

func (s *Server) handlePutScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID("scene", id); err != nil {
		s.writeError(w, r, err)
		return
	}
	sc, err := s.decodeScene(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	now := time.Now().UTC()
	rec := &store.Record{ID: id, Scene: sc, CreatedAt: now, UpdatedAt: now}
	if err := s.store.Put(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	stored, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sceneResponse(stored))
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID("scene", id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderScene(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, rec.Scene)
}

// render runs the pipeline for a single format taken from the query.
func (s *Server) render(w http.ResponseWriter, r *http.Request, sc *scene.Scene) {
	opts, err := renderOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), sc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("X-Scene-Hash", res.SceneHash)
	w.Header().Set("X-Cache", cacheStatus(res.CacheInfo))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// renderOptions reads format, steps, measurer, live, graphviz, labels and
// scale from the query string.
func renderOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts := pipeline.Options{
		Formats:  []string{format},
		Measurer: q.Get("measurer"),
		Live:     queryBool(q.Get("live")),
		Graphviz: queryBool(q.Get("graphviz")),
		Labels:   queryBool(q.Get("labels")),
		Refresh:  queryBool(q.Get("refresh")),
	}
	if v := q.Get("steps"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid steps %q", v)
		}
		opts.Steps = n
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v)
		}
		opts.Scale = f
	}
	return opts, nil
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func cacheStatus(ci pipeline.CacheInfo) string {
	switch {
	case ci.RenderHit:
		return "hit"
	case ci.LayoutHit:
		return "layout"
	}
	return "miss"
}

func (s *Server) lookup(r *http.Request) (*store.Record, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID("scene", id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}

func sceneResponse(rec *store.Record) SceneResponse {
	return SceneResponse{ID: rec.ID, Scene: rec.Scene, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
}

// decodeScene reads a scene body; TOML when the content type says so,
// JSON otherwise.
func (s *Server) decodeScene(w http.ResponseWriter, r *http.Request) (*scene.Scene, error) {
	format := scene.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "toml") {
		format = scene.FormatTOML
	}
	return scene.Decode(http.MaxBytesReader(w, r.Body, s.maxBody), format)
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}
