package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/journeyline/journeyline/pkg/buildinfo"
	apperr "github.com/journeyline/journeyline/pkg/errors"
	"github.com/journeyline/journeyline/pkg/graph"
	"github.com/journeyline/journeyline/pkg/pipeline"
	"github.com/journeyline/journeyline/pkg/render/flow"
	"github.com/journeyline/journeyline/pkg/render/position"
	"github.com/journeyline/journeyline/pkg/store"
	"github.com/journeyline/journeyline/pkg/timeline"
	"github.com/journeyline/journeyline/pkg/timeline/transform"
)

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

// =============================================================================
// Nodes
// =============================================================================

type nodesResponse struct {
	Records []timeline.Record `json:"records"`
}

// CreateRequest is the body of POST /nodes. Insertion, when present,
// decides the parent of the new record and overrides Record.ParentID.
type CreateRequest struct {
	Record    timeline.Record `json:"record"`
	Insertion *flow.Contract  `json:"insertion,omitempty"`
}

type deleteResponse struct {
	Deleted int `json:"deleted"`
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context(), chi.URLParam(r, "user"))
	if err != nil {
		writeError(w, storeUnavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, nodesResponse{Records: recs})
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "user"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, storeUnavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := chi.URLParam(r, "user")

	var req CreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rec := req.Record
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := apperr.ValidateNodeID(rec.ID); err != nil {
		writeError(w, err)
		return
	}

	existing, err := s.store.List(ctx, user)
	if err != nil {
		writeError(w, storeUnavailable(err))
		return
	}
	for _, e := range existing {
		if e.ID == rec.ID {
			writeError(w, apperr.New(apperr.ErrCodeDuplicateNode, "node %s already exists", rec.ID))
			return
		}
	}

	if req.Insertion != nil {
		parent, err := resolveInsertion(existing, *req.Insertion)
		if err != nil {
			writeError(w, err)
			return
		}
		rec.ParentID = parent
	}

	if err := checkHierarchy(existing, rec); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Upsert(ctx, user, rec); err != nil {
		writeError(w, storeUnavailable(err))
		return
	}
	s.invalidate(r, user)

	w.Header().Set("Location", r.URL.Path+"/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleReplaceNode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, id := chi.URLParam(r, "user"), chi.URLParam(r, "id")

	var rec timeline.Record
	if err := decodeBody(r, &rec); err != nil {
		writeError(w, err)
		return
	}
	if rec.ID != "" && rec.ID != id {
		writeError(w, invalid("body id %q does not match path id %q", rec.ID, id))
		return
	}
	rec.ID = id

	existing, err := s.store.List(ctx, user)
	if err != nil {
		writeError(w, storeUnavailable(err))
		return
	}
	kept := existing[:0:0]
	found := false
	for _, e := range existing {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		writeError(w, store.ErrNotFound)
		return
	}

	if err := checkHierarchy(kept, rec); err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Upsert(ctx, user, rec); err != nil {
		writeError(w, storeUnavailable(err))
		return
	}
	s.invalidate(r, user)
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	n, err := s.store.Delete(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, storeUnavailable(err))
		return
	}
	s.invalidate(r, user)
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: n})
}

func (s *Server) invalidate(r *http.Request, user string) {
	if err := s.runner.ForUser(user).InvalidateRecords(r.Context(), user); err != nil {
		s.logger.Warn("invalidate records cache", "user", user, "err", err)
	}
}

// resolveInsertion returns the parent id an insertion contract places a
// new record under.
func resolveInsertion(existing []timeline.Record, c flow.Contract) (string, error) {
	ins, err := flow.ParseContract(c)
	if err != nil {
		return "", err
	}
	forest, err := transform.Normalize(existing)
	if err != nil {
		return "", err
	}
	return flow.Placement(ins, flow.ForestLookup(forest.Roots))
}

// checkHierarchy verifies that adding rec keeps the record set a forest.
func checkHierarchy(existing []timeline.Record, rec timeline.Record) error {
	all := append(existing[:len(existing):len(existing)], rec)
	_, err := transform.Normalize(all)
	return err
}

// storeUnavailable marks unexpected store failures. Not-found and
// validation errors pass through to keep their codes.
func storeUnavailable(err error) error {
	if errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, timeline.ErrInvalidNodeID) ||
		errors.Is(err, timeline.ErrCyclicHierarchy) {
		return err
	}
	return apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "store")
}

// =============================================================================
// Timeline
// =============================================================================

var supportedFormats = []string{graph.FormatJSON, graph.FormatDOT, graph.FormatSVG}

var contentTypes = map[string]string{
	graph.FormatJSON: "application/json",
	graph.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	graph.FormatSVG:  "image/svg+xml",
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	opts, format, err := s.timelineOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runner.ForUser(opts.UserID).Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	cacheStatus := "miss"
	if res.CacheInfo.LayoutHit {
		cacheStatus = "hit"
	}
	w.Header().Set("X-Layout-Cache", cacheStatus)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// timelineOptions builds pipeline options from query parameters:
//
//	expanded=a,b  expandAll=true  focus=id  selected=id  highlighted=id
//	blur=all|root  orientation=horizontal|vertical  alignment=start|center
//	format=json|dot|svg  detailed=true  refresh=true
func (s *Server) timelineOptions(r *http.Request) (pipeline.Options, string, error) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = graph.FormatJSON
	}
	if err := apperr.ValidateFormat(format, supportedFormats); err != nil {
		return pipeline.Options{}, "", err
	}

	layout := s.layout
	if o := q.Get("orientation"); o != "" {
		layout.Orientation = position.Orientation(o)
	}
	if a := q.Get("alignment"); a != "" {
		layout.Alignment = position.Alignment(a)
	}

	blur := flow.BlurScope(q.Get("blur"))
	if blur != "" {
		if err := pipeline.ValidateBlurScope(blur); err != nil {
			return pipeline.Options{}, "", invalid("%v", err)
		}
	}

	opts := pipeline.Options{
		UserID:        chi.URLParam(r, "user"),
		Expanded:      splitList(q.Get("expanded")),
		FocusedID:     q.Get("focus"),
		SelectedID:    q.Get("selected"),
		HighlightedID: q.Get("highlighted"),
		BlurScope:     blur,
		Layout:        layout,
		Formats:       []string{format},
		Logger:        s.logger,
	}

	var err error
	if opts.ExpandAll, err = boolParam(q.Get("expandAll")); err != nil {
		return pipeline.Options{}, "", err
	}
	if opts.Detailed, err = boolParam(q.Get("detailed")); err != nil {
		return pipeline.Options{}, "", err
	}
	if opts.Refresh, err = boolParam(q.Get("refresh")); err != nil {
		return pipeline.Options{}, "", err
	}
	return opts, format, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func boolParam(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, invalid("invalid boolean %q", s)
	}
	return b, nil
}
