package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	apperr "github.com/journeyline/journeyline/pkg/errors"
	"github.com/journeyline/journeyline/pkg/graph"
	"github.com/journeyline/journeyline/pkg/pipeline"
	"github.com/journeyline/journeyline/pkg/render/position"
	"github.com/journeyline/journeyline/pkg/store"
	"github.com/journeyline/journeyline/pkg/timeline"
)

const user = "ada"

func newTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()
	seed := []timeline.Record{
		{ID: "acme", Type: "job", Meta: timeline.Meta{"title": "Acme", "startDate": "2022-01"}},
		{ID: "api", ParentID: "acme", Type: "project", Meta: timeline.Meta{"title": "API", "startDate": "2022-03"}},
		{ID: "uni", Type: "education", Meta: timeline.Meta{"title": "BSc", "startDate": "2017"}},
	}
	for _, r := range seed {
		if err := st.Upsert(ctx, user, r); err != nil {
			t.Fatalf("seed %s: %v", r.ID, err)
		}
	}

	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger).WithStore(st)
	srv := httptest.NewServer(New(runner, st, position.DefaultConfig(), logger).Handler())
	t.Cleanup(srv.Close)
	return srv, st
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func errorCode(t *testing.T, resp *http.Response) apperr.Code {
	t.Helper()
	return decode[errorBody](t, resp).Error.Code
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
}

func TestListAndGetNodes(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/v1/users/" + user + "/nodes"

	resp := do(t, http.MethodGet, base, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	if got := decode[nodesResponse](t, resp); len(got.Records) != 3 {
		t.Errorf("records = %d, want 3", len(got.Records))
	}

	resp = do(t, http.MethodGet, base+"/api", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if rec := decode[timeline.Record](t, resp); rec.ParentID != "acme" {
		t.Errorf("parent = %q, want acme", rec.ParentID)
	}

	resp = do(t, http.MethodGet, base+"/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != apperr.ErrCodeNodeNotFound {
		t.Errorf("code = %s", code)
	}
}

func TestCreateNode(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   apperr.Code
		wantParent string
	}{
		{
			name:       "Root",
			body:       CreateRequest{Record: timeline.Record{ID: "new", Type: "job"}},
			wantStatus: http.StatusCreated,
		},
		{
			name: "ChildInsertion",
			body: map[string]any{
				"record":    map[string]any{"id": "cli", "type": "project"},
				"insertion": map[string]any{"insertionPoint": "child", "parentNode": map[string]any{"id": "acme"}},
			},
			wantStatus: http.StatusCreated,
			wantParent: "acme",
		},
		{
			name: "BetweenInsertion",
			body: map[string]any{
				"record": map[string]any{"id": "gap", "type": "job"},
				"insertion": map[string]any{
					"insertionPoint": "between",
					"parentNode":     map[string]any{"id": "uni"},
					"targetNode":     map[string]any{"id": "acme"},
				},
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "AfterNestedTarget",
			body: map[string]any{
				"record":    map[string]any{"id": "web", "type": "project"},
				"insertion": map[string]any{"insertionPoint": "after", "targetNode": map[string]any{"id": "api"}},
			},
			wantStatus: http.StatusCreated,
			wantParent: "acme",
		},
		{
			name:       "Duplicate",
			body:       CreateRequest{Record: timeline.Record{ID: "acme"}},
			wantStatus: http.StatusConflict,
			wantCode:   apperr.ErrCodeDuplicateNode,
		},
		{
			name:       "UnknownParent",
			body:       CreateRequest{Record: timeline.Record{ID: "x", ParentID: "nope"}},
			wantStatus: http.StatusCreated,
			wantParent: "nope",
		},
		{
			name:       "SelfParent",
			body:       CreateRequest{Record: timeline.Record{ID: "x", ParentID: "x"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperr.ErrCodeInvalidHierarchy,
		},
		{
			name: "InvalidInsertion",
			body: map[string]any{
				"record":    map[string]any{"id": "y"},
				"insertion": map[string]any{"insertionPoint": "child"},
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.ErrCodeInvalidInsertion,
		},
		{
			name: "InsertionMissingTarget",
			body: map[string]any{
				"record":    map[string]any{"id": "y"},
				"insertion": map[string]any{"insertionPoint": "before", "targetNode": map[string]any{"id": "ghost"}},
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.ErrCodeInvalidInsertion,
		},
		{
			name:       "UnknownField",
			body:       map[string]any{"record": map[string]any{"id": "z"}, "bogus": true},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.ErrCodeInvalidInput,
		},
		{
			name:       "BadID",
			body:       CreateRequest{Record: timeline.Record{ID: "a/b"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.ErrCodeInvalidInput,
		},
		{
			name:       "ReservedID",
			body:       CreateRequest{Record: timeline.Record{ID: "affordance:root-end"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			resp := do(t, http.MethodPost, srv.URL+"/v1/users/"+user+"/nodes", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if code := errorCode(t, resp); code != tt.wantCode {
					t.Errorf("code = %s, want %s", code, tt.wantCode)
				}
				return
			}
			rec := decode[timeline.Record](t, resp)
			if rec.ParentID != tt.wantParent {
				t.Errorf("parent = %q, want %q", rec.ParentID, tt.wantParent)
			}
			if loc := resp.Header.Get("Location"); !strings.HasSuffix(loc, "/"+rec.ID) {
				t.Errorf("Location = %q", loc)
			}
		})
	}
}

func TestCreateNodeGeneratesID(t *testing.T) {
	srv, st := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/v1/users/"+user+"/nodes",
		CreateRequest{Record: timeline.Record{Type: "job", Meta: timeline.Meta{"title": "Fresh"}}})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	rec := decode[timeline.Record](t, resp)
	if rec.ID == "" {
		t.Fatal("expected generated id")
	}
	if _, err := st.Get(context.Background(), user, rec.ID); err != nil {
		t.Errorf("stored record: %v", err)
	}
}

func TestReplaceNode(t *testing.T) {
	srv, st := newTestServer(t)
	base := srv.URL + "/v1/users/" + user + "/nodes/"

	resp := do(t, http.MethodPut, base+"api", timeline.Record{ParentID: "uni", Type: "project", Meta: timeline.Meta{"title": "Thesis"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got, err := st.Get(context.Background(), user, "api")
	if err != nil {
		t.Fatal(err)
	}
	if got.ParentID != "uni" || got.Meta.String("title") != "Thesis" {
		t.Errorf("stored = %+v", got)
	}

	tests := []struct {
		name       string
		id         string
		body       timeline.Record
		wantStatus int
	}{
		{"Missing", "ghost", timeline.Record{}, http.StatusNotFound},
		{"IDMismatch", "api", timeline.Record{ID: "other"}, http.StatusBadRequest},
		{"Reparent", "acme", timeline.Record{ParentID: "api"}, http.StatusOK},
		{"Cycle", "uni", timeline.Record{ParentID: "api"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPut, base+tt.id, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestDeleteNode(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/v1/users/" + user + "/nodes/"

	resp := do(t, http.MethodDelete, base+"acme", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := decode[deleteResponse](t, resp); got.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", got.Deleted)
	}

	resp = do(t, http.MethodDelete, base+"acme", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestTimeline(t *testing.T) {
	srv, _ := newTestServer(t)
	url := srv.URL + "/v1/users/" + user + "/timeline"

	resp := do(t, http.MethodGet, url, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	l := decode[graph.Layout](t, resp)
	if n := len(l.Milestones()); n != 2 {
		t.Errorf("collapsed milestones = %d, want 2", n)
	}

	resp = do(t, http.MethodGet, url+"?expanded=acme&focus=acme", nil)
	l = decode[graph.Layout](t, resp)
	if n := len(l.Milestones()); n != 3 {
		t.Errorf("expanded milestones = %d, want 3", n)
	}
	for _, m := range l.Milestones() {
		if m.ID == "uni" && !m.Data.Blurred {
			t.Error("uni should be blurred while acme is focused")
		}
	}

	resp = do(t, http.MethodGet, url+"?format=dot", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dot status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "digraph") {
		t.Errorf("dot body = %.40q", body)
	}
}

func TestTimelineErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	url := srv.URL + "/v1/users/" + user + "/timeline"

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   apperr.Code
	}{
		{"Format", "?format=png", http.StatusBadRequest, apperr.ErrCodeInvalidFormat},
		{"Blur", "?blur=half", http.StatusBadRequest, apperr.ErrCodeInvalidInput},
		{"Bool", "?expandAll=maybe", http.StatusBadRequest, apperr.ErrCodeInvalidInput},
		{"Orientation", "?orientation=diagonal", http.StatusBadRequest, apperr.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodGet, url+tt.query, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if code := errorCode(t, resp); code != tt.wantCode {
				t.Errorf("code = %s, want %s", code, tt.wantCode)
			}
		})
	}
}

func TestTimelineSeesWrites(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/v1/users/" + user

	do(t, http.MethodGet, base+"/timeline", nil)
	do(t, http.MethodPost, base+"/nodes", CreateRequest{Record: timeline.Record{ID: "later", Type: "job", Meta: timeline.Meta{"startDate": "2024"}}})

	l := decode[graph.Layout](t, do(t, http.MethodGet, base+"/timeline", nil))
	if n := len(l.Milestones()); n != 3 {
		t.Errorf("milestones after create = %d, want 3", n)
	}
}

func TestInvalidUser(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/v1/users/%20bad/nodes", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != apperr.ErrCodeNotFound {
		t.Errorf("code = %s", code)
	}
}
