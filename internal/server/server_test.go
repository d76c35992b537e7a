package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/depscout/depscout/pkg/analysis"
	apperrors "github.com/depscout/depscout/pkg/errors"
	"github.com/depscout/depscout/pkg/registry"
)

type fakeProvider struct {
	metas map[string]*registry.Metadata
}

func (p *fakeProvider) Fetch(ctx context.Context, name string) (*registry.Metadata, error) {
	if meta, ok := p.metas[registry.NormalizeName(name)]; ok {
		return meta, nil
	}
	return nil, fmt.Errorf("%w: %s", registry.ErrNotFound, name)
}

func testServer(t *testing.T) *Server {
	t.Helper()
	provider := &fakeProvider{metas: map[string]*registry.Metadata{
		"flask": {
			Name:                 "Flask",
			LatestVersion:        "2.2.3",
			KnownReleases:        map[string]bool{"2.2.3": true},
			DeclaredDependencies: []string{"Werkzeug>=2.2"},
		},
		"werkzeug": {
			Name:          "Werkzeug",
			LatestVersion: "2.2.3",
			KnownReleases: map[string]bool{"1.0.1": true, "2.2.3": true},
		},
	}}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(analysis.NewEngine(provider, logger), logger)
}

func postCheck(t *testing.T, handler http.Handler, body string) (*httptest.ResponseRecorder, checkResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp checkResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, resp
}

func TestCheckReportsConflicts(t *testing.T) {
	handler := testServer(t).Router()
	rec, resp := postCheck(t, handler, `{"requirements": "Flask==2.2.3\nWerkzeug==1.0.1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if len(resp.Conflicts) != 1 || resp.Conflicts[0].Kind != analysis.KindDependencyConflict {
		t.Errorf("conflicts = %+v, want one dependency_conflict", resp.Conflicts)
	}
	if len(resp.Fixed) == 0 {
		t.Error("fixed_requirements empty despite conflicts")
	}
	if len(resp.Tree) != 2 {
		t.Errorf("dependency_tree nodes = %d, want 2", len(resp.Tree))
	}
	if resp.ID == "" {
		t.Error("response id empty")
	}
	if resp.ID != rec.Header().Get("X-Request-ID") {
		t.Error("response id does not match X-Request-ID header")
	}
	if resp.GraphImage == "" && resp.GraphError == "" {
		t.Error("neither graph_image nor graph_error set")
	}
}

func TestCheckCleanSet(t *testing.T) {
	handler := testServer(t).Router()
	rec, resp := postCheck(t, handler, `{"requirements": "Flask==2.2.3"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if len(resp.Conflicts) != 0 {
		t.Errorf("conflicts = %+v, want none", resp.Conflicts)
	}
	if resp.Fixed == nil || len(resp.Fixed) != 0 {
		t.Errorf("fixed_requirements = %#v, want empty array", resp.Fixed)
	}
}

func TestCheckEmptyInput(t *testing.T) {
	handler := testServer(t).Router()
	rec, _ := postCheck(t, handler, `{"requirements": "# only comments"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] == "" {
		t.Error("error message missing")
	}
	if body["code"] != string(apperrors.ErrCodeNoPackages) {
		t.Errorf("code = %q, want %q", body["code"], apperrors.ErrCodeNoPackages)
	}
}

func TestCheckInvalidJSON(t *testing.T) {
	handler := testServer(t).Router()
	rec, _ := postCheck(t, handler, `{"requirements": `)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != string(apperrors.ErrCodeInvalidInput) {
		t.Errorf("code = %q, want %q", body["code"], apperrors.ErrCodeInvalidInput)
	}
}

func TestCheckFormBody(t *testing.T) {
	handler := testServer(t).Router()
	form := url.Values{"requirements": {"Flask==2.2.3"}}
	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestIndexPage(t *testing.T) {
	handler := testServer(t).Router()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "depscout") {
		t.Error("page body missing application name")
	}
}

func TestHealth(t *testing.T) {
	handler := testServer(t).Router()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequestIDReused(t *testing.T) {
	handler := testServer(t).Router()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("X-Request-ID = %q, want fixed-id", got)
	}
}
