package server

import (
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/depscout/depscout/pkg/analysis"
	apperrors "github.com/depscout/depscout/pkg/errors"
	"github.com/depscout/depscout/pkg/render"
	"github.com/depscout/depscout/pkg/requirements"
)

//go:embed static
var staticFS embed.FS

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type checkRequest struct {
	Requirements string `json:"requirements"`
}

type checkResponse struct {
	ID           string                     `json:"id"`
	Requirements []requirements.Requirement `json:"requirements"`
	Conflicts    []analysis.Conflict        `json:"conflicts"`
	Suggestions  []string                   `json:"suggestions"`
	Fixed        []string                   `json:"fixed_requirements"`
	Tree         []analysis.TreeNode        `json:"dependency_tree"`
	GraphImage   string                     `json:"graph_image,omitempty"`
	GraphError   string                     `json:"graph_error,omitempty"`
	Elapsed      float64                    `json:"execution_time"`
}

// handleCheck runs one analysis over the submitted requirements text.
// The body is either JSON with a "requirements" field or a form post
// with the same field name.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	text, err := readRequirements(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.engine.Run(r.Context(), text)
	if err != nil {
		if errors.Is(err, analysis.ErrNoPackages) {
			writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeNoPackages, err, "%s", err.Error()))
			return
		}
		s.logger.Error("analysis failed", "id", RequestID(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, apperrors.Wrap(apperrors.ErrCodeInternal, err, "analysis failed"))
		return
	}

	resp := checkResponse{
		ID:           RequestID(r.Context()),
		Requirements: report.Requirements,
		Conflicts:    emptyIfNilConflicts(report.Conflicts),
		Suggestions:  emptyIfNil(report.Suggestions),
		Fixed:        emptyIfNil(report.Fixed),
		Tree:         report.Tree,
		Elapsed:      report.Elapsed.Seconds(),
	}
	if resp.Tree == nil {
		resp.Tree = []analysis.TreeNode{}
	}

	// A failed render degrades the response, never the analysis.
	if svg, err := render.Tree(r.Context(), report.Tree); err != nil {
		s.logger.Warn("graph render failed", "id", resp.ID, "err", err)
		resp.GraphError = apperrors.UserMessage(err)
	} else {
		resp.GraphImage = base64.StdEncoding.EncodeToString(svg)
	}

	writeJSON(w, http.StatusOK, resp)
}

func readRequirements(r *http.Request) (string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", apperrors.New(apperrors.ErrCodeInvalidInput, "invalid JSON body")
		}
		return req.Requirements, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", apperrors.New(apperrors.ErrCodeInvalidInput, "invalid form body")
	}
	return r.PostFormValue("requirements"), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error: apperrors.UserMessage(err),
		Code:  string(apperrors.GetCode(err)),
	})
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyIfNilConflicts(c []analysis.Conflict) []analysis.Conflict {
	if c == nil {
		return []analysis.Conflict{}
	}
	return c
}
