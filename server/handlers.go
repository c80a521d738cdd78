package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/kevinwang15/tomledit"
)

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	out, err := s.patcher.Normalize(string(body))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeTOML(w, out)
}

// handlePatch takes the document as the body and the comma separated
// lists in the paths and values query parameters.
func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	out, err := s.patcher.Patch(string(body), q.Get("paths"), q.Get("values"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeTOML(w, out)
}

type jsonPatchRequest struct {
	Document string          `json:"document"`
	Patch    json.RawMessage `json:"patch"`
}

func (s *Server) handleJSONPatch(w http.ResponseWriter, r *http.Request) {
	var req jsonPatchRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	out, err := s.patcher.PatchJSON(req.Document, req.Patch)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeTOML(w, out)
}

type changesRequest struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	var req changesRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	patch, err := tomledit.Changes(req.Before, req.After)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json-patch+json")
	if patch == nil {
		_, _ = io.WriteString(w, "[]")
		return
	}
	_ = json.NewEncoder(w).Encode(patch)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	return body, true
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.fail(w, err)
		return false
	}
	return true
}

func writeTOML(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/toml")
	_, _ = io.WriteString(w, text)
}

// fail writes err as plain text with a status derived from its kind.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, tomledit.ErrParse):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, tomledit.ErrTestFailed):
		status = http.StatusConflict
	}
	s.Options.Log.Debug("request failed", "status", status, "error", err)
	http.Error(w, err.Error(), status)
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n := s.Options.Config.Server.MaxBodyBytes; n > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, n)
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.Options.Log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
