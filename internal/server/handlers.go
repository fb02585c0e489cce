package server

import (
	"encoding/json"
	goerrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/drawtf/pkg/buildinfo"
	"github.com/matzehuels/drawtf/pkg/dot"
	"github.com/matzehuels/drawtf/pkg/errors"
	"github.com/matzehuels/drawtf/pkg/pipeline"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// KindsResponse is the body of GET /v1/kinds.
type KindsResponse struct {
	Platform string   `json:"platform"`
	Kinds    []string `json:"kinds"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// Response headers set by POST /v1/diagrams.
const (
	HeaderDiagramID = "X-Diagram-ID"
	HeaderCache     = "X-Cache"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: buildinfo.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("platform")
	if name == "" {
		name = pipeline.DefaultPlatform
	}
	p, err := pipeline.FindPlatform(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, KindsResponse{Platform: p.Name, Kinds: p.Registry().Kinds()})
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var opts pipeline.Options
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&opts); err != nil {
		var tooLarge *http.MaxBytesError
		if goerrors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
			return
		}
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = dot.FormatSVG
	}
	opts.Formats = []string{format}
	opts.Logger = s.logger

	id := uuid.New().String()
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.logger.Warn("diagram failed", "id", id, "error", err)
		s.writeError(w, err)
		return
	}

	cache := "miss"
	if result.RenderHit() {
		cache = "hit"
	}
	s.logger.Info("diagram rendered", "id", id, "format", format,
		"components", result.Stats.Components, "cache", cache)

	w.Header().Set("Content-Type", dot.ContentType(format))
	w.Header().Set(HeaderDiagramID, id)
	w.Header().Set(HeaderCache, cache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch {
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case code == errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := StatusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
