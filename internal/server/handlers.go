package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	linkify "github.com/derwolz/rebelreads-linkify"
	"github.com/derwolz/rebelreads-linkify/internal/render"
)

type messageRequest struct {
	Message string `json:"message"`
}

type segmentsResponse struct {
	Segments []linkify.Segment `json:"segments"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Health reports liveness and the configured site domain.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"siteDomain": s.parser.SiteDomain(),
	})
}

// Segments parses the posted message and returns its segments.
func (s *Server) Segments(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, segmentsResponse{Segments: s.parser.Parse(req.Message)})
}

// Analyze returns segments plus the stripped and preserved URLs.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}

	report := s.parser.Analyze(req.Message)
	if len(report.Stripped) > 0 {
		s.log.WithField("count", len(report.Stripped)).Debug("Stripped external URLs")
	}
	writeJSON(w, http.StatusOK, report)
}

// Render returns the message rendered in the format named by the
// "format" query parameter (default html).
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = render.FormatHTML
	}

	var contentType string
	switch format {
	case render.FormatHTML:
		contentType = "text/html; charset=utf-8"
	case render.FormatText:
		contentType = "text/plain; charset=utf-8"
	case render.FormatJSON:
		contentType = "application/json"
	default:
		writeError(w, http.StatusBadRequest,
			"unknown format "+format+" (available: "+strings.Join(render.Formats(), ", ")+")")
		return
	}

	req, ok := s.decodeMessage(w, r)
	if !ok {
		return
	}

	var buf strings.Builder
	if err := render.Write(&buf, format, s.parser.Parse(req.Message), s.opts.Marker); err != nil {
		s.log.WithError(err).Error("Failed to render segments")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(buf.String())); err != nil {
		s.log.WithError(err).Warn("Failed to write response")
	}
}

// decodeMessage reads the JSON body and writes the error response itself
// when it fails.
func (s *Server) decodeMessage(w http.ResponseWriter, r *http.Request) (messageRequest, bool) {
	var req messageRequest

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return req, false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
