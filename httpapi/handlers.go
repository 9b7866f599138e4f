package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/saulfrancisco-ruizacevedo/go-proteograph"
	"go.uber.org/zap"
)

// Client facing messages. Causes are logged, never returned.
const (
	msgBadRequest   = "bad request"
	msgNotAvailable = "not available"
	msgNotFound     = "not found"
	msgTimeout      = "timeout"
	msgServerError  = "server error"
	msgUnavailable  = "unavailable"
)

// SearchBody is the JSON body of POST /search.
type SearchBody struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Shape string `json:"shape,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}

	var body SearchBody
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&body); err != nil {
		s.requestLogger(r).Info("rejecting malformed search body", zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeText(w, http.StatusRequestEntityTooLarge, msgBadRequest)
			return
		}
		s.writeText(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		s.requestLogger(r).Info("rejecting search body with trailing data")
		s.writeText(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	req, err := proteograph.ParseRequest(body.Type, body.Value, body.Shape)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.searcher.Search(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp.Payload(), true)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := s.searcher.Overview(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, overview, true)
}

func (s *Server) handleGene(w http.ResponseWriter, r *http.Request) {
	gene, err := s.searcher.Gene(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, gene, false)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Verify(r.Context()); err != nil {
			s.requestLogger(r).Warn("health check failed", zap.Error(err))
			s.writeText(w, http.StatusServiceUnavailable, msgUnavailable)
			return
		}
	}
	s.writeText(w, http.StatusOK, "ok")
}

// writeError maps an error to its status code and an opaque message, and
// logs the cause.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)

	if errors.Is(err, proteograph.ErrNotFound) {
		log.Info("resource not found", zap.Error(err))
		s.writeText(w, http.StatusNotFound, msgNotFound)
		return
	}

	switch proteograph.Classify(err) {
	case proteograph.ClassInvalid:
		log.Info("invalid request", zap.Error(err))
		s.writeText(w, http.StatusBadRequest, msgBadRequest)
	case proteograph.ClassUnknownKind:
		log.Info("unknown search type", zap.Error(err))
		s.writeText(w, http.StatusNotFound, msgNotAvailable)
	case proteograph.ClassTimeout:
		log.Warn("graph query timed out", zap.Error(err))
		s.writeText(w, http.StatusGatewayTimeout, msgTimeout)
	default:
		log.Error("request failed", zap.Error(err))
		s.writeText(w, http.StatusInternalServerError, msgServerError)
	}
}
