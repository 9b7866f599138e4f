package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/metrics"
	"go.uber.org/zap"
)

const contentTypeJSON = "application/json"

// Encoded is a response body ready to be written, with the headers describing it.
type Encoded struct {
	Body   []byte
	Header http.Header
}

// Encode prepares body for transport, gzip-compressing it when compress is set.
// It has no side effects.
func Encode(body []byte, compress bool) (*Encoded, error) {
	header := make(http.Header)
	header.Set("Content-Type", contentTypeJSON)

	if compress {
		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, gzip.DefaultCompression)
		if err != nil {
			return nil, fmt.Errorf("gzip writer: %w", err)
		}
		if _, err := zw.Write(body); err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		body = buf.Bytes()
		header.Set("Content-Encoding", "gzip")
		header.Set("Vary", "Accept-Encoding")
	}

	header.Set("Content-Length", strconv.Itoa(len(body)))
	return &Encoded{Body: body, Header: header}, nil
}

// WriteResponse copies the headers and body to w.
func (e *Encoded) WriteResponse(w http.ResponseWriter, status int) error {
	for k, v := range e.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(status)
	_, err := w.Write(e.Body)
	return err
}

// acceptsGzip reports whether the client listed gzip (or *) in Accept-Encoding
// without a zero quality.
func acceptsGzip(r *http.Request) bool {
	for _, header := range r.Header.Values("Accept-Encoding") {
		for _, part := range strings.Split(header, ",") {
			coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
			coding = strings.ToLower(strings.TrimSpace(coding))
			if coding != "gzip" && coding != "*" {
				continue
			}
			if q, ok := strings.CutPrefix(strings.ReplaceAll(params, " ", ""), "q="); ok {
				if v, err := strconv.ParseFloat(q, 64); err == nil && v == 0 {
					continue
				}
			}
			return true
		}
	}
	return false
}

// shouldCompress is the single compression decision of the service.
func (s *Server) shouldCompress(r *http.Request, size int, compressible bool) bool {
	return compressible &&
		s.cfg.Gzip.Enabled &&
		size >= s.cfg.Gzip.MinSize &&
		acceptsGzip(r)
}

// writeJSON serializes payload and writes it, compressed when the endpoint
// allows it and the client accepts it.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any, compressible bool) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.requestLogger(r).Error("could not serialize response", zap.Error(err))
		s.writeText(w, http.StatusInternalServerError, msgServerError)
		return
	}

	compress := s.shouldCompress(r, len(body), compressible)
	encoded, err := Encode(body, compress)
	if err != nil {
		s.requestLogger(r).Error("could not encode response", zap.Error(err))
		s.writeText(w, http.StatusInternalServerError, msgServerError)
		return
	}

	encoding := "identity"
	if compress {
		encoding = "gzip"
	}
	metrics.ResponseBytes.WithLabelValues(encoding).Observe(float64(len(encoded.Body)))

	if err := encoded.WriteResponse(w, status); err != nil {
		s.requestLogger(r).Debug("client went away while writing response", zap.Error(err))
	}
}

func (s *Server) writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
