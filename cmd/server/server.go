package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/refacing-estimator/internal/invoice"
	"github.com/Simplici0/refacing-estimator/internal/logger"
	"github.com/Simplici0/refacing-estimator/internal/pricing"
)

const maxBodyBytes = 1 << 20

type server struct {
	calc      *pricing.Calculator
	log       *logger.Logger
	staticDir string
}

func newServer(calc *pricing.Calculator, log *logger.Logger, staticDir string) *server {
	return &server{calc: calc, log: log, staticDir: staticDir}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.log.HTTPMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/catalog", s.handleCatalog)
	r.Post("/calculate", s.handleCalculate)
	r.Post("/calculate/text", s.handleCalculateText)

	if info, err := os.Stat(s.staticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	}
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c := s.calc.Catalog()
	if c.IsEmpty() {
		writeError(w, http.StatusInternalServerError, "pricing catalog is not loaded")
		return
	}
	if err := writeJSON(w, http.StatusOK, c); err != nil {
		s.log.Error("write catalog", "error", err)
	}
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	b, ok := s.calculate(w, r)
	if !ok {
		return
	}
	if err := writeJSON(w, http.StatusOK, b); err != nil {
		s.log.Error("write breakdown", "error", err)
	}
}

func (s *server) handleCalculateText(w http.ResponseWriter, r *http.Request) {
	b, ok := s.calculate(w, r)
	if !ok {
		return
	}
	opts := invoice.Options{InternalDetails: r.URL.Query().Get("internal") == "1"}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := invoice.Render(w, b, opts); err != nil {
		s.log.Error("render invoice", "error", err)
	}
}

// calculate decodes and prices the request body. On failure it has already
// written the error response.
func (s *server) calculate(w http.ResponseWriter, r *http.Request) (pricing.Breakdown, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return pricing.Breakdown{}, false
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return pricing.Breakdown{}, false
	}

	req, err := pricing.DecodeRequest(body)
	if err != nil {
		s.writeCalculationError(w, err)
		return pricing.Breakdown{}, false
	}

	b, err := s.calc.Calculate(req)
	if err != nil {
		s.writeCalculationError(w, err)
		return pricing.Breakdown{}, false
	}
	if len(b.SkippedSections) > 0 {
		s.log.Warn("calculated quote with skipped sections", "skipped", b.SkippedSections)
	}
	return b, true
}

func (s *server) writeCalculationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrMalformedRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrMissingCatalog):
		s.log.Error("calculate quote", "error", err)
		writeError(w, http.StatusInternalServerError, "pricing catalog is not loaded")
	default:
		s.log.Error("calculate quote", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to calculate quote")
	}
}

// writeJSON encodes v before touching the response, so an unencodable value
// turns into a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func writeError(w http.ResponseWriter, status int, message string) {
	body, _ := json.Marshal(map[string]string{"error": message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
