package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chiremba/chiremba/internal/explain"
	"github.com/chiremba/chiremba/internal/report"
	"github.com/chiremba/chiremba/internal/speech"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// maxReportBody bounds report payloads, which carry the image as a data URL
const maxReportBody = 32 << 20

// setupRoutes creates the chi router with all endpoints mounted
func (s *Server) setupRoutes() chi.Router {
	r := chi.NewRouter()

	// RequestID must come first so the access log can read it; Recoverer
	// writes through the logging wrapper so panics are logged with status 500.
	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/explain", explain.NewHandler(s.deps.Explainer, s.logger))
		r.Post("/speech", speech.Handler(s.deps.Speech))
		r.Route("/report", func(r chi.Router) {
			r.Post("/download", s.handleDownload)
			r.Post("/print", s.handlePrint)
		})
	})
	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	data, err := report.Decode(http.MaxBytesReader(w, r.Body, maxReportBody))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	res, err := s.deps.Reports.Download(r.Context(), data, &buf)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Report-ID", res.ReportID)
	w.Header().Set("X-Page-Count", strconv.Itoa(res.PageCount))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	data, err := report.Decode(http.MaxBytesReader(w, r.Body, maxReportBody))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	res, err := s.deps.Reports.Print(r.Context(), data, &buf)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Report-ID", res.ReportID)
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// fail logs err with full detail and writes the short form to the client
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("report request failed",
		zap.String("path", r.URL.Path),
		zap.String("kind", string(report.KindFromError(err))),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	WriteError(w, err)
}
