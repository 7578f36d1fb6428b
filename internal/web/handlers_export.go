package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/crmport/internal/core"
	"github.com/JonMunkholm/crmport/internal/logging"
)

// handleExport streams the full-dump archive of every entity.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Export(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeArchive(w, r, core.ExportFileName(time.Now().UTC()), data)
}

// handleExportSample streams the import template archive.
func (s *Server) handleExportSample(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.ExportSample()
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeArchive(w, r, core.SampleFileName, data)
}

// writeArchive sends data as a zip attachment named filename.
func writeArchive(w http.ResponseWriter, r *http.Request, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Warn("archive write interrupted",
			"file", filename,
			"error", err,
		)
	}
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
